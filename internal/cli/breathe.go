package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/breathing"
	"github.com/faycal55/respira/internal/domain"
)

const defaultTechnique = "coherent"

func newTechniquesCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "techniques",
		Short: "List breathing techniques",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			for _, t := range e.catalog.Techniques() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%s\t%s\n",
					t.ID, t.Emoji, t.Name, formatPattern(t.Phases), formatSeconds(t.TotalDuration))
			}
			return nil
		}),
	}
}

func newBreatheCmd(opts Options) *cobra.Command {
	var record bool
	cmd := &cobra.Command{
		Use:   "breathe [technique]",
		Short: "Run a guided breathing session",
		Long:  "Run a guided breathing session. Interrupt with Ctrl-C to stop early; the session is saved to your history when signed in.",
		Args:  cobra.MaximumNArgs(1),
		RunE: runE(opts, func(cmd *cobra.Command, e *env, args []string) error {
			id := defaultTechnique
			if len(args) == 1 {
				id = args[0]
			}
			tech, err := e.catalog.Technique(id)
			if err != nil {
				return err
			}

			final, err := runSession(cmd, e, opts, tech)
			if err != nil {
				return err
			}
			if final == nil {
				return nil
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%d cycles in %s\n", final.Cycles, formatSeconds(final.Elapsed()))

			if !record || e.client.Identity() == nil {
				return nil
			}
			_, err = e.client.RecordBreathingSession(cmd.Context(), domain.BreathingSession{
				TechniqueID:    tech.ID,
				Cycles:         final.Cycles,
				ElapsedSeconds: final.Elapsed(),
				Completed:      final.SessionRemaining == 0,
			})
			if err != nil {
				e.logger.Warn("breathing session not saved", slog.String("error", err.Error()))
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "session not saved to your history")
				return nil
			}
			_, _ = fmt.Fprintln(out, "session saved")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&record, "record", true, "save the session to your history when signed in")
	return cmd
}

// runSession drives a machine until the session completes or the command
// context is cancelled, and returns the state the session ended in.
func runSession(cmd *cobra.Command, e *env, opts Options, tech *domain.BreathingTechnique) (*breathing.State, error) {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	machineOpts := []breathing.Option{
		breathing.WithHaptics(breathing.HapticsFunc(func() { _, _ = io.WriteString(errOut, "\a") })),
		breathing.WithNotifications(e.stores.NotificationsEnabled),
		breathing.WithLogger(e.logger),
	}
	if opts.Clock != nil {
		machineOpts = append(machineOpts, breathing.WithClock(opts.Clock))
	}
	if opts.Interval > 0 {
		machineOpts = append(machineOpts, breathing.WithInterval(opts.Interval))
	}
	m := breathing.NewMachine(machineOpts...)
	defer m.Close()

	ended := make(chan breathing.State, 1)
	unsubscribe := m.Subscribe(func(_ breathing.State, ev breathing.Event) {
		switch ev.Kind {
		case breathing.EventStarted, breathing.EventPhaseChanged:
			_, _ = fmt.Fprintf(out, "%-14s %2ds  %s\n", ev.Phase.Name, ev.Phase.Duration, ev.Phase.Instruction)
		case breathing.EventCompleted, breathing.EventStopped:
			select {
			case ended <- ev.Final:
			default:
			}
		}
	})
	defer unsubscribe()

	_, _ = fmt.Fprintf(out, "%s %s, %s\n", tech.Emoji, tech.Name, formatSeconds(tech.TotalDuration))
	if err := m.Start(tech); err != nil {
		return nil, err
	}

	select {
	case final := <-ended:
		return &final, nil
	case <-cmd.Context().Done():
		m.Stop()
	}
	select {
	case final := <-ended:
		return &final, nil
	default:
		return nil, nil
	}
}

func formatPattern(phases []domain.BreathingPhase) string {
	parts := make([]string, 0, len(phases))
	for _, p := range phases {
		parts = append(parts, strconv.Itoa(p.Duration))
	}
	return strings.Join(parts, "-")
}

func formatSeconds(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	if sec%60 == 0 {
		return fmt.Sprintf("%dmin", sec/60)
	}
	return fmt.Sprintf("%dmin%02ds", sec/60, sec%60)
}
