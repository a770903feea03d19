package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/deeplink"
)

// screenCommands maps account screens to the command that shows them.
var screenCommands = map[deeplink.Screen]string{
	deeplink.ScreenProfile:      "respira profile show",
	deeplink.ScreenSubscription: "respira subscription",
	deeplink.ScreenContact:      "respira contact",
}

func newOpenCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Resolve an app link to its screen",
		Args:  cobra.ExactArgs(1),
		RunE: runE(opts, func(cmd *cobra.Command, e *env, args []string) error {
			dest, err := deeplink.Parse(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "screen=%s tab=%t\n", dest.Screen, dest.Tab())

			keys := make([]string, 0, len(dest.Params))
			for k := range dest.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(out, "%s=%s\n", k, dest.Params[k])
			}

			switch dest.Screen {
			case deeplink.ScreenBreathingDetail:
				if t, err := e.catalog.Technique(dest.Params["technique"]); err == nil {
					_, _ = fmt.Fprintf(out, "run `respira breathe %s` to start %s\n", t.ID, t.Name)
				}
			case deeplink.ScreenChatDetail:
				_, _ = fmt.Fprintf(out, "run `respira chat show %s`\n", dest.Params["conversationId"])
			default:
				if hint, ok := screenCommands[dest.Screen]; ok {
					_, _ = fmt.Fprintf(out, "run `%s`\n", hint)
				}
			}
			return nil
		}),
	}
}

func newOnboardingCmd(opts Options) *cobra.Command {
	onboarding := &cobra.Command{Use: "onboarding", Short: "First launch flow"}
	onboarding.AddCommand(&cobra.Command{
		Use:   "complete",
		Short: "Mark onboarding as done",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			e.stores.App.CompleteFirstLaunch()
			e.stores.App.CompleteOnboarding()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "onboarding completed")
			return nil
		}),
	})
	onboarding.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show first launch flags",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			s := e.stores.App.Get()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "first_launch=%t onboarding_completed=%t\n", s.IsFirstLaunch, s.HasCompletedOnboarding)
			return nil
		}),
	})
	return onboarding
}
