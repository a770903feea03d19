package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/pagination"
)

func newProfileCmd(opts Options) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "Show or edit your profile"}

	profile.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print your profile",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.requireSignIn(); err != nil {
				return err
			}
			p, err := e.client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			e.stores.Auth.SetProfile(p)
			printProfile(cmd, e.client.Identity().Email, p)
			return nil
		}),
	})

	var firstName, lastName, phone, city, country string
	set := &cobra.Command{
		Use:   "set [--first-name] [--last-name] [--phone] [--city] [--country]",
		Short: "Update profile fields; unset flags are left unchanged",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.requireSignIn(); err != nil {
				return err
			}
			var in domain.ProfileUpdate
			flags := cmd.Flags()
			for name, field := range map[string]struct {
				dst **string
				val *string
			}{
				"first-name": {&in.FirstName, &firstName},
				"last-name":  {&in.LastName, &lastName},
				"phone":      {&in.Phone, &phone},
				"city":       {&in.City, &city},
				"country":    {&in.Country, &country},
			} {
				if flags.Changed(name) {
					*field.dst = field.val
				}
			}
			if in == (domain.ProfileUpdate{}) {
				return errors.New("nothing to update, pass at least one field flag")
			}

			p, err := e.client.UpdateProfile(cmd.Context(), in)
			if err != nil {
				return err
			}
			e.stores.Auth.SetProfile(p)
			printProfile(cmd, e.client.Identity().Email, p)
			return nil
		}),
	}
	set.Flags().StringVar(&firstName, "first-name", "", "first name")
	set.Flags().StringVar(&lastName, "last-name", "", "last name")
	set.Flags().StringVar(&phone, "phone", "", "phone number")
	set.Flags().StringVar(&city, "city", "", "city")
	set.Flags().StringVar(&country, "country", "", "country")
	profile.AddCommand(set)

	return profile
}

func printProfile(cmd *cobra.Command, email string, p *domain.Profile) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "email: %s\nfirst_name: %s\nlast_name: %s\nphone: %s\ncity: %s\ncountry: %s\n",
		email, p.FirstName, p.LastName, p.Phone, p.City, p.Country)
}

func newSubscriptionCmd(opts Options) *cobra.Command {
	var plans bool
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show your subscription status or the available plans",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			out := cmd.OutOrStdout()
			if plans {
				list, err := e.client.Plans(cmd.Context())
				if err != nil {
					return err
				}
				for _, p := range list {
					line := fmt.Sprintf("%s\t%s\t%.2f %s/%s", p.ID, p.Name, p.Price, p.Currency, p.Interval)
					if p.TrialDays > 0 {
						line += fmt.Sprintf("\t%d days free", p.TrialDays)
					}
					if p.Popular {
						line += "\tpopular"
					}
					_, _ = fmt.Fprintln(out, line)
				}
				return nil
			}

			if err := e.requireSignIn(); err != nil {
				return err
			}
			st, err := e.client.CheckSubscription(cmd.Context())
			if err != nil {
				return err
			}
			if !st.Subscribed {
				_, _ = fmt.Fprintln(out, "no active subscription, see `respira subscription --plans`")
				return nil
			}
			_, _ = fmt.Fprintf(out, "subscribed plan=%s", st.PlanID)
			if st.CurrentPeriodEnd != nil {
				_, _ = fmt.Fprintf(out, " renews=%s", st.CurrentPeriodEnd.Format("2006-01-02"))
			}
			_, _ = fmt.Fprintln(out)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&plans, "plans", false, "list the subscription plans")
	return cmd
}

func newContactCmd(opts Options) *cobra.Command {
	var req domain.SupportRequest
	cmd := &cobra.Command{
		Use:   "contact --subject <subject> --message <message>",
		Short: "Write to the Respira support team",
		Long:  "Write to the Respira support team. Name and email default to your account when signed in.",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			auth := e.stores.Auth.Get()
			if req.Email == "" && auth.User != nil {
				req.Email = auth.User.Email
			}
			if req.Name == "" && auth.Profile != nil {
				req.Name = strings.TrimSpace(auth.Profile.FirstName + " " + auth.Profile.LastName)
			}
			if err := e.client.ContactSupport(cmd.Context(), req); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "message sent, we will answer at %s\n", req.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "your name")
	cmd.Flags().StringVar(&req.Email, "email", "", "reply address")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject")
	cmd.Flags().StringVar(&req.Message, "message", "", "message")
	return cmd
}

func newHistoryCmd(opts Options) *cobra.Command {
	p := pagination.DefaultParams()
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your recorded breathing sessions",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.requireSignIn(); err != nil {
				return err
			}
			res, err := e.client.BreathingSessions(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Data) == 0 {
				_, _ = fmt.Fprintln(out, "no breathing sessions yet")
				return nil
			}
			for _, s := range res.Data {
				outcome := "stopped"
				if s.Completed {
					outcome = "completed"
				}
				_, _ = fmt.Fprintf(out, "%s\t%s\t%d cycles\t%s\t%s\n",
					s.CreatedAt.Local().Format("2006-01-02 15:04"), s.TechniqueID, s.Cycles, formatSeconds(s.ElapsedSeconds), outcome)
			}
			printPageFooter(cmd, res.Page, res.TotalPages, res.TotalCount)
			return nil
		}),
	}
	cmd.Flags().IntVar(&p.Page, "page", p.Page, "page number")
	cmd.Flags().IntVar(&p.PerPage, "per-page", p.PerPage, "sessions per page")
	return cmd
}

func printPageFooter(cmd *cobra.Command, page, pages, total int) {
	if pages > 1 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d in total\n", page, pages, total)
	}
}
