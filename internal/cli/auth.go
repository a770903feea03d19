package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/client"
)

func newLoginCmd(opts Options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login --email <email> --password <password>",
		Short: "Sign in to your Respira account",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			s, err := e.client.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if p, err := e.client.GetProfile(cmd.Context()); err == nil {
				e.stores.Auth.SetProfile(p)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", s.User.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newSignupCmd(opts Options) *cobra.Command {
	var in client.SignUpInput
	cmd := &cobra.Command{
		Use:   "signup --email <email> --password <password> --first-name <name>",
		Short: "Create a Respira account",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			s, err := e.client.SignUp(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "account created for %s\n", s.User.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	return cmd
}

func newLogoutCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.client.SignOut(cmd.Context()); err != nil {
				return err
			}
			// A session the server never knew about still clears local state.
			e.stores.ResetAll()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		}),
	}
}

func newResetPasswordCmd(opts Options) *cobra.Command {
	var email string
	reset := &cobra.Command{
		Use:   "reset-password --email <email>",
		Short: "Mail a password reset code",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.client.ResetPassword(cmd.Context(), email); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "if %s has an account, a reset code is on its way\n", email)
			return nil
		}),
	}
	reset.Flags().StringVar(&email, "email", "", "account email")

	var token, password string
	confirm := &cobra.Command{
		Use:   "confirm --token <code> --password <new password>",
		Short: "Set a new password with the mailed code",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.client.ConfirmPasswordReset(cmd.Context(), token, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "password updated, you can now log in")
			return nil
		}),
	}
	confirm.Flags().StringVar(&token, "token", "", "reset code from the email")
	confirm.Flags().StringVar(&password, "password", "", "new password, at least 6 characters")

	reset.AddCommand(confirm)
	return reset
}
