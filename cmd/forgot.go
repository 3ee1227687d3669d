package cmd

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/pustak/internal/passwordreset"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"github.com/spf13/cobra"
)

func newForgotPasswordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Reset a forgotten password with a one-time code",
		Long: `Reset a password in three steps: request a code by email, verify it,
then choose a new password. Progress is kept between invocations.

Running forgot-password without a subcommand walks through every step
interactively.`,
		Example: `  pustak forgot-password send-otp meera@example.com
  pustak forgot-password verify-otp 123456
  pustak forgot-password reset --password secret1 --confirm secret1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWizard(a, func(w *passwordreset.Wizard) error {
				for w.Step() != passwordreset.Done {
					if err := interactiveStep(cmd.Context(), a, w); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	var password, confirmation string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Choose the new password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWizard(a, func(w *passwordreset.Wizard) error {
				return w.Reset(cmd.Context(), password, confirmation)
			})
		},
	}
	reset.Flags().StringVar(&password, "password", "", "New password")
	reset.Flags().StringVar(&confirmation, "confirm", "", "New password again")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "send-otp EMAIL",
			Short: "Email a one-time code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withWizard(a, func(w *passwordreset.Wizard) error {
					return w.SendOTP(cmd.Context(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "verify-otp CODE",
			Short: "Verify the emailed code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withWizard(a, func(w *passwordreset.Wizard) error {
					return w.VerifyOTP(cmd.Context(), args[0])
				})
			},
		},
		reset,
		&cobra.Command{
			Use:   "cancel",
			Short: "Abandon a reset in progress",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.state.Delete(passwordreset.StorageKey); err != nil {
					return err
				}
				a.println("Password reset cancelled")
				return nil
			},
		},
	)
	return cmd
}

// withWizard resumes the stored reset, runs fn and stores where it got to.
func withWizard(a *app, fn func(w *passwordreset.Wizard) error) error {
	if err := session.RequireAnonymous(a.session.Current()); err != nil {
		return err
	}

	var progress passwordreset.Progress
	if _, err := a.state.Get(passwordreset.StorageKey, &progress); err != nil {
		slog.Warn("Discarding unreadable password reset progress", "error", err)
		progress = passwordreset.Progress{}
	}
	w := passwordreset.Resume(a.client, progress)

	runErr := fn(w)

	next := w.Progress()
	if next.Step == passwordreset.Done {
		if err := a.state.Delete(passwordreset.StorageKey); err != nil {
			return err
		}
		a.println("Password reset successfully! You can now log in.")
		return runErr
	}
	if err := a.state.Set(passwordreset.StorageKey, next); err != nil {
		return err
	}
	if runErr == nil {
		switch next.Step {
		case passwordreset.EnterOTP:
			a.println("OTP sent to your email. Please check your inbox.")
		case passwordreset.EnterPassword:
			a.println("OTP verified successfully!")
		}
	}
	return runErr
}

func interactiveStep(ctx context.Context, a *app, w *passwordreset.Wizard) error {
	switch w.Step() {
	case passwordreset.EnterEmail:
		email, err := a.prompt("Email")
		if err != nil {
			return err
		}
		return w.SendOTP(ctx, email)
	case passwordreset.EnterOTP:
		a.println("OTP sent to your email. Please check your inbox.")
		otp, err := a.prompt("OTP")
		if err != nil {
			return err
		}
		return w.VerifyOTP(ctx, otp)
	default:
		password, err := a.prompt("New password")
		if err != nil {
			return err
		}
		confirmation, err := a.prompt("Confirm password")
		if err != nil {
			return err
		}
		return w.Reset(ctx, password, confirmation)
	}
}
