package cmd

import (
	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds api.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Example: `  pustak login --email meera@example.com
  pustak login --email meera@example.com --password secret1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.RequireAnonymous(a.session.Current()); err != nil {
				return err
			}
			var err error
			if creds.Email == "" {
				if creds.Email, err = a.prompt("Email"); err != nil {
					return err
				}
			}
			if creds.Password == "" {
				if creds.Password, err = a.prompt("Password"); err != nil {
					return err
				}
			}

			s, err := a.session.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			a.printf("Logged in as %s\n", s.Identity.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg api.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.RequireAnonymous(a.session.Current()); err != nil {
				return err
			}
			var err error
			for _, f := range []struct {
				label string
				value *string
			}{
				{"Username", &reg.Username},
				{"Email", &reg.Email},
				{"Password", &reg.Password},
			} {
				if *f.value == "" {
					if *f.value, err = a.prompt(f.label); err != nil {
						return err
					}
				}
			}

			s, err := a.session.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			a.printf("Welcome, %s\n", s.Identity.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.Username, "username", "", "Username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			a.println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireUser()
			if err != nil {
				return err
			}
			role := "reader"
			if s.IsAdmin() {
				role = "admin"
			}
			a.printf("%s <%s> (%s)\n", s.Identity.Username, s.Identity.Email, role)
			return nil
		},
	}
}
