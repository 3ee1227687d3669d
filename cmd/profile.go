package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/pustak/internal/profile"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit your profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireUser()
			if err != nil {
				return err
			}
			r, err := a.renderer()
			if err != nil {
				return err
			}
			st := r.Styles()
			a.println(st.Title.Render("My Profile"))
			a.println(st.Label.Render("Username: ") + s.Identity.Username)
			a.println(st.Label.Render("Email: ") + s.Identity.Email)
			if s.Identity.ProfilePhoto != "" {
				a.println(st.Label.Render("Photo: ") + s.Identity.ProfilePhoto)
			}
			if s.IsAdmin() {
				a.println(st.Paid.Render("Admin"))
			}
			return nil
		},
	}

	var username, email, photo string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your username, email or photo",
		Example: `  pustak profile update --username meera
  pustak profile update --photo ~/me.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			e := profile.New(a.client, a.session)

			form := e.Form()
			if cmd.Flags().Changed("username") {
				form.Username = username
			}
			if cmd.Flags().Changed("email") {
				form.Email = email
			}
			e.SetForm(form)

			if photo != "" {
				f, err := os.Open(photo)
				if err != nil {
					return fmt.Errorf("failed to open photo: %w", err)
				}
				defer f.Close()
				if _, err := e.UploadPhoto(cmd.Context(), filepath.Base(photo), f); err != nil {
					return err
				}
				a.println("Image uploaded successfully!")
			}

			if _, err := e.Save(cmd.Context()); err != nil {
				return err
			}
			a.println("Profile updated successfully!")
			return nil
		},
	}
	update.Flags().StringVar(&username, "username", "", "New username")
	update.Flags().StringVar(&email, "email", "", "New email")
	update.Flags().StringVar(&photo, "photo", "", "Image file to use as profile photo")

	cmd.AddCommand(show, update)
	return cmd
}
