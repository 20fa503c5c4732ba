package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"asfalto/cmd/asfalto/output"
	"asfalto/internal/app"
	"asfalto/internal/validate"
)

var (
	reg     validate.Registration
	profile app.ProfileUpdate

	loginEmail    string
	loginPassword string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create and seed the database if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := container.Store(cmd.Context())
		if err != nil {
			return err
		}
		if store.Created() {
			output.Success("Database created")
		} else {
			output.Info("Database already exists")
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Example: `  asfalto register --name "Ana Pérez" --email a@x.com --phone 56912345678 \
    --password 'Str0ng!Pass' --confirm 'Str0ng!Pass'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := container.Session(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := s.Register(cmd.Context(), reg); err != nil {
			return describe(err)
		}
		output.Success("Registered %s", reg.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the account on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := container.Session(cmd.Context())
		if err != nil {
			return err
		}
		u, err := s.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return describe(err)
		}
		output.Success("Welcome, %s", u.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := container.Session(cmd.Context())
		if err != nil {
			return err
		}
		if err := s.Logout(cmd.Context()); err != nil {
			return err
		}
		output.Success("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		u := s.User()
		if u == nil {
			output.Muted("not signed in")
			return nil
		}
		images, err := container.Images()
		if err != nil {
			return err
		}
		output.User(u, images.DisplayURI)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		u := s.User()
		if !cmd.Flags().Changed("name") {
			profile.Name = u.Name
		}
		if !cmd.Flags().Changed("phone") {
			profile.Phone = u.Phone
		}
		updated, err := s.UpdateProfile(cmd.Context(), profile)
		if err != nil {
			return describe(err)
		}
		images, err := container.Images()
		if err != nil {
			return err
		}
		output.Success("Profile updated")
		output.User(updated, images.DisplayURI)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Show or set the theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := container.Session(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if err := s.SetTheme(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		theme, err := s.Theme(cmd.Context())
		if err != nil {
			return err
		}
		output.Info("Theme: %s", theme)
		return nil
	},
}

// describe lists every rejected field on its own line.
func describe(err error) error {
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		output.Warning("%s", fe)
	}
	return errors.New("invalid input")
}

func init() {
	rootCmd.AddCommand(initCmd, registerCmd, loginCmd, logoutCmd, whoamiCmd, profileCmd, themeCmd)

	registerCmd.Flags().StringVar(&reg.Name, "name", "", "Full name (letters and spaces)")
	registerCmd.Flags().StringVar(&reg.Email, "email", "", "Email")
	registerCmd.Flags().StringVar(&reg.Phone, "phone", "", "Phone (digits only)")
	registerCmd.Flags().StringVar(&reg.Password, "password", "", "Password")
	registerCmd.Flags().StringVar(&reg.Confirm, "confirm", "", "Password again")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	profileCmd.Flags().StringVar(&profile.Name, "name", "", "New name")
	profileCmd.Flags().StringVar(&profile.Phone, "phone", "", "New phone (at least 8 digits)")
	profileCmd.Flags().StringVar(&profile.Password, "password", "", "New password")
	profileCmd.Flags().StringVar(&profile.Confirm, "confirm", "", "New password again")
	profileCmd.Flags().StringVar(&profile.Image, "image", "", "Profile picture file")
}
