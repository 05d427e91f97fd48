package cmd

import (
	"fmt"

	"github.com/theirongolddev/rupee/internal/auth"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in (demo: any email and password work)",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account (demo: nothing leaves this machine)",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := config.ClearSession(); err != nil {
			return err
		}
		fmt.Println("  Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		u, ok, err := config.LoadSession()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("  Not signed in. Run `rupee login`.")
			return nil
		}
		fmt.Printf("  %s <%s>\n", u.Name, u.Email)
		return nil
	},
}

var (
	authName     string
	authEmail    string
	authPassword string
)

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Email address")
		c.Flags().StringVar(&authPassword, "password", "", "Password")
	}
	signupCmd.Flags().StringVar(&authName, "name", "", "Display name")
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	email, password := authEmail, authPassword
	if email == "" || password == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Email").Value(&email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
		))
		if err := form.Run(); err != nil {
			return err
		}
	}

	u, err := auth.Login(email, password)
	if err != nil {
		return err
	}
	return remember(u, "Welcome back")
}

func runSignup(_ *cobra.Command, _ []string) error {
	name, email, password, confirm := authName, authEmail, authPassword, authPassword
	if email == "" || password == "" {
		confirm = ""
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&name),
			huh.NewInput().Title("Email").Value(&email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm),
		))
		if err := form.Run(); err != nil {
			return err
		}
	}

	u, err := auth.Signup(name, email, password, confirm)
	if err != nil {
		return err
	}
	return remember(u, "Welcome")
}

func remember(u model.User, greeting string) error {
	if err := config.SaveSession(u); err != nil {
		return err
	}
	fmt.Printf("  %s, %s!\n", greeting, u.Name)
	return nil
}
