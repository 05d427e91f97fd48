package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/auth"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

const (
	loginModeSignIn = "login"
	loginModeSignUp = "signup"
)

// loginValues backs the login form fields.
type loginValues struct {
	mode     string
	name     string
	email    string
	password string
	confirm  string
}

func (v *loginValues) submit() (model.User, error) {
	if v.mode == loginModeSignUp {
		return auth.Signup(v.name, v.email, v.password, v.confirm)
	}
	return auth.Login(v.email, v.password)
}

// newLoginModal builds the sign-in form. A previous failure is shown in the
// header and the form is filled with what was typed.
func newLoginModal(v *loginValues, lastErr error) *modal {
	desc := "Sign in with any email and password.\nNothing leaves this machine."
	if lastErr != nil {
		desc = "⚠ " + lastErr.Error()
	}
	v.password, v.confirm = "", ""

	signIn := func() bool { return v.mode != loginModeSignUp }

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to rupee").
				Description(desc),
			huh.NewSelect[string]().
				Title("Account").
				Options(
					huh.NewOption("Sign in", loginModeSignIn),
					huh.NewOption("Create an account", loginModeSignUp),
				).
				Value(&v.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder(auth.DemoName).
				Value(&v.name),
		).WithHideFunc(signIn),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&v.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return auth.ErrMissingCredentials
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&v.password),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&v.confirm),
		).WithHideFunc(signIn),
	)

	return &modal{
		form: form,
		onSubmit: func(a *App) tea.Cmd {
			u, err := v.submit()
			if err != nil {
				return a.openModal(newLoginModal(v, err))
			}
			a.user = u
			a.needLogin = false
			if err := config.SaveSession(u); err != nil {
				a.log.Warn().Err(err).Msg("saving session failed")
			}
			return a.setFlash(fmt.Sprintf("Welcome, %s", u.Name), false)
		},
		onAbort: func(*App) tea.Cmd { return tea.Quit },
	}
}

// signOut clears the saved session and asks for credentials again.
func (a *App) signOut() tea.Cmd {
	if err := config.ClearSession(); err != nil {
		a.log.Warn().Err(err).Msg("clearing session failed")
	}
	a.user = model.User{}
	a.needLogin = true
	return a.openModal(newLoginModal(&loginValues{mode: loginModeSignIn}, nil))
}
