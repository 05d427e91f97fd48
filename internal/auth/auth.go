// Package auth implements the mocked sign-in flow. No credential is checked
// or stored; a session only remembers who the dashboard greets.
package auth

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/theirongolddev/rupee/internal/model"
)

// DemoName is the display name given to anyone who logs in.
const DemoName = "Demo User"

var (
	ErrMissingCredentials = errors.New("please enter email and password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Login accepts any non-empty email and password.
func Login(email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, ErrMissingCredentials
	}
	if err := checkEmail(email); err != nil {
		return model.User{}, err
	}
	return model.User{Name: DemoName, Email: email}, nil
}

// Signup requires the password to be entered twice identically.
func Signup(name, email, password, confirm string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, ErrMissingCredentials
	}
	if err := checkEmail(email); err != nil {
		return model.User{}, err
	}
	if password != confirm {
		return model.User{}, ErrPasswordMismatch
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DemoName
	}
	return model.User{Name: name, Email: email}, nil
}

func checkEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
