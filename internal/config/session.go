package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/rupee/internal/model"
)

// SessionPath is where the signed-in user is remembered between runs.
func SessionPath() string {
	return filepath.Join(ConfigDir(), "session.toml")
}

// LoadSession returns the remembered user, or ok=false when nobody is signed in.
func LoadSession() (model.User, bool, error) {
	var u model.User
	data, err := os.ReadFile(SessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return u, false, nil
		}
		return u, false, fmt.Errorf("reading session: %w", err)
	}
	if err := toml.Unmarshal(data, &u); err != nil {
		return u, false, fmt.Errorf("parsing session: %w", err)
	}
	return u, u.Email != "", nil
}

// SaveSession remembers the signed-in user.
func SaveSession(u model.User) error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(SessionPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return toml.NewEncoder(f).Encode(u)
}

// ClearSession signs the user out. A missing session is not an error.
func ClearSession() error {
	if err := os.Remove(SessionPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
