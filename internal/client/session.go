package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const sessionKey = "session"

// Session stores the logged-in email in a dotenv-format file under a
// single "session" key. It is a local flag, not a credential.
type Session struct {
	path string
}

func NewSession(path string) *Session {
	return &Session{path: path}
}

// DefaultSessionPath is taskctl/session under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskctl", "session"), nil
}

// Load returns the stored email, or "" when there is no session.
func (s *Session) Load() (string, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(values[sessionKey]), nil
}

func (s *Session) Save(email string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	if err := godotenv.Write(map[string]string{sessionKey: email}, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *Session) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) LoggedIn() bool {
	email, err := s.Load()
	return err == nil && email != ""
}
