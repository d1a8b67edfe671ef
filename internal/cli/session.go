package cli

import (
	"os"
	"path/filepath"
	"strings"

	"tradedesk/internal/account"
	apperrors "tradedesk/internal/errors"
)

const sessionFile = "session"

func (a *App) sessionPath() string {
	return filepath.Join(a.ConfigDir, sessionFile)
}

// saveSession records the logged-in email.
func (a *App) saveSession(email string) error {
	if err := os.MkdirAll(a.ConfigDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(a.sessionPath(), []byte(email+"\n"), 0600)
}

// clearSession logs out.
func (a *App) clearSession() error {
	err := os.Remove(a.sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// currentEmail returns the logged-in email, empty when logged out.
func (a *App) currentEmail() string {
	data, err := os.ReadFile(a.sessionPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// currentAccount resolves the logged-in account.
func (a *App) currentAccount() (*account.Account, error) {
	email := a.currentEmail()
	if email == "" {
		return nil, apperrors.Wrap(apperrors.ErrAccountNotFound, "not logged in, run 'tradedesk login'")
	}
	return a.Accounts.Get(email)
}
