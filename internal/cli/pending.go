package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"tradedesk/internal/otp"
)

const pendingFile = "pending-registration.json"

func (a *App) pendingPath() string {
	return filepath.Join(a.ConfigDir, pendingFile)
}

// savePendingRegistration writes the live OTP session to disk so that
// 'verify' and 'resend-otp' work in a later invocation. Best effort.
func (a *App) savePendingRegistration() {
	session, ok := a.Accounts.Gate().Export()
	if !ok {
		return
	}
	data, err := json.Marshal(session)
	if err == nil {
		if err = os.MkdirAll(a.ConfigDir, 0755); err == nil {
			err = os.WriteFile(a.pendingPath(), data, 0600)
		}
	}
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to persist pending registration")
	}
}

// loadPendingRegistration restores a previously saved OTP session into
// the gate. An expired session is still restored; verification reports
// the expiry.
func (a *App) loadPendingRegistration() {
	data, err := os.ReadFile(a.pendingPath())
	if err != nil {
		return
	}
	var session otp.Session
	if err := json.Unmarshal(data, &session); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to read pending registration")
		return
	}
	a.Accounts.Gate().Restore(session)
}

func (a *App) clearPendingRegistration() {
	if err := os.Remove(a.pendingPath()); err != nil && !os.IsNotExist(err) {
		a.Logger.Warn().Err(err).Msg("Failed to clear pending registration")
	}
}
