// Package otp implements the time-boxed one-time-passcode gate used to
// confirm contact-point ownership during registration.
package otp

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// DefaultTTL is the validity window for an issued code.
const DefaultTTL = 300 * time.Second

// Session holds a live OTP code and the registration payload bound to it.
type Session struct {
	Code     string
	IssuedAt time.Time
	Email    string
	Phone    string
	Profile  models.PendingProfile
}

// GateConfig holds configuration for the OTP gate. Zero values fall back
// to defaults; Now and GenCode are injectable for tests.
type GateConfig struct {
	TTL     time.Duration
	Now     func() time.Time
	GenCode func() (string, error)
}

// Gate issues and verifies one-time passcodes. At most one session is live
// at a time; issuing a new code supersedes the previous one.
type Gate struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	genCode func() (string, error)
	session *Session
}

// NewGate creates a new OTP gate.
func NewGate(cfg GateConfig) *Gate {
	g := &Gate{
		ttl:     cfg.TTL,
		now:     cfg.Now,
		genCode: cfg.GenCode,
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTTL
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.genCode == nil {
		g.genCode = GenerateCode
	}
	return g
}

// GenerateCode returns a 6-digit numeric code drawn uniformly from
// [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", apperrors.Wrap(err, "generating otp code")
	}
	code := n.Int64() + 100000
	return big.NewInt(code).String(), nil
}

// Issue generates a fresh code bound to the profile's email and phone,
// replacing any prior session.
func (g *Gate) Issue(profile models.PendingProfile) (string, error) {
	code, err := g.genCode()
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = &Session{
		Code:     code,
		IssuedAt: g.now(),
		Email:    profile.Email,
		Phone:    profile.Phone,
		Profile:  profile,
	}
	return code, nil
}

// Resend issues a new code for the profile, invalidating the previous one.
func (g *Gate) Resend(profile models.PendingProfile) (string, error) {
	return g.Issue(profile)
}

// Verify checks the entered code against the live session. It does not
// consume the session; the caller finalizes registration and calls Consume.
func (g *Gate) Verify(entered string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return apperrors.ErrNoOTPSession
	}
	if g.now().Sub(g.session.IssuedAt) > g.ttl {
		return apperrors.ErrOTPExpired
	}
	if entered != g.session.Code {
		return apperrors.ErrOTPMismatch
	}
	return nil
}

// Export returns a copy of the live session so a caller can persist it
// across process restarts.
func (g *Gate) Export() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return Session{}, false
	}
	return *g.session, true
}

// Restore installs a previously exported session. The TTL still counts
// from the session's original IssuedAt.
func (g *Gate) Restore(s Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = &s
}

// Pending returns the registration payload bound to the live session.
func (g *Gate) Pending() (models.PendingProfile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return models.PendingProfile{}, false
	}
	return g.session.Profile, true
}

// Consume discards the live session.
func (g *Gate) Consume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = nil
}
