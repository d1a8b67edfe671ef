// Package account implements the ledger store: registration, OTP-gated
// account creation, authentication and per-account state.
package account

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"tradedesk/internal/catalog"
	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/ledger"
	"tradedesk/internal/models"
	"tradedesk/internal/otp"
)

// Account is one verified brokerage account. Its ledger owns all cash,
// position and log state; nothing mutates them except the order router.
type Account struct {
	Name      string
	Email     string
	Phone     string
	PAN       string
	Password  []byte // bcrypt hash
	Verified  bool
	Banks     []models.BankAccount
	Watchlist []string
	CreatedAt time.Time
	Ledger    *ledger.Ledger
}

// RegistrationRequest is the payload for opening a new account.
type RegistrationRequest struct {
	Name     string
	Email    string
	Phone    string
	PAN      string
	Password string
}

// Store owns all accounts keyed by email, plus the OTP gate for pending
// registrations. Construction and teardown belong to the host
// application; nothing initializes implicitly.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*Account
	gate      *otp.Gate
	ledgerCfg ledger.Config
	now       func() time.Time
	log       zerolog.Logger
}

// StoreConfig holds store construction parameters.
type StoreConfig struct {
	Gate      *otp.Gate
	LedgerCfg ledger.Config
	Now       func() time.Time
	Logger    zerolog.Logger
}

// NewStore creates an empty account store.
func NewStore(cfg StoreConfig) *Store {
	s := &Store{
		accounts:  make(map[string]*Account),
		gate:      cfg.Gate,
		ledgerCfg: cfg.LedgerCfg,
		now:       cfg.Now,
		log:       cfg.Logger,
	}
	if s.gate == nil {
		s.gate = otp.NewGate(otp.GateConfig{})
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Gate exposes the OTP gate, for resends.
func (s *Store) Gate() *otp.Gate {
	return s.gate
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the request, hashes the password and issues an OTP
// bound to the pending profile. The account is not created until
// VerifyRegistration succeeds.
func (s *Store) Register(req RegistrationRequest) (string, error) {
	if err := ValidateRegistration(req); err != nil {
		return "", err
	}

	email := normalizeEmail(req.Email)
	s.mu.RLock()
	_, exists := s.accounts[email]
	s.mu.RUnlock()
	if exists {
		return "", apperrors.Wrapf(apperrors.ErrAccountExists, "register %s", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(err, "hashing password")
	}

	code, err := s.gate.Issue(models.PendingProfile{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		PAN:          strings.ToUpper(req.PAN),
		PasswordHash: hash,
	})
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("event", "registration_pending").
		Str("account", email).
		Msg("OTP issued for registration")
	return code, nil
}

// VerifyRegistration checks the OTP and, on success, consumes the session
// and creates the verified account with a fresh ledger.
func (s *Store) VerifyRegistration(code string) (*Account, error) {
	if err := s.gate.Verify(code); err != nil {
		return nil, err
	}

	profile, ok := s.gate.Pending()
	if !ok {
		return nil, apperrors.ErrNoOTPSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[profile.Email]; exists {
		return nil, apperrors.Wrapf(apperrors.ErrAccountExists, "finalize %s", profile.Email)
	}

	acct := &Account{
		Name:      profile.Name,
		Email:     profile.Email,
		Phone:     profile.Phone,
		PAN:       profile.PAN,
		Password:  profile.PasswordHash,
		Verified:  true,
		Watchlist: catalog.DefaultWatchlist(),
		CreatedAt: s.now(),
		Ledger:    ledger.New(s.ledgerCfg),
	}
	s.accounts[profile.Email] = acct
	s.gate.Consume()

	s.log.Info().
		Str("event", "account_created").
		Str("account", acct.Email).
		Msg("Registration verified")
	return acct, nil
}

// Authenticate checks credentials and the verified flag.
func (s *Store) Authenticate(email, password string) (*Account, error) {
	s.mu.RLock()
	acct, ok := s.accounts[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acct.Password, []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !acct.Verified {
		return nil, apperrors.ErrNotVerified
	}
	return acct, nil
}

// Get returns the account for an email.
func (s *Store) Get(email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return acct, nil
}

// Put inserts a restored account, replacing any existing entry. Intended
// for persistence collaborators loading snapshots at startup.
func (s *Store) Put(acct *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[normalizeEmail(acct.Email)] = acct
}

// Emails lists all registered emails, sorted.
func (s *Store) Emails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.accounts))
	for email := range s.accounts {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

// LinkBankAccount validates and appends a bank account.
func (s *Store) LinkBankAccount(email string, b models.BankAccount) error {
	if err := ValidateBankAccount(b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	b.IFSC = strings.ToUpper(b.IFSC)
	b.Verified = true
	acct.Banks = append(acct.Banks, b)
	return nil
}

// AddToWatchlist appends a symbol if not already present.
func (s *Store) AddToWatchlist(email, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return apperrors.NewValidationError("symbol", symbol, "symbol required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	for _, existing := range acct.Watchlist {
		if existing == symbol {
			return nil
		}
	}
	acct.Watchlist = append(acct.Watchlist, symbol)
	return nil
}

// RemoveFromWatchlist drops a symbol if present.
func (s *Store) RemoveFromWatchlist(email, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	for i, existing := range acct.Watchlist {
		if existing == symbol {
			acct.Watchlist = append(acct.Watchlist[:i], acct.Watchlist[i+1:]...)
			return nil
		}
	}
	return nil
}
