// Package pricing defines the price/NAV oracle consumed by the ledger and
// order router, plus a simulated implementation.
package pricing

import (
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// Source supplies current prices and NAVs. Implementations may be
// unavailable for any instrument; callers must treat a false return as
// "no quote" and keep their stale value.
type Source interface {
	Price(symbol string) (decimal.Decimal, bool)
	NAV(fundID string) (decimal.Decimal, bool)
}

// SimSource serves quotes from static tables with pseudo-random jitter,
// standing in for live market movement. Jitter is the maximum fractional
// move applied per query; zero disables it.
type SimSource struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	navs   map[string]decimal.Decimal
	jitter float64
	rng    *rand.Rand
}

// SimConfig holds configuration for a SimSource.
type SimConfig struct {
	Prices map[string]decimal.Decimal
	NAVs   map[string]decimal.Decimal
	Jitter float64
	Seed   int64
}

// NewSimSource creates a simulated price source.
func NewSimSource(cfg SimConfig) *SimSource {
	s := &SimSource{
		prices: make(map[string]decimal.Decimal, len(cfg.Prices)),
		navs:   make(map[string]decimal.Decimal, len(cfg.NAVs)),
		jitter: cfg.Jitter,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	for k, v := range cfg.Prices {
		s.prices[k] = v
	}
	for k, v := range cfg.NAVs {
		s.navs[k] = v
	}
	return s
}

// Price returns the current simulated price for a symbol.
func (s *SimSource) Price(symbol string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prices[symbol]
	if !ok {
		return decimal.Zero, false
	}
	p = s.drift(p)
	s.prices[symbol] = p
	return p, true
}

// NAV returns the current simulated NAV for a fund.
func (s *SimSource) NAV(fundID string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.navs[fundID]
	if !ok {
		return decimal.Zero, false
	}
	n = s.drift(n)
	s.navs[fundID] = n
	return n, true
}

// drift applies one random move within [-jitter, +jitter], keeping two
// decimal places of precision.
func (s *SimSource) drift(v decimal.Decimal) decimal.Decimal {
	if s.jitter <= 0 {
		return v
	}
	move := (s.rng.Float64()*2 - 1) * s.jitter
	factor := decimal.NewFromFloat(1 + move)
	return v.Mul(factor).Round(2)
}

// SetPrice pins a symbol's price, adding it if absent.
func (s *SimSource) SetPrice(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

// Static is a fixed-table Source with no jitter, useful for tests and for
// feeding externally observed quotes.
type Static struct {
	Prices map[string]decimal.Decimal
	NAVs   map[string]decimal.Decimal
}

// Price returns the fixed price for a symbol.
func (s Static) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := s.Prices[symbol]
	return p, ok
}

// NAV returns the fixed NAV for a fund.
func (s Static) NAV(fundID string) (decimal.Decimal, bool) {
	n, ok := s.NAVs[fundID]
	return n, ok
}
