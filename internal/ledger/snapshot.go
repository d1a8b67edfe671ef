package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
)

// Snapshot is a point-in-time copy of ledger state, used by persistence
// collaborators. The engine itself never reads one back except through
// Restore.
type Snapshot struct {
	Balance      decimal.Decimal
	Positions    []models.Position
	Holdings     []models.FundHolding
	Orders       []models.Order
	Transactions []models.Transaction
}

// Snapshot copies the current ledger state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Balance:      l.Balance(),
		Positions:    l.Positions(),
		Holdings:     l.Holdings(),
		Orders:       l.Orders(),
		Transactions: l.Transactions(),
	}
}

// Restore builds a ledger from a previously saved snapshot. The snapshot's
// balance wins over cfg.OpeningBalance.
func Restore(snap Snapshot, cfg Config) *Ledger {
	l := &Ledger{
		balance:   snap.Balance,
		positions: make(map[string]*models.Position, len(snap.Positions)),
		holdings:  make(map[string]*models.FundHolding, len(snap.Holdings)),
		fees:      cfg.WithdrawFees,
		now:       cfg.Now,
	}
	if l.now == nil {
		l.now = time.Now
	}
	for i := range snap.Positions {
		pos := snap.Positions[i]
		l.positions[positionKey(pos.Exchange, pos.Symbol)] = &pos
		l.revaluePosition(&pos)
	}
	for i := range snap.Holdings {
		h := snap.Holdings[i]
		l.holdings[h.FundID] = &h
		l.revalueHolding(&h)
	}
	l.orders = make([]models.Order, len(snap.Orders))
	copy(l.orders, snap.Orders)
	l.transactions = make([]models.Transaction, len(snap.Transactions))
	copy(l.transactions, snap.Transactions)
	return l
}
