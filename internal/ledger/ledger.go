// Package ledger implements the account ledger: cash balance, equity
// positions, mutual-fund holdings and the append-only order and
// transaction logs. All mutation goes through the order router.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
	"tradedesk/internal/pricing"
)

// UnitPrecision is the number of decimal places for mutual-fund units.
const UnitPrecision = 4

// FeeSchedule is a flat-fee policy for withdrawals: withdrawals below
// Threshold pay FlatFee, withdrawals at or above it pay nothing.
type FeeSchedule struct {
	Threshold decimal.Decimal
	FlatFee   decimal.Decimal
}

// Fee returns the fee for a withdrawal of the given amount.
func (f FeeSchedule) Fee(amount decimal.Decimal) decimal.Decimal {
	if f.FlatFee.IsPositive() && amount.LessThan(f.Threshold) {
		return f.FlatFee
	}
	return decimal.Zero
}

// Config holds ledger construction parameters.
type Config struct {
	OpeningBalance decimal.Decimal
	WithdrawFees   FeeSchedule
	Now            func() time.Time
}

// Ledger owns one account's cash and holdings. Operations are atomic with
// respect to concurrent callers; a rejected operation leaves all state
// unchanged.
type Ledger struct {
	mu           sync.RWMutex
	balance      decimal.Decimal
	positions    map[string]*models.Position
	holdings     map[string]*models.FundHolding
	orders       []models.Order
	transactions []models.Transaction
	fees         FeeSchedule
	now          func() time.Time
}

// New creates a ledger. A positive opening balance is recorded as an
// opening-credit transaction so the log invariant holds from the start.
func New(cfg Config) *Ledger {
	l := &Ledger{
		balance:   decimal.Zero,
		positions: make(map[string]*models.Position),
		holdings:  make(map[string]*models.FundHolding),
		fees:      cfg.WithdrawFees,
		now:       cfg.Now,
	}
	if l.now == nil {
		l.now = time.Now
	}
	if cfg.OpeningBalance.IsPositive() {
		l.balance = cfg.OpeningBalance
		l.appendTransaction(models.TxnCredit, cfg.OpeningBalance, "Opening balance")
	}
	return l
}

func positionKey(exchange models.Exchange, symbol string) string {
	return fmt.Sprintf("%s:%s", exchange, symbol)
}

// appendTransaction records a cash movement with the post-move balance.
// Callers must hold the write lock and have already applied the balance
// change.
func (l *Ledger) appendTransaction(direction models.TxnDirection, amount decimal.Decimal, description string) models.Transaction {
	txn := models.Transaction{
		ID:          uuid.NewString(),
		Time:        l.now(),
		Direction:   direction,
		Amount:      amount,
		Description: description,
		Balance:     l.balance,
	}
	l.transactions = append([]models.Transaction{txn}, l.transactions...)
	return txn
}

// appendOrder records an executed order, most recent first.
func (l *Ledger) appendOrder(order models.Order) models.Order {
	order.ID = uuid.NewString()
	order.Time = l.now()
	order.Status = models.OrderExecuted
	l.orders = append([]models.Order{order}, l.orders...)
	return order
}

// Deposit credits the balance. Amount must be positive.
func (l *Ledger) Deposit(amount decimal.Decimal, method string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "deposit amount %s", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance = l.balance.Add(amount)
	txn := l.appendTransaction(models.TxnCredit, amount, fmt.Sprintf("Funds added via %s", method))
	return txn, nil
}

// WithdrawFee returns the fee that a withdrawal of amount would incur.
func (l *Ledger) WithdrawFee(amount decimal.Decimal) decimal.Decimal {
	return l.fees.Fee(amount)
}

// Withdraw debits the balance and records the destination bank account.
// The flat fee reduces the payout, not the debit. Fails with
// ErrInsufficientFunds when amount exceeds the balance.
func (l *Ledger) Withdraw(amount decimal.Decimal, dest models.BankAccount) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "withdrawal amount %s", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.GreaterThan(l.balance) {
		return models.Transaction{}, apperrors.Wrapf(apperrors.ErrInsufficientFunds,
			"withdraw %s with balance %s", amount.StringFixed(2), l.balance.StringFixed(2))
	}

	desc := fmt.Sprintf("Withdrawal to %s - XXXX%s", dest.BankName, maskedSuffix(dest.AccountNumber))
	if fee := l.fees.Fee(amount); fee.IsPositive() {
		desc += fmt.Sprintf(" (fee %s)", fee.StringFixed(2))
	}

	l.balance = l.balance.Sub(amount)
	txn := l.appendTransaction(models.TxnDebit, amount, desc)
	return txn, nil
}

func maskedSuffix(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return accountNumber
	}
	return accountNumber[len(accountNumber)-4:]
}

// ApplyBuy executes an equity buy: debits quantity*price and merges the
// lot into the (symbol, exchange) position at weighted-average cost.
func (l *Ledger) ApplyBuy(symbol string, exchange models.Exchange, name string, quantity int64, price decimal.Decimal) (models.Order, models.Transaction, error) {
	if quantity <= 0 || !price.IsPositive() {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInvalidInput,
			"buy %s qty %d price %s", symbol, quantity, price)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	qty := decimal.NewFromInt(quantity)
	total := price.Mul(qty)
	if total.GreaterThan(l.balance) {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInsufficientFunds,
			"buy %s: need %s, have %s", symbol, total.StringFixed(2), l.balance.StringFixed(2))
	}

	key := positionKey(exchange, symbol)
	pos, exists := l.positions[key]
	if exists {
		oldQty := decimal.NewFromInt(pos.Quantity)
		newQty := oldQty.Add(qty)
		pos.AvgCost = pos.AvgCost.Mul(oldQty).Add(price.Mul(qty)).Div(newQty)
		pos.Quantity += quantity
	} else {
		pos = &models.Position{
			Symbol:   symbol,
			Name:     name,
			Exchange: exchange,
			Quantity: quantity,
			AvgCost:  price,
		}
		l.positions[key] = pos
	}
	pos.LastPrice = price
	l.revaluePosition(pos)

	l.balance = l.balance.Sub(total)

	order := l.appendOrder(models.Order{
		Kind:     models.KindEquity,
		Symbol:   symbol,
		Name:     name,
		Exchange: exchange,
		Side:     models.OrderSideBuy,
		Quantity: quantity,
		Amount:   total,
		Price:    price,
	})
	txn := l.appendTransaction(models.TxnDebit, total, fmt.Sprintf("Bought %d shares of %s", quantity, symbol))
	return order, txn, nil
}

// ApplySell executes an equity sell: credits quantity*price and reduces
// the position, removing it at zero. The remaining lot keeps its prior
// weighted-average cost.
func (l *Ledger) ApplySell(symbol string, exchange models.Exchange, quantity int64, price decimal.Decimal) (models.Order, models.Transaction, error) {
	if quantity <= 0 || !price.IsPositive() {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInvalidInput,
			"sell %s qty %d price %s", symbol, quantity, price)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := positionKey(exchange, symbol)
	pos, exists := l.positions[key]
	if !exists {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrNoPosition, "sell %s on %s", symbol, exchange)
	}
	if quantity > pos.Quantity {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInsufficientQuantity,
			"sell %d of %s with %d held", quantity, symbol, pos.Quantity)
	}

	total := price.Mul(decimal.NewFromInt(quantity))
	pos.Quantity -= quantity
	if pos.Quantity == 0 {
		delete(l.positions, key)
	} else {
		pos.LastPrice = price
		l.revaluePosition(pos)
	}

	l.balance = l.balance.Add(total)

	order := l.appendOrder(models.Order{
		Kind:     models.KindEquity,
		Symbol:   symbol,
		Name:     pos.Name,
		Exchange: exchange,
		Side:     models.OrderSideSell,
		Quantity: quantity,
		Amount:   total,
		Price:    price,
	})
	txn := l.appendTransaction(models.TxnCredit, total, fmt.Sprintf("Sold %d shares of %s", quantity, symbol))
	return order, txn, nil
}

// InvestFund executes a mutual-fund purchase: units = amount/nav quantized
// to four decimal places, merged additively into the holding.
func (l *Ledger) InvestFund(fundID, name string, amount, nav decimal.Decimal) (models.Order, models.Transaction, error) {
	if !amount.IsPositive() || !nav.IsPositive() {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInvalidInput,
			"invest %s amount %s nav %s", fundID, amount, nav)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.GreaterThan(l.balance) {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInsufficientFunds,
			"invest %s: need %s, have %s", fundID, amount.StringFixed(2), l.balance.StringFixed(2))
	}

	units := amount.DivRound(nav, UnitPrecision)

	h, exists := l.holdings[fundID]
	if exists {
		h.Units = h.Units.Add(units)
		h.Invested = h.Invested.Add(amount)
	} else {
		h = &models.FundHolding{
			FundID:   fundID,
			Name:     name,
			Units:    units,
			Invested: amount,
		}
		l.holdings[fundID] = h
	}
	h.LastNAV = nav
	l.revalueHolding(h)

	l.balance = l.balance.Sub(amount)

	order := l.appendOrder(models.Order{
		Kind:   models.KindFund,
		Symbol: fundID,
		Name:   name,
		Side:   models.OrderSideInvest,
		Units:  units,
		Amount: amount,
		Price:  nav,
	})
	txn := l.appendTransaction(models.TxnDebit, amount, fmt.Sprintf("Invested %s in %s", amount.StringFixed(2), name))
	return order, txn, nil
}

// RedeemFund executes a mutual-fund redemption: credits units*nav and
// reduces the holding, removing it at zero units. The invested amount is
// scaled down proportionally so the per-unit cost basis is unchanged.
func (l *Ledger) RedeemFund(fundID string, units, nav decimal.Decimal) (models.Order, models.Transaction, error) {
	if !units.IsPositive() || !nav.IsPositive() {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInvalidInput,
			"redeem %s units %s nav %s", fundID, units, nav)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	h, exists := l.holdings[fundID]
	if !exists {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrNoHolding, "redeem %s", fundID)
	}
	if units.GreaterThan(h.Units) {
		return models.Order{}, models.Transaction{}, apperrors.Wrapf(apperrors.ErrInsufficientUnits,
			"redeem %s units with %s held", units, h.Units)
	}

	proceeds := units.Mul(nav)
	remaining := h.Units.Sub(units)
	if remaining.IsZero() {
		delete(l.holdings, fundID)
	} else {
		h.Invested = h.Invested.Mul(remaining).Div(h.Units)
		h.Units = remaining
		h.LastNAV = nav
		l.revalueHolding(h)
	}

	l.balance = l.balance.Add(proceeds)

	order := l.appendOrder(models.Order{
		Kind:   models.KindFund,
		Symbol: fundID,
		Name:   h.Name,
		Side:   models.OrderSideRedeem,
		Units:  units,
		Amount: proceeds,
		Price:  nav,
	})
	txn := l.appendTransaction(models.TxnCredit, proceeds, fmt.Sprintf("Redeemed %s units of %s", units, h.Name))
	return order, txn, nil
}

// MarkToMarket refreshes every position and holding from the price source.
// Instruments the source has no quote for keep their stale price; derived
// values are recomputed either way.
func (l *Ledger) MarkToMarket(src pricing.Source) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, pos := range l.positions {
		if price, ok := src.Price(pos.Symbol); ok {
			pos.LastPrice = price
		}
		l.revaluePosition(pos)
	}
	for _, h := range l.holdings {
		if nav, ok := src.NAV(h.FundID); ok {
			h.LastNAV = nav
		}
		l.revalueHolding(h)
	}
}

// revaluePosition recomputes derived fields from quantity, cost and last
// price. Caller holds the write lock.
func (l *Ledger) revaluePosition(pos *models.Position) {
	qty := decimal.NewFromInt(pos.Quantity)
	pos.Investment = pos.AvgCost.Mul(qty)
	pos.CurrentValue = pos.LastPrice.Mul(qty)
	pos.PnL = pos.CurrentValue.Sub(pos.Investment)
	pos.PnLPercent = pnlPercent(pos.CurrentValue, pos.Investment)
}

func (l *Ledger) revalueHolding(h *models.FundHolding) {
	h.CurrentValue = h.Units.Mul(h.LastNAV)
	h.PnL = h.CurrentValue.Sub(h.Invested)
	h.PnLPercent = pnlPercent(h.CurrentValue, h.Invested)
}

// pnlPercent is (current - invested) / invested * 100, defined as zero
// when invested is zero.
func pnlPercent(current, invested decimal.Decimal) decimal.Decimal {
	if invested.IsZero() {
		return decimal.Zero
	}
	return current.Sub(invested).Div(invested).Mul(decimal.NewFromInt(100))
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Positions returns all open positions sorted by exchange then symbol.
func (l *Ledger) Positions() []models.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Exchange != out[j].Exchange {
			return out[i].Exchange < out[j].Exchange
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Position returns the position for (symbol, exchange), if any.
func (l *Ledger) Position(symbol string, exchange models.Exchange) (models.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.positions[positionKey(exchange, symbol)]
	if !ok {
		return models.Position{}, false
	}
	return *pos, true
}

// Holdings returns all fund holdings sorted by fund ID.
func (l *Ledger) Holdings() []models.FundHolding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.FundHolding, 0, len(l.holdings))
	for _, h := range l.holdings {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundID < out[j].FundID })
	return out
}

// Holding returns the holding for fundID, if any.
func (l *Ledger) Holding(fundID string) (models.FundHolding, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h, ok := l.holdings[fundID]
	if !ok {
		return models.FundHolding{}, false
	}
	return *h, true
}

// Orders returns the order log, most recent first.
func (l *Ledger) Orders() []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// Transactions returns the transaction log, most recent first.
func (l *Ledger) Transactions() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Valuation summarizes cash, invested capital and current market value.
type Valuation struct {
	Cash        decimal.Decimal
	EquityValue decimal.Decimal
	FundValue   decimal.Decimal
	Investment  decimal.Decimal
	PnL         decimal.Decimal
}

// Valuation computes the account summary from current ledger state.
func (l *Ledger) Valuation() Valuation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v := Valuation{Cash: l.balance}
	for _, pos := range l.positions {
		v.EquityValue = v.EquityValue.Add(pos.CurrentValue)
		v.Investment = v.Investment.Add(pos.Investment)
		v.PnL = v.PnL.Add(pos.PnL)
	}
	for _, h := range l.holdings {
		v.FundValue = v.FundValue.Add(h.CurrentValue)
		v.Investment = v.Investment.Add(h.Invested)
		v.PnL = v.PnL.Add(h.PnL)
	}
	return v
}
