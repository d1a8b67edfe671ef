// Package router validates and applies orders and cash commands against an
// account ledger. It is the only component that invokes ledger mutators.
package router

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/ledger"
	"tradedesk/internal/models"
	"tradedesk/internal/pricing"
)

// EquityOrder is a request to buy or sell shares. A zero LimitPrice means
// execute at the provider's current price.
type EquityOrder struct {
	Symbol     string
	Exchange   models.Exchange
	Name       string
	Side       models.OrderSide
	Quantity   int64
	LimitPrice decimal.Decimal
}

// FundOrder is a request to invest in or redeem from a mutual fund.
// Invest orders carry Amount; redeem orders carry Units. A zero NAV means
// use the provider's current NAV.
type FundOrder struct {
	FundID string
	Name   string
	Side   models.OrderSide
	Amount decimal.Decimal
	Units  decimal.Decimal
	NAV    decimal.Decimal
}

// RejectedAttempt records a submission that was refused before execution.
// Kind is KindCash for deposits and withdrawals, which carry no side.
type RejectedAttempt struct {
	Time   time.Time
	Kind   models.InstrumentKind
	Symbol string
	Side   models.OrderSide
	Reason string
}

// Config holds router construction parameters.
type Config struct {
	Ledger *ledger.Ledger
	Prices pricing.Source
	Logger zerolog.Logger
	// RecordRejected keeps an in-memory audit trail of rejected
	// submissions. Rejections never produce orders or transactions
	// either way.
	RecordRejected bool
	Now            func() time.Time
}

// Router is the validating facade in front of a ledger.
type Router struct {
	ledger         *ledger.Ledger
	prices         pricing.Source
	log            zerolog.Logger
	recordRejected bool
	now            func() time.Time

	mu       sync.Mutex
	rejected []RejectedAttempt
}

// New creates a router for one account's ledger.
func New(cfg Config) *Router {
	r := &Router{
		ledger:         cfg.Ledger,
		prices:         cfg.Prices,
		log:            cfg.Logger,
		recordRejected: cfg.RecordRejected,
		now:            cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Router) reject(kind models.InstrumentKind, symbol string, side models.OrderSide, err error) error {
	r.log.Warn().
		Str("event", "submission_rejected").
		Str("kind", string(kind)).
		Str("symbol", symbol).
		Str("side", string(side)).
		Err(err).
		Msg("Submission rejected")

	if r.recordRejected {
		r.mu.Lock()
		r.rejected = append(r.rejected, RejectedAttempt{
			Time:   r.now(),
			Kind:   kind,
			Symbol: symbol,
			Side:   side,
			Reason: err.Error(),
		})
		r.mu.Unlock()
	}
	return err
}

// RejectedAttempts returns the recorded rejections, oldest first. Empty
// unless RecordRejected was set.
func (r *Router) RejectedAttempts() []RejectedAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RejectedAttempt, len(r.rejected))
	copy(out, r.rejected)
	return out
}

// PlaceEquityOrder validates and executes a buy or sell.
func (r *Router) PlaceEquityOrder(req EquityOrder) (models.Order, models.Transaction, error) {
	if req.Quantity <= 0 {
		return models.Order{}, models.Transaction{}, r.reject(models.KindEquity, req.Symbol, req.Side,
			apperrors.NewOrderError(req.Symbol, string(req.Side), "quantity must be positive", apperrors.ErrInvalidInput))
	}
	if req.LimitPrice.IsNegative() {
		return models.Order{}, models.Transaction{}, r.reject(models.KindEquity, req.Symbol, req.Side,
			apperrors.NewOrderError(req.Symbol, string(req.Side), "price must be positive", apperrors.ErrInvalidInput))
	}

	price := req.LimitPrice
	if price.IsZero() {
		p, ok := r.prices.Price(req.Symbol)
		if !ok {
			return models.Order{}, models.Transaction{}, r.reject(models.KindEquity, req.Symbol, req.Side,
				apperrors.Wrapf(apperrors.ErrPriceUnavailable, "no quote for %s", req.Symbol))
		}
		price = p
	}

	var (
		order models.Order
		txn   models.Transaction
		err   error
	)
	switch req.Side {
	case models.OrderSideBuy:
		order, txn, err = r.ledger.ApplyBuy(req.Symbol, req.Exchange, req.Name, req.Quantity, price)
	case models.OrderSideSell:
		order, txn, err = r.ledger.ApplySell(req.Symbol, req.Exchange, req.Quantity, price)
	default:
		err = apperrors.NewOrderError(req.Symbol, string(req.Side), "unknown side", apperrors.ErrInvalidInput)
	}
	if err != nil {
		return models.Order{}, models.Transaction{}, r.reject(models.KindEquity, req.Symbol, req.Side, err)
	}

	r.log.Info().
		Str("event", "order_executed").
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Int64("quantity", order.Quantity).
		Str("price", order.Price.StringFixed(2)).
		Msg("Order executed")
	return order, txn, nil
}

// PlaceFundOrder validates and executes a fund investment or redemption.
func (r *Router) PlaceFundOrder(req FundOrder) (models.Order, models.Transaction, error) {
	if req.NAV.IsNegative() {
		return models.Order{}, models.Transaction{}, r.reject(models.KindFund, req.FundID, req.Side,
			apperrors.NewOrderError(req.FundID, string(req.Side), "nav must be positive", apperrors.ErrInvalidInput))
	}

	nav := req.NAV
	if nav.IsZero() {
		n, ok := r.prices.NAV(req.FundID)
		if !ok {
			return models.Order{}, models.Transaction{}, r.reject(models.KindFund, req.FundID, req.Side,
				apperrors.Wrapf(apperrors.ErrPriceUnavailable, "no nav for %s", req.FundID))
		}
		nav = n
	}

	var (
		order models.Order
		txn   models.Transaction
		err   error
	)
	switch req.Side {
	case models.OrderSideInvest:
		if !req.Amount.IsPositive() {
			err = apperrors.NewOrderError(req.FundID, string(req.Side), "amount must be positive", apperrors.ErrInvalidInput)
			break
		}
		order, txn, err = r.ledger.InvestFund(req.FundID, req.Name, req.Amount, nav)
	case models.OrderSideRedeem:
		if !req.Units.IsPositive() {
			err = apperrors.NewOrderError(req.FundID, string(req.Side), "units must be positive", apperrors.ErrInvalidInput)
			break
		}
		order, txn, err = r.ledger.RedeemFund(req.FundID, req.Units, nav)
	default:
		err = apperrors.NewOrderError(req.FundID, string(req.Side), "unknown side", apperrors.ErrInvalidInput)
	}
	if err != nil {
		return models.Order{}, models.Transaction{}, r.reject(models.KindFund, req.FundID, req.Side, err)
	}

	r.log.Info().
		Str("event", "order_executed").
		Str("order_id", order.ID).
		Str("fund", order.Symbol).
		Str("side", string(order.Side)).
		Str("units", order.Units.String()).
		Str("nav", order.Price.StringFixed(2)).
		Msg("Fund order executed")
	return order, txn, nil
}

// Deposit validates and applies a cash deposit.
func (r *Router) Deposit(amount decimal.Decimal, method string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, r.reject(models.KindCash, "CASH", "",
			apperrors.Wrapf(apperrors.ErrInvalidInput, "deposit amount %s", amount))
	}
	txn, err := r.ledger.Deposit(amount, method)
	if err != nil {
		return models.Transaction{}, r.reject(models.KindCash, "CASH", "", err)
	}
	r.log.Info().
		Str("event", "deposit").
		Str("amount", amount.StringFixed(2)).
		Str("method", method).
		Msg("Funds added")
	return txn, nil
}

// Withdraw validates and applies a cash withdrawal.
func (r *Router) Withdraw(amount decimal.Decimal, dest models.BankAccount) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, r.reject(models.KindCash, "CASH", "",
			apperrors.Wrapf(apperrors.ErrInvalidInput, "withdrawal amount %s", amount))
	}
	txn, err := r.ledger.Withdraw(amount, dest)
	if err != nil {
		return models.Transaction{}, r.reject(models.KindCash, "CASH", "", err)
	}
	r.log.Info().
		Str("event", "withdrawal").
		Str("amount", amount.StringFixed(2)).
		Str("bank", dest.BankName).
		Msg("Withdrawal processed")
	return txn, nil
}

// MarkToMarket refreshes the ledger's holdings from the price source.
func (r *Router) MarkToMarket() {
	r.ledger.MarkToMarket(r.prices)
}
