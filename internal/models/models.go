// Package models provides domain models for the brokerage simulator.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange represents a stock exchange.
type Exchange string

const (
	NSE Exchange = "NSE"
	BSE Exchange = "BSE"
)

// InstrumentKind distinguishes equity orders from mutual-fund orders.
// KindCash marks cash movements in audit records; orders never carry it.
type InstrumentKind string

const (
	KindEquity InstrumentKind = "EQUITY"
	KindFund   InstrumentKind = "FUND"
	KindCash   InstrumentKind = "CASH"
)

// OrderSide represents the side of an order.
type OrderSide string

const (
	OrderSideBuy    OrderSide = "BUY"
	OrderSideSell   OrderSide = "SELL"
	OrderSideInvest OrderSide = "INVEST"
	OrderSideRedeem OrderSide = "REDEEM"
)

// OrderStatus represents the lifecycle state of an order. Only executed
// orders are recorded; rejected submissions never become orders.
type OrderStatus string

const (
	OrderExecuted OrderStatus = "Executed"
)

// TxnDirection represents the direction of a ledger transaction.
type TxnDirection string

const (
	TxnCredit TxnDirection = "Credit"
	TxnDebit  TxnDirection = "Debit"
)

// MarketStatus represents the current market session state.
type MarketStatus string

const (
	MarketClosed     MarketStatus = "CLOSED"
	MarketPreMarket  MarketStatus = "PRE_MARKET"
	MarketOpen       MarketStatus = "OPEN"
	MarketPostMarket MarketStatus = "POST_MARKET"
)

// Position represents an equity holding. A position exists only while its
// quantity is positive; it is removed when fully sold.
type Position struct {
	Symbol       string
	Name         string
	Exchange     Exchange
	Quantity     int64
	AvgCost      decimal.Decimal
	LastPrice    decimal.Decimal
	Investment   decimal.Decimal
	CurrentValue decimal.Decimal
	PnL          decimal.Decimal
	PnLPercent   decimal.Decimal
}

// FundHolding represents a mutual-fund holding. Units are fractional with
// four decimal places of precision.
type FundHolding struct {
	FundID       string
	Name         string
	Units        decimal.Decimal
	Invested     decimal.Decimal
	LastNAV      decimal.Decimal
	CurrentValue decimal.Decimal
	PnL          decimal.Decimal
	PnLPercent   decimal.Decimal
}

// Order is an immutable record of an executed order. For equity orders
// Quantity and Price are set; for fund orders Units, Amount and Price
// (the NAV) are set.
type Order struct {
	ID       string
	Time     time.Time
	Kind     InstrumentKind
	Symbol   string
	Name     string
	Exchange Exchange
	Side     OrderSide
	Quantity int64
	Units    decimal.Decimal
	Amount   decimal.Decimal
	Price    decimal.Decimal
	Status   OrderStatus
}

// Transaction is an immutable record of a cash movement. Balance is the
// account balance immediately after the transaction was applied.
type Transaction struct {
	ID          string
	Time        time.Time
	Direction   TxnDirection
	Amount      decimal.Decimal
	Description string
	Balance     decimal.Decimal
}

// BankAccount is a linked bank account used for withdrawals.
type BankAccount struct {
	HolderName    string
	AccountNumber string
	IFSC          string
	BankName      string
	Verified      bool
}

// PendingProfile is the registration payload held by an OTP session until
// the code is verified.
type PendingProfile struct {
	Name         string
	Email        string
	Phone        string
	PAN          string
	PasswordHash []byte
}
