package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/account"
	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/ledger"
	"tradedesk/internal/models"
	"tradedesk/internal/pricing"
)

func testLedgerConfig() ledger.Config {
	return ledger.Config{
		OpeningBalance: decimal.NewFromInt(100000),
		WithdrawFees: ledger.FeeSchedule{
			Threshold: decimal.NewFromInt(5000),
			FlatFee:   decimal.NewFromInt(10),
		},
		Now: func() time.Time { return time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC) },
	}
}

func newTestAccount(t *testing.T) *account.Account {
	t.Helper()
	cfg := testLedgerConfig()
	l := ledger.New(cfg)
	if _, _, err := l.ApplyBuy("RELIANCE", models.NSE, "Reliance Industries", 10, decimal.NewFromInt(2900)); err != nil {
		t.Fatalf("ApplyBuy: %v", err)
	}
	if _, _, err := l.InvestFund("SBI-BLUECHIP", "SBI Bluechip Fund", decimal.NewFromInt(10000), decimal.RequireFromString("75.50")); err != nil {
		t.Fatalf("InvestFund: %v", err)
	}
	return &account.Account{
		Name:     "Rahul Verma",
		Email:    "rahul@example.com",
		Phone:    "9876543210",
		PAN:      "ABCDE1234F",
		Password: []byte("$2a$10$fakehashfortestingonly000000000000000000000000000000"),
		Verified: true,
		Banks: []models.BankAccount{{
			HolderName:    "Rahul Verma",
			AccountNumber: "123456789012",
			IFSC:          "HDFC0001234",
			BankName:      "HDFC Bank",
			Verified:      true,
		}},
		Watchlist: []string{"RELIANCE", "TCS"},
		CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Ledger:    l,
	}
}

func newTestStoreDB(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tradedesk.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStoreDB(t)
	ctx := context.Background()
	acct := newTestAccount(t)

	if err := s.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	loaded, err := s.LoadAccount(ctx, "rahul@example.com", testLedgerConfig())
	if err != nil {
		t.Fatalf("LoadAccount: %v", err)
	}

	if loaded.Name != acct.Name || loaded.Phone != acct.Phone || loaded.PAN != acct.PAN {
		t.Errorf("profile mismatch: %+v", loaded)
	}
	if string(loaded.Password) != string(acct.Password) {
		t.Error("password hash mismatch")
	}
	if !loaded.Verified {
		t.Error("verified flag lost")
	}
	if len(loaded.Watchlist) != 2 || loaded.Watchlist[0] != "RELIANCE" {
		t.Errorf("watchlist = %v", loaded.Watchlist)
	}
	if len(loaded.Banks) != 1 || loaded.Banks[0].IFSC != "HDFC0001234" {
		t.Errorf("banks = %+v", loaded.Banks)
	}

	want := acct.Ledger.Snapshot()
	got := loaded.Ledger.Snapshot()

	if !got.Balance.Equal(want.Balance) {
		t.Errorf("balance = %s, want %s", got.Balance, want.Balance)
	}
	if len(got.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(got.Positions))
	}
	if got.Positions[0].Quantity != 10 || !got.Positions[0].AvgCost.Equal(decimal.NewFromInt(2900)) {
		t.Errorf("position = %+v", got.Positions[0])
	}
	if !got.Positions[0].LastPrice.Equal(want.Positions[0].LastPrice) {
		t.Errorf("last price = %s, want %s", got.Positions[0].LastPrice, want.Positions[0].LastPrice)
	}
	if len(got.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(got.Holdings))
	}
	if !got.Holdings[0].Units.Equal(want.Holdings[0].Units) {
		t.Errorf("units = %s, want %s", got.Holdings[0].Units, want.Holdings[0].Units)
	}
	if !got.Holdings[0].Invested.Equal(want.Holdings[0].Invested) {
		t.Errorf("invested = %s, want %s", got.Holdings[0].Invested, want.Holdings[0].Invested)
	}
	if !got.Holdings[0].LastNAV.Equal(want.Holdings[0].LastNAV) {
		t.Errorf("last nav = %s, want %s", got.Holdings[0].LastNAV, want.Holdings[0].LastNAV)
	}

	if len(got.Orders) != len(want.Orders) {
		t.Fatalf("orders = %d, want %d", len(got.Orders), len(want.Orders))
	}
	for i := range want.Orders {
		if got.Orders[i].ID != want.Orders[i].ID {
			t.Errorf("order %d id = %s, want %s", i, got.Orders[i].ID, want.Orders[i].ID)
		}
		if !got.Orders[i].Price.Equal(want.Orders[i].Price) {
			t.Errorf("order %d price = %s, want %s", i, got.Orders[i].Price, want.Orders[i].Price)
		}
	}

	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("transactions = %d, want %d", len(got.Transactions), len(want.Transactions))
	}
	// Most recent first survives the round trip.
	for i := range want.Transactions {
		if got.Transactions[i].ID != want.Transactions[i].ID {
			t.Errorf("txn %d id mismatch", i)
		}
		if !got.Transactions[i].Balance.Equal(want.Transactions[i].Balance) {
			t.Errorf("txn %d balance = %s, want %s", i, got.Transactions[i].Balance, want.Transactions[i].Balance)
		}
	}
}

// A symbol the price source has no quote for must keep its last trade
// price across a restart; valuation falls back to the stored value.
func TestSaveLoadKeepsLastPriceForUnquotedSymbol(t *testing.T) {
	s := newTestStoreDB(t)
	ctx := context.Background()
	cfg := testLedgerConfig()

	l := ledger.New(cfg)
	if _, _, err := l.ApplyBuy("OFFBOOK", models.NSE, "Offbook Ltd", 10, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("ApplyBuy: %v", err)
	}
	acct := newTestAccount(t)
	acct.Ledger = l

	if err := s.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	loaded, err := s.LoadAccount(ctx, "rahul@example.com", cfg)
	if err != nil {
		t.Fatalf("LoadAccount: %v", err)
	}

	pos, ok := loaded.Ledger.Position("OFFBOOK", models.NSE)
	if !ok {
		t.Fatal("position missing after reload")
	}
	if !pos.LastPrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("last price = %s, want 500", pos.LastPrice)
	}

	// No quote available: a mark pass retains the restored value.
	loaded.Ledger.MarkToMarket(pricing.Static{})
	pos, _ = loaded.Ledger.Position("OFFBOOK", models.NSE)
	if !pos.LastPrice.Equal(decimal.NewFromInt(500)) {
		t.Errorf("marked price = %s, want retained 500", pos.LastPrice)
	}
	if !pos.CurrentValue.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("current value = %s, want 5000", pos.CurrentValue)
	}
}

func TestSaveAccountOverwrites(t *testing.T) {
	s := newTestStoreDB(t)
	ctx := context.Background()
	acct := newTestAccount(t)

	if err := s.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	// Sell the full position and save again; the stale row must be gone.
	if _, _, err := acct.Ledger.ApplySell("RELIANCE", models.NSE, 10, decimal.NewFromInt(3000)); err != nil {
		t.Fatalf("ApplySell: %v", err)
	}
	if err := s.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := s.LoadAccount(ctx, "rahul@example.com", testLedgerConfig())
	if err != nil {
		t.Fatalf("LoadAccount: %v", err)
	}
	if got := loaded.Ledger.Positions(); len(got) != 0 {
		t.Errorf("positions after full sell = %+v, want none", got)
	}
	if !loaded.Ledger.Balance().Equal(acct.Ledger.Balance()) {
		t.Errorf("balance = %s, want %s", loaded.Ledger.Balance(), acct.Ledger.Balance())
	}
}

func TestLoadAccountNotFound(t *testing.T) {
	s := newTestStoreDB(t)
	_, err := s.LoadAccount(context.Background(), "nobody@example.com", testLedgerConfig())
	if !apperrors.Is(err, apperrors.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestLoadAll(t *testing.T) {
	s := newTestStoreDB(t)
	ctx := context.Background()

	first := newTestAccount(t)
	second := newTestAccount(t)
	second.Email = "priya@example.com"
	second.Name = "Priya Sharma"

	if err := s.SaveAccount(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := s.SaveAccount(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	accounts, err := s.LoadAll(ctx, testLedgerConfig())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}
	// Sorted by email.
	if accounts[0].Email != "priya@example.com" || accounts[1].Email != "rahul@example.com" {
		t.Errorf("order = %s, %s", accounts[0].Email, accounts[1].Email)
	}
}
