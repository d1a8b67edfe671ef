package router

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/ledger"
	"tradedesk/internal/models"
	"tradedesk/internal/pricing"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestRouter(opening string, recordRejected bool) (*Router, *ledger.Ledger) {
	l := ledger.New(ledger.Config{OpeningBalance: d(opening)})
	src := pricing.Static{
		Prices: map[string]decimal.Decimal{"RELIANCE": d("2950"), "TCS": d("3840")},
		NAVs:   map[string]decimal.Decimal{"SBI-BLUECHIP": d("75.50")},
	}
	r := New(Config{
		Ledger:         l,
		Prices:         src,
		Logger:         zerolog.Nop(),
		RecordRejected: recordRejected,
	})
	return r, l
}

func TestPlaceEquityOrderMarketBuy(t *testing.T) {
	r, l := newTestRouter("100000", false)

	order, txn, err := r.PlaceEquityOrder(EquityOrder{
		Symbol:   "RELIANCE",
		Exchange: models.NSE,
		Name:     "Reliance Industries Ltd",
		Side:     models.OrderSideBuy,
		Quantity: 10,
	})
	if err != nil {
		t.Fatalf("PlaceEquityOrder: %v", err)
	}
	if !order.Price.Equal(d("2950")) {
		t.Errorf("price = %s, want provider quote 2950", order.Price)
	}
	if !txn.Amount.Equal(d("29500")) {
		t.Errorf("txn amount = %s, want 29500", txn.Amount)
	}
	if !l.Balance().Equal(d("70500")) {
		t.Errorf("balance = %s, want 70500", l.Balance())
	}
}

func TestPlaceEquityOrderLimitPriceWins(t *testing.T) {
	r, _ := newTestRouter("100000", false)

	order, _, err := r.PlaceEquityOrder(EquityOrder{
		Symbol:     "RELIANCE",
		Exchange:   models.NSE,
		Name:       "Reliance Industries Ltd",
		Side:       models.OrderSideBuy,
		Quantity:   1,
		LimitPrice: d("2900"),
	})
	if err != nil {
		t.Fatalf("PlaceEquityOrder: %v", err)
	}
	if !order.Price.Equal(d("2900")) {
		t.Errorf("price = %s, want limit 2900", order.Price)
	}
}

func TestPlaceEquityOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     EquityOrder
		wantErr error
	}{
		{
			"zero quantity",
			EquityOrder{Symbol: "RELIANCE", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: 0},
			apperrors.ErrInvalidInput,
		},
		{
			"negative quantity",
			EquityOrder{Symbol: "RELIANCE", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: -5},
			apperrors.ErrInvalidInput,
		},
		{
			"negative limit price",
			EquityOrder{Symbol: "RELIANCE", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: 1, LimitPrice: d("-1")},
			apperrors.ErrInvalidInput,
		},
		{
			"unknown symbol",
			EquityOrder{Symbol: "NOSUCH", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: 1},
			apperrors.ErrPriceUnavailable,
		},
		{
			"unknown side",
			EquityOrder{Symbol: "RELIANCE", Exchange: models.NSE, Side: models.OrderSide("HOLD"), Quantity: 1},
			apperrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, l := newTestRouter("100000", false)
			before := l.Balance()

			_, _, err := r.PlaceEquityOrder(tt.req)
			if !apperrors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if !l.Balance().Equal(before) {
				t.Errorf("rejected order mutated balance")
			}
			if len(l.Orders()) != 0 {
				t.Errorf("rejected order was recorded")
			}
		})
	}
}

func TestPlaceFundOrderInvestAndRedeem(t *testing.T) {
	r, l := newTestRouter("50000", false)

	order, _, err := r.PlaceFundOrder(FundOrder{
		FundID: "SBI-BLUECHIP",
		Name:   "SBI Bluechip Fund",
		Side:   models.OrderSideInvest,
		Amount: d("10000"),
	})
	if err != nil {
		t.Fatalf("invest: %v", err)
	}
	if !order.Price.Equal(d("75.50")) {
		t.Errorf("nav = %s, want provider 75.50", order.Price)
	}

	_, _, err = r.PlaceFundOrder(FundOrder{
		FundID: "SBI-BLUECHIP",
		Side:   models.OrderSideRedeem,
		Units:  d("100"),
		NAV:    d("80"),
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !l.Balance().Equal(d("48000")) { // 50000 - 10000 + 100*80
		t.Errorf("balance = %s, want 48000", l.Balance())
	}
}

func TestPlaceFundOrderValidation(t *testing.T) {
	r, _ := newTestRouter("50000", false)

	_, _, err := r.PlaceFundOrder(FundOrder{FundID: "SBI-BLUECHIP", Side: models.OrderSideInvest, Amount: d("0")})
	if !apperrors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("zero amount = %v, want ErrInvalidInput", err)
	}
	_, _, err = r.PlaceFundOrder(FundOrder{FundID: "SBI-BLUECHIP", Side: models.OrderSideRedeem, Units: d("0")})
	if !apperrors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("zero units = %v, want ErrInvalidInput", err)
	}
	_, _, err = r.PlaceFundOrder(FundOrder{FundID: "NOSUCH", Side: models.OrderSideInvest, Amount: d("100")})
	if !apperrors.Is(err, apperrors.ErrPriceUnavailable) {
		t.Errorf("unknown fund = %v, want ErrPriceUnavailable", err)
	}
}

func TestRejectedAttemptsRecordedWhenEnabled(t *testing.T) {
	r, _ := newTestRouter("100", true)

	r.PlaceEquityOrder(EquityOrder{Symbol: "RELIANCE", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: 0})
	r.PlaceEquityOrder(EquityOrder{Symbol: "TCS", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: 100})

	rejected := r.RejectedAttempts()
	if len(rejected) != 2 {
		t.Fatalf("rejected attempts = %d, want 2", len(rejected))
	}
	if rejected[0].Symbol != "RELIANCE" || rejected[1].Symbol != "TCS" {
		t.Errorf("rejected = %+v", rejected)
	}
	for _, rej := range rejected {
		if rej.Kind != models.KindEquity {
			t.Errorf("kind = %q, want %q", rej.Kind, models.KindEquity)
		}
	}
}

func TestRejectedCashAttemptsMarkedAsCash(t *testing.T) {
	r, _ := newTestRouter("100", true)

	r.Deposit(d("-10"), "UPI")
	r.Withdraw(d("5000"), models.BankAccount{BankName: "HDFC Bank"})

	rejected := r.RejectedAttempts()
	if len(rejected) != 2 {
		t.Fatalf("rejected attempts = %d, want 2", len(rejected))
	}
	for _, rej := range rejected {
		if rej.Kind != models.KindCash {
			t.Errorf("kind = %q, want %q", rej.Kind, models.KindCash)
		}
		if rej.Side != "" {
			t.Errorf("cash rejection carries side %q, want none", rej.Side)
		}
	}
}

func TestRejectedAttemptsNotRecordedByDefault(t *testing.T) {
	r, _ := newTestRouter("100", false)
	r.PlaceEquityOrder(EquityOrder{Symbol: "RELIANCE", Exchange: models.NSE, Side: models.OrderSideBuy, Quantity: 0})
	if got := r.RejectedAttempts(); len(got) != 0 {
		t.Errorf("rejected attempts = %d, want 0", len(got))
	}
}

func TestDepositWithdrawThroughRouter(t *testing.T) {
	r, l := newTestRouter("0", false)

	if _, err := r.Deposit(d("5000"), "UPI"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := r.Withdraw(d("6000"), models.BankAccount{BankName: "HDFC Bank", AccountNumber: "123456789012"}); !apperrors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Errorf("overdraw = %v, want ErrInsufficientFunds", err)
	}
	if !l.Balance().Equal(d("5000")) {
		t.Errorf("balance = %s, want 5000", l.Balance())
	}
}

func TestMarkToMarketThroughRouter(t *testing.T) {
	r, l := newTestRouter("100000", false)
	if _, _, err := r.PlaceEquityOrder(EquityOrder{
		Symbol: "TCS", Exchange: models.NSE, Name: "Tata Consultancy Services Ltd",
		Side: models.OrderSideBuy, Quantity: 2, LimitPrice: d("3500"),
	}); err != nil {
		t.Fatal(err)
	}

	r.MarkToMarket()

	pos, _ := l.Position("TCS", models.NSE)
	if !pos.LastPrice.Equal(d("3840")) {
		t.Errorf("marked price = %s, want 3840", pos.LastPrice)
	}
}
