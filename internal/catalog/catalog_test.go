package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
)

func TestLookup(t *testing.T) {
	equity, ok := Lookup("RELIANCE", models.NSE)
	if !ok {
		t.Fatal("RELIANCE not found on NSE")
	}
	if equity.Name == "" || equity.BasePrice.IsZero() {
		t.Errorf("incomplete entry: %+v", equity)
	}

	if _, ok := Lookup("reliance", models.NSE); !ok {
		t.Error("lookup is not case-insensitive")
	}
	if _, ok := Lookup("NOSUCH", models.NSE); ok {
		t.Error("unknown symbol found")
	}
}

func TestLookupFund(t *testing.T) {
	fund, ok := LookupFund("SBI-BLUECHIP")
	if !ok {
		t.Fatal("SBI-BLUECHIP not found")
	}
	if !fund.BaseNAV.Equal(decimal.RequireFromString("75.5")) {
		t.Errorf("NAV = %s, want 75.50", fund.BaseNAV)
	}
	if _, ok := LookupFund("NOSUCH-FUND"); ok {
		t.Error("unknown fund found")
	}
}

func TestSearch(t *testing.T) {
	// Symbol match.
	results := Search("TCS")
	if len(results) == 0 {
		t.Fatal("no results for TCS")
	}
	// Name match, case-insensitive.
	results = Search("reliance")
	found := false
	for _, equity := range results {
		if equity.Symbol == "RELIANCE" {
			found = true
		}
	}
	if !found {
		t.Error("name search missed RELIANCE")
	}

	if got := Search("zzzz"); len(got) != 0 {
		t.Errorf("unexpected results: %v", got)
	}
	if got := Search(""); len(got) > MaxSearchResults {
		t.Errorf("results = %d, exceeds cap %d", len(got), MaxSearchResults)
	}
}

func TestBasePrices(t *testing.T) {
	prices := BasePrices()
	for _, equity := range Equities() {
		if _, ok := prices[equity.Symbol]; !ok {
			t.Errorf("no base price for %s", equity.Symbol)
		}
	}
}

func TestBaseNAVs(t *testing.T) {
	navs := BaseNAVs()
	if len(navs) != len(Funds()) {
		t.Errorf("navs = %d, funds = %d", len(navs), len(Funds()))
	}
}

func TestDefaultWatchlist(t *testing.T) {
	watchlist := DefaultWatchlist()
	if len(watchlist) == 0 {
		t.Fatal("empty default watchlist")
	}
	prices := BasePrices()
	for _, symbol := range watchlist {
		if _, ok := prices[symbol]; !ok {
			t.Errorf("watchlist symbol %s has no base price", symbol)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	first := Equities()
	first[0].Symbol = strings.ToLower(first[0].Symbol)
	second := Equities()
	if second[0].Symbol == first[0].Symbol {
		t.Error("Equities exposes internal slice")
	}
}
