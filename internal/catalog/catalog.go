// Package catalog holds the static instrument universe: NSE/BSE equity
// symbols with company names and reference prices, and the mutual-fund
// table with base NAVs.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
)

// Equity describes a listed stock.
type Equity struct {
	Symbol   string
	Name     string
	Exchange models.Exchange
	// BasePrice seeds the simulated price source.
	BasePrice decimal.Decimal
}

// Fund describes a mutual fund.
type Fund struct {
	ID        string
	Name      string
	BaseNAV   decimal.Decimal
	Returns1Y decimal.Decimal
	Category  string
}

func eq(symbol, name string, exchange models.Exchange, price float64) Equity {
	return Equity{
		Symbol:    symbol,
		Name:      name,
		Exchange:  exchange,
		BasePrice: decimal.NewFromFloat(price),
	}
}

var equities = []Equity{
	eq("RELIANCE", "Reliance Industries Ltd", models.NSE, 2950.00),
	eq("TCS", "Tata Consultancy Services Ltd", models.NSE, 3840.00),
	eq("HDFCBANK", "HDFC Bank Ltd", models.NSE, 1625.00),
	eq("INFY", "Infosys Ltd", models.NSE, 1510.00),
	eq("ICICIBANK", "ICICI Bank Ltd", models.NSE, 1125.00),
	eq("SBIN", "State Bank of India", models.NSE, 835.00),
	eq("BHARTIARTL", "Bharti Airtel Ltd", models.NSE, 1410.00),
	eq("ITC", "ITC Ltd", models.NSE, 428.00),
	eq("LT", "Larsen & Toubro Ltd", models.NSE, 3590.00),
	eq("WIPRO", "Wipro Ltd", models.NSE, 495.00),
	eq("RELIANCE", "Reliance Industries Ltd", models.BSE, 2949.50),
	eq("TCS", "Tata Consultancy Services Ltd", models.BSE, 3839.00),
	eq("HDFCBANK", "HDFC Bank Ltd", models.BSE, 1624.50),
	eq("INFY", "Infosys Ltd", models.BSE, 1509.50),
	eq("SBIN", "State Bank of India", models.BSE, 834.70),
}

func fund(id, name string, nav, returns1y float64, category string) Fund {
	return Fund{
		ID:        id,
		Name:      name,
		BaseNAV:   decimal.NewFromFloat(nav),
		Returns1Y: decimal.NewFromFloat(returns1y),
		Category:  category,
	}
}

var funds = []Fund{
	fund("SBI-BLUECHIP", "SBI Bluechip Fund", 75.50, 18.5, "Large Cap"),
	fund("HDFC-MIDCAP", "HDFC Mid-Cap Fund", 125.30, 22.3, "Mid Cap"),
	fund("ICICI-BALANCED", "ICICI Balanced Fund", 52.80, 15.7, "Hybrid"),
	fund("AXIS-ELSS", "Axis ELSS Fund", 68.90, 16.2, "ELSS"),
}

// MaxSearchResults caps the result set returned by Search.
const MaxSearchResults = 20

// Lookup returns the equity listed under (symbol, exchange).
func Lookup(symbol string, exchange models.Exchange) (Equity, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, e := range equities {
		if e.Symbol == symbol && e.Exchange == exchange {
			return e, true
		}
	}
	return Equity{}, false
}

// LookupFund returns the fund with the given ID.
func LookupFund(fundID string) (Fund, bool) {
	fundID = strings.ToUpper(strings.TrimSpace(fundID))
	for _, f := range funds {
		if f.ID == fundID {
			return f, true
		}
	}
	return Fund{}, false
}

// Search matches query against symbols and company names on both
// exchanges, returning at most MaxSearchResults entries.
func Search(query string) []Equity {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []Equity
	for _, e := range equities {
		if strings.Contains(e.Symbol, query) || strings.Contains(strings.ToUpper(e.Name), query) {
			results = append(results, e)
			if len(results) == MaxSearchResults {
				break
			}
		}
	}
	return results
}

// Equities returns the full equity universe.
func Equities() []Equity {
	out := make([]Equity, len(equities))
	copy(out, equities)
	return out
}

// Funds returns the mutual-fund table sorted by ID.
func Funds() []Fund {
	out := make([]Fund, len(funds))
	copy(out, funds)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BasePrices returns the reference price table keyed by symbol, for
// seeding a simulated price source. NSE listings win over BSE where a
// symbol trades on both.
func BasePrices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range equities {
		if _, ok := out[e.Symbol]; ok && e.Exchange != models.NSE {
			continue
		}
		out[e.Symbol] = e.BasePrice
	}
	return out
}

// BaseNAVs returns the reference NAV table keyed by fund ID.
func BaseNAVs() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(funds))
	for _, f := range funds {
		out[f.ID] = f.BaseNAV
	}
	return out
}

// DefaultWatchlist is the watchlist seeded into new accounts.
func DefaultWatchlist() []string {
	return []string{"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK"}
}
