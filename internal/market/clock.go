// Package market classifies wall-clock time into trading sessions for the
// Indian equity market.
package market

import (
	"time"

	"tradedesk/internal/models"
)

// IST is the timezone for Indian markets.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Session describes the market state at a given instant.
type Session struct {
	Status   models.MarketStatus
	Reason   string
	NextOpen time.Time
}

// Session boundaries in minutes since midnight IST.
const (
	preOpenStart  = 9 * 60        // 09:00
	marketOpen    = 9*60 + 15     // 09:15
	marketClose   = 15*60 + 30    // 15:30
	postCloseDone = 16 * 60       // 16:00
)

// Classify maps an instant to a market session. It is a pure function:
// every instant maps to exactly one session and there are no error cases.
func Classify(now time.Time) Session {
	local := now.In(IST)

	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return Session{
			Status:   models.MarketClosed,
			Reason:   "Weekend - Market Closed",
			NextOpen: NextOpen(now),
		}
	}

	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < preOpenStart:
		return Session{
			Status:   models.MarketClosed,
			Reason:   "Pre-Market opens at 09:00 AM",
			NextOpen: NextOpen(now),
		}
	case minutes < marketOpen:
		return Session{
			Status:   models.MarketPreMarket,
			Reason:   "Pre-Market Session",
			NextOpen: NextOpen(now),
		}
	case minutes < marketClose:
		return Session{
			Status:   models.MarketOpen,
			Reason:   "Market is Live",
			NextOpen: NextOpen(now),
		}
	case minutes < postCloseDone:
		return Session{
			Status:   models.MarketPostMarket,
			Reason:   "Post-Market Session",
			NextOpen: NextOpen(now),
		}
	default:
		return Session{
			Status:   models.MarketClosed,
			Reason:   "Market Closed",
			NextOpen: NextOpen(now),
		}
	}
}

// IsOpen reports whether the market is open for trading at the given instant.
func IsOpen(now time.Time) bool {
	return Classify(now).Status == models.MarketOpen
}

// NextOpen returns the next market opening time (09:15 IST) at or after now,
// skipping weekends.
func NextOpen(now time.Time) time.Time {
	local := now.In(IST)

	next := time.Date(local.Year(), local.Month(), local.Day(), 9, 15, 0, 0, IST)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Now classifies the current wall-clock time.
func Now() Session {
	return Classify(time.Now())
}
