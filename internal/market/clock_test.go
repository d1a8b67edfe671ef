package market

import (
	"testing"
	"time"

	"tradedesk/internal/models"
)

// ist builds an IST timestamp for a given date and time of day.
func ist(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, IST)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want models.MarketStatus
	}{
		{"saturday morning", ist(2024, time.June, 8, 10, 0), models.MarketClosed},
		{"saturday midnight", ist(2024, time.June, 8, 0, 0), models.MarketClosed},
		{"sunday afternoon", ist(2024, time.June, 9, 14, 0), models.MarketClosed},
		{"monday before pre-open", ist(2024, time.June, 10, 8, 59), models.MarketClosed},
		{"monday pre-open start", ist(2024, time.June, 10, 9, 0), models.MarketPreMarket},
		{"monday pre-open end", ist(2024, time.June, 10, 9, 14), models.MarketPreMarket},
		{"monday open boundary", ist(2024, time.June, 10, 9, 15), models.MarketOpen},
		{"monday mid-session", ist(2024, time.June, 10, 9, 20), models.MarketOpen},
		{"monday last open minute", ist(2024, time.June, 10, 15, 29), models.MarketOpen},
		{"monday post-market start", ist(2024, time.June, 10, 15, 30), models.MarketPostMarket},
		{"monday post-market", ist(2024, time.June, 10, 15, 45), models.MarketPostMarket},
		{"monday after post-market", ist(2024, time.June, 10, 16, 0), models.MarketClosed},
		{"friday evening", ist(2024, time.June, 14, 20, 0), models.MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.now)
			if got.Status != tt.want {
				t.Errorf("Classify(%v).Status = %v, want %v", tt.now, got.Status, tt.want)
			}
			if got.Reason == "" {
				t.Errorf("Classify(%v) returned empty reason", tt.now)
			}
			if got.NextOpen.IsZero() {
				t.Errorf("Classify(%v) returned zero NextOpen", tt.now)
			}
		})
	}
}

func TestClassifyNonISTInput(t *testing.T) {
	// 03:50 UTC on a Monday is 09:20 IST.
	now := time.Date(2024, time.June, 10, 3, 50, 0, 0, time.UTC)
	if got := Classify(now).Status; got != models.MarketOpen {
		t.Errorf("Classify(UTC input) = %v, want %v", got, models.MarketOpen)
	}
}

func TestNextOpen(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"monday early morning opens same day", ist(2024, time.June, 10, 7, 0), ist(2024, time.June, 10, 9, 15)},
		{"monday during session opens tuesday", ist(2024, time.June, 10, 10, 0), ist(2024, time.June, 11, 9, 15)},
		{"friday evening opens monday", ist(2024, time.June, 14, 18, 0), ist(2024, time.June, 17, 9, 15)},
		{"saturday opens monday", ist(2024, time.June, 8, 11, 0), ist(2024, time.June, 10, 9, 15)},
		{"exactly at open rolls to next day", ist(2024, time.June, 10, 9, 15), ist(2024, time.June, 11, 9, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOpen(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextOpen(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
