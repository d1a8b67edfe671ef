package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// For any amount, FormatINR should:
// 1. Start with ₹ (or -₹ for negative amounts)
// 2. Have exactly 2 decimal places
// 3. Group the integer part in the Indian numbering system
// 4. Preserve the numeric value when the grouping is stripped
func TestIndianCurrencyFormattingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	indianPattern := regexp.MustCompile(`^(\d{1,2},)*\d{1,3}$`)

	properties.Property("FormatINR produces valid Indian format", prop.ForAll(
		func(paise int64) bool {
			amount := decimal.New(paise, -2)
			formatted := FormatINR(amount)

			if amount.IsNegative() {
				if !strings.HasPrefix(formatted, "-₹") {
					t.Logf("Expected -₹ prefix for %s, got %s", amount, formatted)
					return false
				}
			} else if !strings.HasPrefix(formatted, "₹") {
				t.Logf("Expected ₹ prefix for %s, got %s", amount, formatted)
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %s, got %s", amount, formatted)
				return false
			}

			numPart := strings.TrimPrefix(parts[0], "-")
			numPart = strings.TrimPrefix(numPart, "₹")
			if !indianPattern.MatchString(numPart) {
				t.Logf("Invalid grouping for %s: %s", amount, formatted)
				return false
			}

			// Stripping commas and the currency sign recovers the value.
			raw := strings.ReplaceAll(numPart, ",", "") + "." + parts[1]
			parsed := decimal.RequireFromString(raw)
			if strings.HasPrefix(formatted, "-") {
				parsed = parsed.Neg()
			}
			if !parsed.Equal(amount) {
				t.Logf("Value not preserved: %s -> %s -> %s", amount, formatted, parsed)
				return false
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("FormatQuantity groups like FormatINR", prop.ForAll(
		func(qty int64) bool {
			formatted := strings.TrimPrefix(FormatQuantity(qty), "-")
			return indianPattern.MatchString(formatted)
		},
		gen.Int64Range(-1e15, 1e15),
	))

	properties.TestingRun(t)
}
