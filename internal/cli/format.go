package cli

import (
	"github.com/shopspring/decimal"

	apperrors "tradedesk/internal/errors"
	"tradedesk/pkg/utils"
)

func formatINR(amount decimal.Decimal) string {
	return utils.FormatINR(amount)
}

func formatPercent(value decimal.Decimal) string {
	return utils.FormatPercent(value)
}

func formatPnL(pnl decimal.Decimal) string {
	return utils.FormatPnL(pnl)
}

func formatQuantity(qty int64) string {
	return utils.FormatQuantity(qty)
}

func formatUnits(units decimal.Decimal) string {
	return utils.FormatUnits(units)
}

func errNoSession() error {
	return apperrors.ErrNoOTPSession
}
