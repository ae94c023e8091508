package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TokenPrecision is the number of decimals of the reward token.
const TokenPrecision = 4

// FormatQuantity renders an amount as a ledger asset string, e.g. "1.0000 VTP".
func FormatQuantity(amount decimal.Decimal, symbol string) string {
	return amount.StringFixed(TokenPrecision) + " " + strings.ToUpper(strings.TrimSpace(symbol))
}

// FormatPrice keeps consistent decimal formatting for prices shown to people.
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
