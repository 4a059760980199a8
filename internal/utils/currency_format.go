package utils

import (
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of minor-unit digits used for club amounts.
const MoneyPrecision = 2

// FormatMoney renders an amount with a fixed two-decimal precision, e.g. 12.3456 -> "12.35".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPrecision)
}
