package categorise

import "github.com/shopspring/decimal"

func amountOrBlank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
