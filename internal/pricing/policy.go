package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Policy is the tax/currency treatment for a billing country. Resolution is
// pure and total: unrecognized countries fall back to the international
// default (USD, no tax).
type Policy struct {
	CurrencyCode string
	TaxRate      decimal.Decimal
	TaxName      string
	Applicable   bool
}

func PolicyFor(country string) Policy {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "IN":
		return Policy{
			CurrencyCode: "INR",
			TaxRate:      decimal.NewFromFloat(0.18),
			TaxName:      "GST",
			Applicable:   true,
		}
	default:
		return Policy{
			CurrencyCode: "USD",
			TaxRate:      decimal.Zero,
			Applicable:   false,
		}
	}
}

// Fixed conversion rates from the reference currency (USD). These are an
// approximation, not live FX rates.
var conversionRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"INR": decimal.NewFromInt(83),
}

func ConversionRate(currency string) decimal.Decimal {
	if rate, ok := conversionRates[strings.ToUpper(currency)]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}
