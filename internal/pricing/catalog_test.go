package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tokora/pkg/utils"
)

func TestLookupUnknownPackage(t *testing.T) {
	_, err := DefaultCatalog().Lookup("platinum")
	if !errors.Is(err, utils.ErrUnknownPackage) {
		t.Fatalf("expected ErrUnknownPackage, got %v", err)
	}
}

func TestCustomQuantityPricing(t *testing.T) {
	c := DefaultCatalog()

	pkg, err := c.Custom(2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Tokens != 2000 {
		t.Fatalf("expected 2000 tokens, got %d", pkg.Tokens)
	}
	if !pkg.BasePriceUSD.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10 USD for 2000 tokens, got %s", pkg.BasePriceUSD)
	}

	for _, n := range []int64{0, -5} {
		if _, err := c.Custom(n); !errors.Is(err, utils.ErrInvalidPackage) {
			t.Fatalf("quantity %d: expected ErrInvalidPackage, got %v", n, err)
		}
	}
}

func TestQuoteFinalEqualsBasePlusTax(t *testing.T) {
	c := DefaultCatalog()
	for _, pkg := range c.List() {
		for _, country := range []string{"IN", "US", "FR", ""} {
			q := c.Quote(pkg, country)
			if !q.FinalAmount.Equal(q.BaseAmount.Add(q.TaxAmount)) {
				t.Fatalf("%s/%s: final %s != base %s + tax %s",
					pkg.ID, country, q.FinalAmount, q.BaseAmount, q.TaxAmount)
			}
			if !q.TaxAmount.Equal(q.BaseAmount.Mul(q.TaxRate).Round(2)) {
				t.Fatalf("%s/%s: tax %s != base x rate", pkg.ID, country, q.TaxAmount)
			}
		}
	}
}

func TestQuoteIndiaScenario(t *testing.T) {
	c := NewCatalog([]Package{
		{ID: "p", Name: "P", Tokens: 100, BasePriceUSD: decimal.NewFromInt(100)},
	}, decimal.NewFromFloat(0.005))

	pkg, err := c.Lookup("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := c.Quote(pkg, "IN")
	if q.Currency != "INR" {
		t.Fatalf("expected INR, got %s", q.Currency)
	}
	if got := q.BaseAmount.StringFixed(2); got != "8300.00" {
		t.Fatalf("expected base 8300.00, got %s", got)
	}
	if got := q.TaxAmount.StringFixed(2); got != "1494.00" {
		t.Fatalf("expected tax 1494.00, got %s", got)
	}
	if got := q.FinalAmount.StringFixed(2); got != "9794.00" {
		t.Fatalf("expected final 9794.00, got %s", got)
	}
}

func TestQuoteIsDeterministic(t *testing.T) {
	c := DefaultCatalog()
	pkg, _ := c.Lookup("plus")

	first := c.Quote(pkg, "IN")
	for i := 0; i < 5; i++ {
		again := c.Quote(pkg, "IN")
		if !again.FinalAmount.Equal(first.FinalAmount) {
			t.Fatalf("quote not deterministic: %s vs %s", again.FinalAmount, first.FinalAmount)
		}
	}
}

func TestDefaultCountryHasNoTax(t *testing.T) {
	c := DefaultCatalog()
	pkg, _ := c.Lookup("starter")

	q := c.Quote(pkg, "US")
	if q.Currency != "USD" {
		t.Fatalf("expected USD, got %s", q.Currency)
	}
	if !q.TaxAmount.IsZero() {
		t.Fatalf("expected zero tax, got %s", q.TaxAmount)
	}
	if !q.FinalAmount.Equal(q.BaseAmount) {
		t.Fatalf("expected final == base, got %s vs %s", q.FinalAmount, q.BaseAmount)
	}
}
