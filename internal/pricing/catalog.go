package pricing

import (
	"github.com/shopspring/decimal"

	"tokora/pkg/utils"
)

// Package is a purchasable token bundle. Base prices are in the reference
// currency (USD) and converted per billing country when quoted.
type Package struct {
	ID           string
	Name         string
	Tokens       int64
	BasePriceUSD decimal.Decimal
}

// Quote is the priced form of a package under a country's policy. FinalAmount
// is computed exactly once here; verification must never re-derive it.
type Quote struct {
	Package        Package
	BillingCountry string
	Currency       string
	BaseAmount     decimal.Decimal
	TaxAmount      decimal.Decimal
	FinalAmount    decimal.Decimal
	TaxRate        decimal.Decimal
	TaxName        string
}

// Catalog is an immutable package table injected at construction so tests can
// substitute fixtures.
type Catalog struct {
	packages     map[string]Package
	order        []string
	unitPriceUSD decimal.Decimal
}

func NewCatalog(packages []Package, unitPriceUSD decimal.Decimal) *Catalog {
	c := &Catalog{
		packages:     make(map[string]Package, len(packages)),
		unitPriceUSD: unitPriceUSD,
	}
	for _, p := range packages {
		c.packages[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

func DefaultCatalog() *Catalog {
	return NewCatalog([]Package{
		{ID: "starter", Name: "Starter", Tokens: 1000, BasePriceUSD: decimal.NewFromInt(5)},
		{ID: "plus", Name: "Plus", Tokens: 5000, BasePriceUSD: decimal.NewFromInt(20)},
		{ID: "pro", Name: "Pro", Tokens: 15000, BasePriceUSD: decimal.NewFromInt(50)},
	}, decimal.NewFromFloat(0.005))
}

func (c *Catalog) Lookup(id string) (Package, error) {
	pkg, ok := c.packages[id]
	if !ok {
		return Package{}, utils.ErrUnknownPackage
	}
	return pkg, nil
}

// Custom builds an ad-hoc package priced at quantity x unit price.
func (c *Catalog) Custom(tokens int64) (Package, error) {
	if tokens <= 0 {
		return Package{}, utils.ErrInvalidPackage
	}
	return Package{
		ID:           "custom",
		Name:         "Custom",
		Tokens:       tokens,
		BasePriceUSD: c.unitPriceUSD.Mul(decimal.NewFromInt(tokens)).Round(2),
	}, nil
}

func (c *Catalog) List() []Package {
	out := make([]Package, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.packages[id])
	}
	return out
}

func (c *Catalog) Quote(pkg Package, country string) Quote {
	policy := PolicyFor(country)
	base := pkg.BasePriceUSD.Mul(ConversionRate(policy.CurrencyCode)).Round(2)
	tax := base.Mul(policy.TaxRate).Round(2)
	return Quote{
		Package:        pkg,
		BillingCountry: country,
		Currency:       policy.CurrencyCode,
		BaseAmount:     base,
		TaxAmount:      tax,
		FinalAmount:    base.Add(tax),
		TaxRate:        policy.TaxRate,
		TaxName:        policy.TaxName,
	}
}
