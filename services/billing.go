// services/billing.go
package services

import (
	"errors"
	"fmt"

	"salondesk-backend/models"

	"github.com/shopspring/decimal"
)

// LoyaltyPointsPerUnit is the conversion ratio for loyalty-point
// discounts: 10 points redeem for 1 currency unit.
const LoyaltyPointsPerUnit = 10

var (
	ErrInvalidDiscount = errors.New("invalid discount")
	ErrInvalidLine     = errors.New("invalid line")
)

// BillingLine is one priced line presented to the engine, with the
// commission-rate candidates already looked up from the catalog and
// stylist. Rates are percentages.
type BillingLine struct {
	ItemType     string // models.ItemTypeService | models.ItemTypeProduct
	ProductType  string // retail | service_consumed, products only
	UnitPrice    float64
	Quantity     int
	LineDiscount float64

	OverrideRate *float64 // explicit per-line override
	CatalogRate  *float64 // rate configured on the catalog item
	StylistRate  *float64 // stylist default
}

// Discount is the invoice-level discount descriptor.
type Discount struct {
	Type  string // none | percentage | fixed | loyalty_points
	Value float64
}

// CommissionDefaults carries the salon's fallback rates per item class.
type CommissionDefaults struct {
	Service        float64
	RetailProduct  float64
	ServiceProduct float64
}

// Totals is the computed money breakdown for an invoice or quote.
type Totals struct {
	ServicesSubtotal float64
	ProductsSubtotal float64
	Subtotal         float64
	DiscountAmount   float64
	TaxAmount        float64
	Total            float64
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// LineTotal is unit_price x quantity minus the per-line discount,
// floored at zero.
func LineTotal(l BillingLine) float64 {
	gross := decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
	net := gross.Sub(decimal.NewFromFloat(l.LineDiscount))
	if net.IsNegative() {
		net = decimal.Zero
	}
	return round2(net)
}

// DiscountAmount resolves the invoice-level discount against the
// subtotal. The result is clamped so the taxable amount never goes
// negative.
func DiscountAmount(subtotal float64, d Discount) (float64, error) {
	sub := decimal.NewFromFloat(subtotal)
	var amount decimal.Decimal

	switch d.Type {
	case "", models.DiscountTypeNone:
		amount = decimal.Zero
	case models.DiscountTypePercentage:
		if d.Value < 0 || d.Value > 100 {
			return 0, fmt.Errorf("%w: percentage must be between 0 and 100", ErrInvalidDiscount)
		}
		amount = sub.Mul(decimal.NewFromFloat(d.Value)).Div(decimal.NewFromInt(100))
	case models.DiscountTypeFixed:
		if d.Value < 0 {
			return 0, fmt.Errorf("%w: fixed discount cannot be negative", ErrInvalidDiscount)
		}
		amount = decimal.NewFromFloat(d.Value)
	case models.DiscountTypeLoyaltyPoints:
		if d.Value < 0 {
			return 0, fmt.Errorf("%w: points cannot be negative", ErrInvalidDiscount)
		}
		amount = decimal.NewFromFloat(d.Value).Div(decimal.NewFromInt(LoyaltyPointsPerUnit))
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidDiscount, d.Type)
	}

	// Clamp: a discount larger than the subtotal zeroes it out instead
	// of driving the total negative.
	if amount.GreaterThan(sub) {
		amount = sub
	}
	return round2(amount), nil
}

// ComputeTotals runs the full money pipeline: line totals summed per
// item class, invoice-level discount, then tax on the discounted
// amount. taxRate is a percentage and should be zero for businesses
// that are not tax-registered. An empty line set is a valid zero-value
// draft.
func ComputeTotals(lines []BillingLine, d Discount, taxRate float64) (Totals, error) {
	services := decimal.Zero
	products := decimal.Zero

	for _, l := range lines {
		if l.Quantity <= 0 || l.UnitPrice < 0 || l.LineDiscount < 0 {
			return Totals{}, ErrInvalidLine
		}
		lt := decimal.NewFromFloat(LineTotal(l))
		switch l.ItemType {
		case models.ItemTypeService:
			services = services.Add(lt)
		case models.ItemTypeProduct:
			products = products.Add(lt)
		default:
			return Totals{}, fmt.Errorf("%w: unknown item type %q", ErrInvalidLine, l.ItemType)
		}
	}

	subtotal := services.Add(products)

	discountAmount, err := DiscountAmount(round2(subtotal), d)
	if err != nil {
		return Totals{}, err
	}

	taxable := subtotal.Sub(decimal.NewFromFloat(discountAmount))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	tax := taxable.Mul(decimal.NewFromFloat(taxRate)).Div(decimal.NewFromInt(100))
	total := taxable.Add(tax)

	return Totals{
		ServicesSubtotal: round2(services),
		ProductsSubtotal: round2(products),
		Subtotal:         round2(subtotal),
		DiscountAmount:   discountAmount,
		TaxAmount:        round2(tax),
		Total:            round2(total),
	}, nil
}

// ResolveCommissionRate applies the 4-level precedence: explicit line
// override, catalog item rate, stylist default, then the salon default
// for the item class.
func ResolveCommissionRate(l BillingLine, defaults CommissionDefaults) float64 {
	if l.OverrideRate != nil {
		return *l.OverrideRate
	}
	if l.CatalogRate != nil {
		return *l.CatalogRate
	}
	if l.StylistRate != nil {
		return *l.StylistRate
	}
	if l.ItemType == models.ItemTypeService {
		return defaults.Service
	}
	if l.ProductType == models.ProductTypeServiceConsumed {
		return defaults.ServiceProduct
	}
	return defaults.RetailProduct
}

// CommissionAmount is the line's commission at its resolved rate,
// computed on the line total (after the per-line discount).
func CommissionAmount(l BillingLine, defaults CommissionDefaults) float64 {
	rate := ResolveCommissionRate(l, defaults)
	amount := decimal.NewFromFloat(LineTotal(l)).
		Mul(decimal.NewFromFloat(rate)).
		Div(decimal.NewFromInt(100))
	return round2(amount)
}
