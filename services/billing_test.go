package services

import (
	"testing"

	"salondesk-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []BillingLine
		discount Discount
		taxRate  float64
		want     Totals
	}{
		{
			name: "services and products with percentage discount and tax",
			lines: []BillingLine{
				{ItemType: models.ItemTypeService, UnitPrice: 1000, Quantity: 1},
				{ItemType: models.ItemTypeProduct, ProductType: models.ProductTypeRetail, UnitPrice: 200, Quantity: 1},
			},
			discount: Discount{Type: models.DiscountTypePercentage, Value: 10},
			taxRate:  15,
			want: Totals{
				ServicesSubtotal: 1000,
				ProductsSubtotal: 200,
				Subtotal:         1200,
				DiscountAmount:   120,
				TaxAmount:        162,
				Total:            1242,
			},
		},
		{
			name:     "empty lines make a valid zero draft",
			lines:    nil,
			discount: Discount{Type: models.DiscountTypeNone},
			taxRate:  15,
			want:     Totals{},
		},
		{
			name: "fixed discount",
			lines: []BillingLine{
				{ItemType: models.ItemTypeService, UnitPrice: 500, Quantity: 2},
			},
			discount: Discount{Type: models.DiscountTypeFixed, Value: 250},
			taxRate:  0,
			want: Totals{
				ServicesSubtotal: 1000,
				Subtotal:         1000,
				DiscountAmount:   250,
				Total:            750,
			},
		},
		{
			name: "loyalty points redeem at ten to one",
			lines: []BillingLine{
				{ItemType: models.ItemTypeService, UnitPrice: 300, Quantity: 1},
			},
			discount: Discount{Type: models.DiscountTypeLoyaltyPoints, Value: 500},
			taxRate:  0,
			want: Totals{
				ServicesSubtotal: 300,
				Subtotal:         300,
				DiscountAmount:   50,
				Total:            250,
			},
		},
		{
			name: "oversized fixed discount clamps to subtotal",
			lines: []BillingLine{
				{ItemType: models.ItemTypeProduct, ProductType: models.ProductTypeRetail, UnitPrice: 100, Quantity: 1},
			},
			discount: Discount{Type: models.DiscountTypeFixed, Value: 5000},
			taxRate:  15,
			want: Totals{
				ProductsSubtotal: 100,
				Subtotal:         100,
				DiscountAmount:   100,
				TaxAmount:        0,
				Total:            0,
			},
		},
		{
			name: "per-line discount applies before the subtotal",
			lines: []BillingLine{
				{ItemType: models.ItemTypeService, UnitPrice: 400, Quantity: 2, LineDiscount: 100},
			},
			discount: Discount{},
			taxRate:  10,
			want: Totals{
				ServicesSubtotal: 700,
				Subtotal:         700,
				TaxAmount:        70,
				Total:            770,
			},
		},
		{
			name: "quantity multiplies the unit price",
			lines: []BillingLine{
				{ItemType: models.ItemTypeService, UnitPrice: 49.99, Quantity: 3},
			},
			discount: Discount{},
			taxRate:  0,
			want: Totals{
				ServicesSubtotal: 149.97,
				Subtotal:         149.97,
				Total:            149.97,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTotals(tt.lines, tt.discount, tt.taxRate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, got.ServicesSubtotal+got.ProductsSubtotal, got.Subtotal, 0.001)
		})
	}
}

func TestComputeTotalsErrors(t *testing.T) {
	t.Run("zero quantity is rejected", func(t *testing.T) {
		_, err := ComputeTotals([]BillingLine{
			{ItemType: models.ItemTypeService, UnitPrice: 100, Quantity: 0},
		}, Discount{}, 0)
		assert.ErrorIs(t, err, ErrInvalidLine)
	})

	t.Run("negative unit price is rejected", func(t *testing.T) {
		_, err := ComputeTotals([]BillingLine{
			{ItemType: models.ItemTypeService, UnitPrice: -5, Quantity: 1},
		}, Discount{}, 0)
		assert.ErrorIs(t, err, ErrInvalidLine)
	})

	t.Run("unknown item type is rejected", func(t *testing.T) {
		_, err := ComputeTotals([]BillingLine{
			{ItemType: "membership", UnitPrice: 100, Quantity: 1},
		}, Discount{}, 0)
		assert.ErrorIs(t, err, ErrInvalidLine)
	})

	t.Run("percentage above 100 is rejected", func(t *testing.T) {
		_, err := ComputeTotals([]BillingLine{
			{ItemType: models.ItemTypeService, UnitPrice: 100, Quantity: 1},
		}, Discount{Type: models.DiscountTypePercentage, Value: 150}, 0)
		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})

	t.Run("unknown discount type is rejected", func(t *testing.T) {
		_, err := ComputeTotals([]BillingLine{
			{ItemType: models.ItemTypeService, UnitPrice: 100, Quantity: 1},
		}, Discount{Type: "coupon", Value: 5}, 0)
		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})
}

func TestLineTotalFloorsAtZero(t *testing.T) {
	got := LineTotal(BillingLine{UnitPrice: 50, Quantity: 1, LineDiscount: 80})
	assert.Equal(t, 0.0, got)
}

func TestResolveCommissionRate(t *testing.T) {
	defaults := CommissionDefaults{Service: 10, RetailProduct: 5, ServiceProduct: 2}

	tests := []struct {
		name string
		line BillingLine
		want float64
	}{
		{
			name: "line override wins over everything",
			line: BillingLine{ItemType: models.ItemTypeService, OverrideRate: ptr(25), CatalogRate: ptr(15), StylistRate: ptr(12)},
			want: 25,
		},
		{
			name: "catalog rate beats stylist default",
			line: BillingLine{ItemType: models.ItemTypeService, CatalogRate: ptr(15), StylistRate: ptr(12)},
			want: 15,
		},
		{
			name: "stylist default beats salon default",
			line: BillingLine{ItemType: models.ItemTypeService, StylistRate: ptr(12)},
			want: 12,
		},
		{
			name: "salon service default is the last resort",
			line: BillingLine{ItemType: models.ItemTypeService},
			want: 10,
		},
		{
			name: "retail product falls back to retail default",
			line: BillingLine{ItemType: models.ItemTypeProduct, ProductType: models.ProductTypeRetail},
			want: 5,
		},
		{
			name: "service-consumed product has its own default",
			line: BillingLine{ItemType: models.ItemTypeProduct, ProductType: models.ProductTypeServiceConsumed},
			want: 2,
		},
		{
			name: "explicit zero override disables commission",
			line: BillingLine{ItemType: models.ItemTypeService, OverrideRate: ptr(0), CatalogRate: ptr(15)},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCommissionRate(tt.line, defaults))
		})
	}
}

func TestCommissionAmount(t *testing.T) {
	defaults := CommissionDefaults{Service: 10, RetailProduct: 5, ServiceProduct: 2}

	// 10% of a 1000 service line
	got := CommissionAmount(BillingLine{ItemType: models.ItemTypeService, UnitPrice: 1000, Quantity: 1}, defaults)
	assert.Equal(t, 100.0, got)

	// commission is computed on the discounted line total
	got = CommissionAmount(BillingLine{ItemType: models.ItemTypeService, UnitPrice: 1000, Quantity: 1, LineDiscount: 200}, defaults)
	assert.Equal(t, 80.0, got)
}
