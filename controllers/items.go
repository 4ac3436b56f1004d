// controllers/items.go
package controllers

import (
	"errors"
	"fmt"

	"salondesk-backend/models"
	"salondesk-backend/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItemInput is one catalog line on an invoice or quote request.
// Prices always come from the catalog snapshot, never from the client.
type LineItemInput struct {
	ItemType       string     `json:"itemType" binding:"required,oneof=service product"`
	CatalogID      uuid.UUID  `json:"catalogId" binding:"required"`
	Quantity       int        `json:"quantity" binding:"min=1"`
	LineDiscount   float64    `json:"lineDiscount" binding:"min=0"`
	CommissionRate *float64   `json:"commissionRate" binding:"omitempty,min=0,max=100"`
	StylistID      *uuid.UUID `json:"stylistId"`
}

var errLineNotFound = errors.New("catalog item not found")

// resolvedLine couples the persisted snapshot with the billing-engine
// view of the same line.
type resolvedLine struct {
	Item models.InvoiceItem
	Line services.BillingLine
}

// resolveLineItems validates each input line against the salon's
// catalog and stylists and produces item snapshots with their resolved
// commission rates. headerStylistID is the fallback for lines without
// their own stylist.
func resolveLineItems(tx *gorm.DB, salonID, headerStylistID uuid.UUID, inputs []LineItemInput, defaults services.CommissionDefaults) ([]resolvedLine, error) {
	stylistRates := map[uuid.UUID]*float64{}

	stylistRate := func(id uuid.UUID) (*float64, error) {
		if rate, ok := stylistRates[id]; ok {
			return rate, nil
		}
		var stylist models.Stylist
		if err := tx.Where("salon_id = ? AND id = ?", salonID, id).First(&stylist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("stylist not found: %s", id)
			}
			return nil, err
		}
		stylistRates[id] = stylist.CommissionRate
		return stylist.CommissionRate, nil
	}

	var resolved []resolvedLine
	for _, in := range inputs {
		stylistID := headerStylistID
		if in.StylistID != nil {
			stylistID = *in.StylistID
		}
		sRate, err := stylistRate(stylistID)
		if err != nil {
			return nil, err
		}

		item := models.InvoiceItem{
			ItemType:       in.ItemType,
			CatalogID:      in.CatalogID,
			StylistID:      stylistID,
			Quantity:       in.Quantity,
			LineDiscount:   in.LineDiscount,
			CommissionRate: in.CommissionRate,
		}
		line := services.BillingLine{
			ItemType:     in.ItemType,
			Quantity:     in.Quantity,
			LineDiscount: in.LineDiscount,
			OverrideRate: in.CommissionRate,
			StylistRate:  sRate,
		}

		switch in.ItemType {
		case models.ItemTypeService:
			var svc models.Service
			if err := tx.Where("salon_id = ? AND id = ?", salonID, in.CatalogID).First(&svc).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: service %s", errLineNotFound, in.CatalogID)
				}
				return nil, err
			}
			item.Name = svc.Name
			item.Category = svc.Category
			item.UnitPrice = svc.Price
			line.UnitPrice = svc.Price
			line.CatalogRate = svc.CommissionRate
		case models.ItemTypeProduct:
			var product models.Product
			if err := tx.Where("salon_id = ? AND id = ?", salonID, in.CatalogID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: product %s", errLineNotFound, in.CatalogID)
				}
				return nil, err
			}
			item.Name = product.Name
			item.Category = product.Category
			item.ProductType = product.Type
			item.UnitPrice = product.Price
			line.UnitPrice = product.Price
			line.ProductType = product.Type
			line.CatalogRate = product.CommissionRate
		}

		item.LineTotal = services.LineTotal(line)
		item.ResolvedCommissionRate = services.ResolveCommissionRate(line, defaults)
		item.CommissionAmount = services.CommissionAmount(line, defaults)

		resolved = append(resolved, resolvedLine{Item: item, Line: line})
	}

	return resolved, nil
}

func commissionDefaults(salon models.Salon) services.CommissionDefaults {
	return services.CommissionDefaults{
		Service:        salon.ServiceCommissionRate,
		RetailProduct:  salon.ProductCommissionRate,
		ServiceProduct: salon.ServiceProductCommissionRate,
	}
}

func salonTaxRate(salon models.Salon) float64 {
	if !salon.TaxRegistered {
		return 0
	}
	return salon.TaxRate
}
