// controllers/quote.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/services"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateQuoteInput struct {
	CustomerID    uuid.UUID       `json:"customerId" binding:"required"`
	StylistID     uuid.UUID       `json:"stylistId" binding:"required"`
	ValidUntil    *time.Time      `json:"validUntil"`
	Items         []LineItemInput `json:"items"`
	DiscountType  string          `json:"discountType" binding:"omitempty,oneof=none percentage fixed loyalty_points"`
	DiscountValue float64         `json:"discountValue" binding:"min=0"`
	Notes         string          `json:"notes"`
}

type UpdateQuoteInput struct {
	CustomerID    *uuid.UUID       `json:"customerId"`
	StylistID     *uuid.UUID       `json:"stylistId"`
	ValidUntil    *time.Time       `json:"validUntil"`
	Items         *[]LineItemInput `json:"items"`
	DiscountType  *string          `json:"discountType" binding:"omitempty,oneof=none percentage fixed loyalty_points"`
	DiscountValue *float64         `json:"discountValue" binding:"omitempty,min=0"`
	Notes         *string          `json:"notes"`
}

func quoteItemFromInvoiceItem(item models.InvoiceItem) models.QuoteItem {
	return models.QuoteItem{
		ID:             uuid.New(),
		ItemType:       item.ItemType,
		CatalogID:      item.CatalogID,
		Name:           item.Name,
		Category:       item.Category,
		ProductType:    item.ProductType,
		StylistID:      item.StylistID,
		UnitPrice:      item.UnitPrice,
		Quantity:       item.Quantity,
		LineDiscount:   item.LineDiscount,
		LineTotal:      item.LineTotal,
		CommissionRate: item.CommissionRate,
	}
}

func applyQuoteTotals(quote *models.Quote, resolved []resolvedLine, salon models.Salon) error {
	lines := make([]services.BillingLine, 0, len(resolved))
	for _, r := range resolved {
		lines = append(lines, r.Line)
	}

	totals, err := services.ComputeTotals(lines,
		services.Discount{Type: quote.DiscountType, Value: quote.DiscountValue},
		salonTaxRate(salon))
	if err != nil {
		return err
	}

	quote.ServicesSubtotal = totals.ServicesSubtotal
	quote.ProductsSubtotal = totals.ProductsSubtotal
	quote.Subtotal = totals.Subtotal
	quote.DiscountAmount = totals.DiscountAmount
	quote.TaxRate = salonTaxRate(salon)
	quote.TaxAmount = totals.TaxAmount
	quote.Total = totals.Total
	return nil
}

// presentQuote derives expiry lazily: the stored row is untouched, but
// the caller sees expired once valid_until has passed.
func presentQuote(quote models.Quote) models.Quote {
	quote.Status = quote.EffectiveStatus(time.Now())
	return quote
}

// CreateQuote creates a new draft quote for the salon
func CreateQuote(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	userUUID, ok := userFromContext(c)
	if !ok {
		return
	}

	var input CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	salon, err := loadSalon(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load salon settings")
		return
	}

	var customer models.Customer
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var stylist models.Stylist
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, input.StylistID).
		First(&stylist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Stylist not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	discountType := input.DiscountType
	if discountType == "" {
		discountType = models.DiscountTypeNone
	}

	quote := models.Quote{
		ID:              uuid.New(),
		SalonID:         salonUUID,
		CreatedByUserID: userUUID,
		CustomerID:      input.CustomerID,
		StylistID:       input.StylistID,
		ValidUntil:      input.ValidUntil,
		DiscountType:    discountType,
		DiscountValue:   input.DiscountValue,
		Status:          models.QuoteStatusDraft,
		Notes:           input.Notes,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	resolved, err := resolveLineItems(tx, salonUUID, input.StylistID, input.Items, commissionDefaults(salon))
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := applyQuoteTotals(&quote, resolved, salon); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	for _, r := range resolved {
		quote.Items = append(quote.Items, quoteItemFromInvoiceItem(r.Item))
	}

	if err := tx.Create(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create quote")
		return
	}

	tx.Commit()

	utils.RespondWithData(c, http.StatusCreated, quote)
}

// GetQuotes retrieves quotes for the salon. Expiry is derived per row
// at read time.
func GetQuotes(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Items").Where("salon_id = ?", salonUUID)
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var quotes []models.Quote
	if err := query.Order("created_at DESC").Find(&quotes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotes")
		return
	}

	presented := make([]models.Quote, 0, len(quotes))
	for _, quote := range quotes {
		presented = append(presented, presentQuote(quote))
	}

	// The status filter applies to the derived status, so an expired
	// quote shows up under expired even though the row still says sent.
	if status := c.Query("status"); status != "" {
		filtered := presented[:0]
		for _, quote := range presented {
			if string(quote.Status) == status {
				filtered = append(filtered, quote)
			}
		}
		presented = filtered
	}

	utils.RespondWithData(c, http.StatusOK, presented)
}

// GetQuote retrieves a specific quote by ID
func GetQuote(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	quoteUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var quote models.Quote
	if err := config.DB.Preload("Items").
		Where("salon_id = ? AND id = ?", salonUUID, quoteUUID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, presentQuote(quote))
}

// UpdateQuote updates a draft quote
func UpdateQuote(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	quoteUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	salon, err := loadSalon(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load salon settings")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var quote models.Quote
	if err := tx.Preload("Items").
		Where("salon_id = ? AND id = ?", salonUUID, quoteUUID).
		First(&quote).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !quote.IsEditable() {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only draft quotes can be edited")
		return
	}

	if input.CustomerID != nil {
		var customer models.Customer
		if err := tx.Where("salon_id = ? AND id = ?", salonUUID, *input.CustomerID).
			First(&customer).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		quote.CustomerID = *input.CustomerID
	}

	if input.StylistID != nil {
		var stylist models.Stylist
		if err := tx.Where("salon_id = ? AND id = ?", salonUUID, *input.StylistID).
			First(&stylist).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Stylist not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		quote.StylistID = *input.StylistID
	}

	if input.ValidUntil != nil {
		quote.ValidUntil = input.ValidUntil
	}
	if input.DiscountType != nil {
		quote.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		quote.DiscountValue = *input.DiscountValue
	}
	if input.Notes != nil {
		quote.Notes = *input.Notes
	}

	if input.Items != nil {
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear existing items")
			return
		}

		resolved, err := resolveLineItems(tx, salonUUID, quote.StylistID, *input.Items, commissionDefaults(salon))
		if err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		if err := applyQuoteTotals(&quote, resolved, salon); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		quote.Items = nil
		for _, r := range resolved {
			item := quoteItemFromInvoiceItem(r.Item)
			item.QuoteID = quote.ID
			quote.Items = append(quote.Items, item)
		}
	} else if input.DiscountType != nil || input.DiscountValue != nil {
		resolved := make([]resolvedLine, 0, len(quote.Items))
		for _, item := range quote.Items {
			resolved = append(resolved, resolvedLine{
				Line: services.BillingLine{
					ItemType:     item.ItemType,
					ProductType:  item.ProductType,
					UnitPrice:    item.UnitPrice,
					Quantity:     item.Quantity,
					LineDiscount: item.LineDiscount,
				},
			})
		}
		if err := applyQuoteTotals(&quote, resolved, salon); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := tx.Save(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote")
		return
	}

	tx.Commit()

	utils.RespondWithData(c, http.StatusOK, quote)
}

// DeleteQuote deletes a draft quote
func DeleteQuote(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	quoteUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var quote models.Quote
	if err := tx.Where("salon_id = ? AND id = ?", salonUUID, quoteUUID).
		First(&quote).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !quote.IsEditable() {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only draft quotes can be deleted")
		return
	}

	if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote items")
		return
	}
	if err := tx.Delete(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Quote deleted successfully"})
}

// SendQuote assigns the quote number and marks the quote sent
func SendQuote(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	quoteUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	salon, err := loadSalon(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load salon settings")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var quote models.Quote
	if err := tx.Where("salon_id = ? AND id = ?", salonUUID, quoteUUID).
		First(&quote).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !quote.Status.CanTransitionTo(models.QuoteStatusSent) {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only draft quotes can be sent")
		return
	}

	number, err := services.NextQuoteNumber(tx, salonUUID, salon.QuotePrefix, time.Now().Year())
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate quote number")
		return
	}

	now := time.Now()
	quote.QuoteNumber = &number
	quote.Status = models.QuoteStatusSent
	quote.SentAt = &now

	if err := tx.Save(&quote).Error; err != nil {
		tx.Rollback()
		if services.IsUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "Quote number conflict")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send quote")
		}
		return
	}

	tx.Commit()

	utils.RespondWithData(c, http.StatusOK, quote)
}

// AcceptQuote marks a sent, unexpired quote as accepted
func AcceptQuote(c *gin.Context) {
	transitionQuote(c, models.QuoteStatusAccepted, "Only sent quotes can be accepted")
}

// DeclineQuote marks a sent, unexpired quote as declined
func DeclineQuote(c *gin.Context) {
	transitionQuote(c, models.QuoteStatusDeclined, "Only sent quotes can be declined")
}

func transitionQuote(c *gin.Context, next models.QuoteStatus, conflictMessage string) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	quoteUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var quote models.Quote
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, quoteUUID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// The derived status gates the transition, so an expired quote can
	// no longer be accepted even though the row still says sent.
	effective := quote.EffectiveStatus(time.Now())
	if effective == models.QuoteStatusExpired {
		utils.RespondWithError(c, http.StatusConflict, "Quote has expired")
		return
	}
	if !effective.CanTransitionTo(next) {
		utils.RespondWithError(c, http.StatusConflict, conflictMessage)
		return
	}

	quote.Status = next
	if err := config.DB.Save(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote status")
		return
	}

	utils.RespondWithData(c, http.StatusOK, quote)
}

// ConvertQuote turns an accepted quote into a draft invoice carrying
// the quote's line items verbatim. Exactly one invoice may ever be
// created from a quote.
func ConvertQuote(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	userUUID, ok := userFromContext(c)
	if !ok {
		return
	}
	quoteUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	salon, err := loadSalon(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load salon settings")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var quote models.Quote
	if err := tx.Preload("Items").
		Where("salon_id = ? AND id = ?", salonUUID, quoteUUID).
		First(&quote).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if quote.Status == models.QuoteStatusConverted {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Quote has already been converted")
		return
	}
	if quote.Status != models.QuoteStatusAccepted {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only accepted quotes can be converted")
		return
	}

	quoteID := quote.ID
	invoice := models.Invoice{
		ID:              uuid.New(),
		SalonID:         salonUUID,
		CreatedByUserID: userUUID,
		CustomerID:      quote.CustomerID,
		StylistID:       quote.StylistID,
		QuoteID:         &quoteID,
		ServiceDate:     time.Now(),
		// The agreed money figures carry over verbatim; catalog price
		// changes since the quote do not touch them.
		ServicesSubtotal: quote.ServicesSubtotal,
		ProductsSubtotal: quote.ProductsSubtotal,
		Subtotal:         quote.Subtotal,
		DiscountType:     quote.DiscountType,
		DiscountValue:    quote.DiscountValue,
		DiscountAmount:   quote.DiscountAmount,
		TaxRate:          quote.TaxRate,
		TaxAmount:        quote.TaxAmount,
		Total:            quote.Total,
		AmountDue:        quote.Total,
		Status:           models.InvoiceStatusDraft,
		PaymentStatus:    models.PaymentStatusUnpaid,
		Notes:            quote.Notes,
	}

	defaults := commissionDefaults(salon)
	commissionTotal := 0.0
	for _, qItem := range quote.Items {
		line := services.BillingLine{
			ItemType:     qItem.ItemType,
			ProductType:  qItem.ProductType,
			UnitPrice:    qItem.UnitPrice,
			Quantity:     qItem.Quantity,
			LineDiscount: qItem.LineDiscount,
			OverrideRate: qItem.CommissionRate,
		}

		// Commission candidates are re-read at conversion time; the
		// prices stay frozen but rates follow current configuration.
		switch qItem.ItemType {
		case models.ItemTypeService:
			var svc models.Service
			if err := tx.Where("salon_id = ? AND id = ?", salonUUID, qItem.CatalogID).
				First(&svc).Error; err == nil {
				line.CatalogRate = svc.CommissionRate
			}
		case models.ItemTypeProduct:
			var product models.Product
			if err := tx.Where("salon_id = ? AND id = ?", salonUUID, qItem.CatalogID).
				First(&product).Error; err == nil {
				line.CatalogRate = product.CommissionRate
			}
		}
		var stylist models.Stylist
		if err := tx.Where("salon_id = ? AND id = ?", salonUUID, qItem.StylistID).
			First(&stylist).Error; err == nil {
			line.StylistRate = stylist.CommissionRate
		}

		item := models.InvoiceItem{
			ID:                     uuid.New(),
			ItemType:               qItem.ItemType,
			CatalogID:              qItem.CatalogID,
			Name:                   qItem.Name,
			Category:               qItem.Category,
			ProductType:            qItem.ProductType,
			StylistID:              qItem.StylistID,
			UnitPrice:              qItem.UnitPrice,
			Quantity:               qItem.Quantity,
			LineDiscount:           qItem.LineDiscount,
			LineTotal:              qItem.LineTotal,
			CommissionRate:         qItem.CommissionRate,
			ResolvedCommissionRate: services.ResolveCommissionRate(line, defaults),
			CommissionAmount:       services.CommissionAmount(line, defaults),
		}
		commissionTotal += item.CommissionAmount
		invoice.Items = append(invoice.Items, item)
	}
	invoice.CommissionTotal = commissionTotal

	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	invoiceID := invoice.ID
	quote.Status = models.QuoteStatusConverted
	quote.ConvertedInvoiceID = &invoiceID
	if err := tx.Save(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote")
		return
	}

	tx.Commit()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"quote":   quote,
			"invoice": invoice,
		},
	})
}
