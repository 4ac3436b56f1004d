// controllers/invoice.go
package controllers

import (
	"errors"
	"math"
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

// CreateInvoiceInput defines the expected JSON structure for creating a
// draft invoice. An empty item list is a valid zero-value draft.
type CreateInvoiceInput struct {
	CustomerID    uuid.UUID       `json:"customerId" binding:"required"`
	StylistID     uuid.UUID       `json:"stylistId" binding:"required"`
	ServiceDate   *time.Time      `json:"serviceDate"`
	Items         []LineItemInput `json:"items"`
	DiscountType  string          `json:"discountType" binding:"omitempty,oneof=none percentage fixed loyalty_points"`
	DiscountValue float64         `json:"discountValue" binding:"min=0"`
	Notes         string          `json:"notes"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating a
// draft invoice. Finalized invoices reject all of this.
type UpdateInvoiceInput struct {
	CustomerID    *uuid.UUID       `json:"customerId"`
	StylistID     *uuid.UUID       `json:"stylistId"`
	ServiceDate   *time.Time       `json:"serviceDate"`
	Items         *[]LineItemInput `json:"items"`
	DiscountType  *string          `json:"discountType" binding:"omitempty,oneof=none percentage fixed loyalty_points"`
	DiscountValue *float64         `json:"discountValue" binding:"omitempty,min=0"`
	Notes         *string          `json:"notes"`
}

func loadSalon(salonID uuid.UUID) (models.Salon, error) {
	var salon models.Salon
	err := config.DB.First(&salon, "id = ?", salonID).Error
	return salon, err
}

// applyTotals recomputes the money fields on the header from resolved
// lines.
func applyTotals(invoice *models.Invoice, resolved []resolvedLine, salon models.Salon) error {
	lines := make([]services.BillingLine, 0, len(resolved))
	commissionTotal := 0.0
	for _, r := range resolved {
		lines = append(lines, r.Line)
		commissionTotal += r.Item.CommissionAmount
	}

	totals, err := services.ComputeTotals(lines,
		services.Discount{Type: invoice.DiscountType, Value: invoice.DiscountValue},
		salonTaxRate(salon))
	if err != nil {
		return err
	}

	invoice.ServicesSubtotal = totals.ServicesSubtotal
	invoice.ProductsSubtotal = totals.ProductsSubtotal
	invoice.Subtotal = totals.Subtotal
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.TaxRate = salonTaxRate(salon)
	invoice.TaxAmount = totals.TaxAmount
	invoice.Total = totals.Total
	invoice.AmountDue = totals.Total
	invoice.CommissionTotal = commissionTotal
	return nil
}

// CreateInvoice creates a new draft invoice for the salon
func CreateInvoice(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	userUUID, ok := userFromContext(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	salon, err := loadSalon(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load salon settings")
		return
	}

	// Validate customer exists in the same salon
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

	// Validate stylist exists in the same salon
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

	serviceDate := time.Now()
	if input.ServiceDate != nil {
		serviceDate = *input.ServiceDate
	}
	discountType := input.DiscountType
	if discountType == "" {
		discountType = models.DiscountTypeNone
	}

	invoice := models.Invoice{
		ID:              uuid.New(),
		SalonID:         salonUUID,
		CreatedByUserID: userUUID,
		CustomerID:      input.CustomerID,
		StylistID:       input.StylistID,
		ServiceDate:     serviceDate,
		DiscountType:    discountType,
		DiscountValue:   input.DiscountValue,
		Status:          models.InvoiceStatusDraft,
		PaymentStatus:   models.PaymentStatusUnpaid,
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

	if err := applyTotals(&invoice, resolved, salon); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	for _, r := range resolved {
		item := r.Item
		item.ID = uuid.New()
		invoice.Items = append(invoice.Items, item)
	}

	// Header and line items go in one transaction so a crash cannot
	// leave a half-written invoice.
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	tx.Commit()

	utils.RespondWithData(c, http.StatusCreated, invoice)
}

// GetInvoices retrieves invoices for the salon, filterable by status,
// payment status, customer and date range.
func GetInvoices(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Items").Where("salon_id = ?", salonUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if ps := c.Query("payment_status"); ps != "" {
		query = query.Where("payment_status = ?", ps)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("service_date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("service_date <= ?", end)
	}

	var invoices []models.Invoice
	if err := query.Order("service_date DESC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	utils.RespondWithData(c, http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := config.DB.Preload("Items").Preload("Payments").
		Where("salon_id = ? AND id = ?", salonUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, invoice)
}

// UpdateInvoice updates a draft invoice. Anything past draft is frozen.
func UpdateInvoice(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateInvoiceInput
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

	var invoice models.Invoice
	if err := tx.Preload("Items").
		Where("salon_id = ? AND id = ?", salonUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !invoice.IsEditable() {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only draft invoices can be edited")
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
		invoice.CustomerID = *input.CustomerID
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
		invoice.StylistID = *input.StylistID
	}

	if input.ServiceDate != nil {
		invoice.ServiceDate = *input.ServiceDate
	}
	if input.DiscountType != nil {
		invoice.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		invoice.DiscountValue = *input.DiscountValue
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}

	// Replacing items rewrites the snapshot; any money-affecting change
	// recomputes the header.
	if input.Items != nil {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear existing items")
			return
		}

		resolved, err := resolveLineItems(tx, salonUUID, invoice.StylistID, *input.Items, commissionDefaults(salon))
		if err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		if err := applyTotals(&invoice, resolved, salon); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		invoice.Items = nil
		for _, r := range resolved {
			item := r.Item
			item.ID = uuid.New()
			item.InvoiceID = invoice.ID
			invoice.Items = append(invoice.Items, item)
		}
	} else if input.DiscountType != nil || input.DiscountValue != nil {
		resolved := make([]resolvedLine, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			resolved = append(resolved, resolvedLine{
				Item: item,
				Line: services.BillingLine{
					ItemType:     item.ItemType,
					ProductType:  item.ProductType,
					UnitPrice:    item.UnitPrice,
					Quantity:     item.Quantity,
					LineDiscount: item.LineDiscount,
					OverrideRate: &item.ResolvedCommissionRate,
				},
			})
		}
		if err := applyTotals(&invoice, resolved, salon); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	tx.Commit()

	utils.RespondWithData(c, http.StatusOK, invoice)
}

// DeleteInvoice deletes a draft invoice and its items
func DeleteInvoice(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Where("salon_id = ? AND id = ?", salonUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !invoice.IsEditable() {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only draft invoices can be deleted")
		return
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice items")
		return
	}

	if err := tx.Delete(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invoice deleted successfully"})
}

// FinalizeInvoice assigns the sequential invoice number, freezes the
// line items, cuts commission records and redeems loyalty points. The
// unique index on invoice_number is the guard against two concurrent
// finalizations; on a conflict the whole transaction is retried with a
// fresh number.
func FinalizeInvoice(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	salon, err := loadSalon(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load salon settings")
		return
	}

	const maxAttempts = 3

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		invoice, status, message := finalizeOnce(salonUUID, invoiceUUID, salon)
		if status == 0 {
			utils.RespondWithData(c, http.StatusOK, invoice)
			return
		}
		if status == statusRetryNumber {
			if attempt < maxAttempts {
				continue
			}
			status = http.StatusConflict
		}
		utils.RespondWithError(c, status, message)
		return
	}
}

// statusRetryNumber signals a unique-index collision on the invoice
// number; the caller retries with the next sequence.
const statusRetryNumber = -1

func finalizeOnce(salonUUID, invoiceUUID uuid.UUID, salon models.Salon) (models.Invoice, int, string) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Preload("Items").
		Where("salon_id = ? AND id = ?", salonUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Invoice{}, http.StatusNotFound, "Invoice not found"
		}
		return models.Invoice{}, http.StatusInternalServerError, "Database error"
	}

	if invoice.Status != models.InvoiceStatusDraft {
		tx.Rollback()
		return models.Invoice{}, http.StatusConflict, "Only draft invoices can be finalized"
	}

	// Loyalty redemption happens at finalize, when the discount becomes
	// binding.
	if invoice.DiscountType == models.DiscountTypeLoyaltyPoints {
		var customer models.Customer
		if err := tx.Where("salon_id = ? AND id = ?", salonUUID, invoice.CustomerID).
			First(&customer).Error; err != nil {
			tx.Rollback()
			return models.Invoice{}, http.StatusInternalServerError, "Database error"
		}
		// Burn only the points the discount actually bought: when the
		// clamp reduced the discount, the surplus points stay with the
		// customer.
		points := int(math.Round(invoice.DiscountAmount * services.LoyaltyPointsPerUnit))
		if requested := int(invoice.DiscountValue); points > requested {
			points = requested
		}
		if customer.LoyaltyPoints < points {
			tx.Rollback()
			return models.Invoice{}, http.StatusConflict, "Customer does not have enough loyalty points"
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("loyalty_points", gorm.Expr("loyalty_points - ?", points)).Error; err != nil {
			tx.Rollback()
			return models.Invoice{}, http.StatusInternalServerError, "Failed to redeem loyalty points"
		}
	}

	year := time.Now().Year()
	number, err := services.NextInvoiceNumber(tx, salonUUID, salon.InvoicePrefix, year)
	if err != nil {
		tx.Rollback()
		return models.Invoice{}, http.StatusInternalServerError, "Failed to generate invoice number"
	}

	now := time.Now()
	invoice.InvoiceNumber = &number
	invoice.Status = models.InvoiceStatusFinalized
	invoice.FinalizedAt = &now

	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		if services.IsUniqueViolation(err) {
			return models.Invoice{}, statusRetryNumber, "Invoice number conflict"
		}
		return models.Invoice{}, http.StatusInternalServerError, "Failed to finalize invoice"
	}

	for _, commission := range buildCommissions(invoice, now) {
		if err := tx.Create(&commission).Error; err != nil {
			tx.Rollback()
			return models.Invoice{}, http.StatusInternalServerError, "Failed to record commissions"
		}
	}

	// Customer stats track finalized business only.
	if err := tx.Model(&models.Customer{}).Where("id = ?", invoice.CustomerID).
		Updates(map[string]interface{}{
			"total_visits": gorm.Expr("total_visits + ?", 1),
			"total_spent":  gorm.Expr("total_spent + ?", invoice.Total),
			"last_visit":   invoice.ServiceDate,
		}).Error; err != nil {
		tx.Rollback()
		return models.Invoice{}, http.StatusInternalServerError, "Failed to update customer stats"
	}

	tx.Commit()
	return invoice, 0, ""
}

// buildCommissions groups the frozen items by stylist and splits each
// stylist's cut between services and products.
func buildCommissions(invoice models.Invoice, earnedAt time.Time) []models.Commission {
	byStylist := map[uuid.UUID]*models.Commission{}
	order := []uuid.UUID{}

	for _, item := range invoice.Items {
		commission, ok := byStylist[item.StylistID]
		if !ok {
			commission = &models.Commission{
				ID:        uuid.New(),
				SalonID:   invoice.SalonID,
				InvoiceID: invoice.ID,
				StylistID: item.StylistID,
				Status:    models.CommissionStatusPending,
				EarnedAt:  earnedAt,
			}
			byStylist[item.StylistID] = commission
			order = append(order, item.StylistID)
		}
		if item.ItemType == models.ItemTypeService {
			commission.ServicesCommission += item.CommissionAmount
		} else {
			commission.ProductsCommission += item.CommissionAmount
		}
		commission.TotalCommission += item.CommissionAmount
	}

	result := make([]models.Commission, 0, len(order))
	for _, stylistID := range order {
		result = append(result, *byStylist[stylistID])
	}
	return result
}

// SendInvoice marks a finalized invoice as sent to the customer
func SendInvoice(c *gin.Context) {
	transitionInvoice(c, models.InvoiceStatusSent, "Only finalized invoices can be sent")
}

// CancelInvoice cancels a draft invoice
func CancelInvoice(c *gin.Context) {
	transitionInvoice(c, models.InvoiceStatusCancelled, "Only draft invoices can be cancelled")
}

// VoidInvoice voids a finalized or sent invoice
func VoidInvoice(c *gin.Context) {
	transitionInvoice(c, models.InvoiceStatusVoid, "Invoice cannot be voided from its current status")
}

func transitionInvoice(c *gin.Context, next models.InvoiceStatus, conflictMessage string) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !invoice.Status.CanTransitionTo(next) {
		utils.RespondWithError(c, http.StatusConflict, conflictMessage)
		return
	}

	invoice.Status = next
	if err := config.DB.Save(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice status")
		return
	}

	utils.RespondWithData(c, http.StatusOK, invoice)
}
