// controllers/payment.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecordPaymentInput struct {
	Amount    float64    `json:"amount" binding:"required,gt=0"`
	Method    string     `json:"method" binding:"required,oneof=cash card upi bank_transfer other"`
	Reference string     `json:"reference"`
	PaidAt    *time.Time `json:"paidAt"`
}

type SetPaymentStatusInput struct {
	Status string `json:"status" binding:"required,oneof=refunded written_off"`
}

// RecordPayment appends a payment to a finalized invoice and rederives
// the payment status from the cumulative ledger.
func RecordPayment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	if invoice.Status != models.InvoiceStatusFinalized && invoice.Status != models.InvoiceStatusSent {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Payments can only be recorded against finalized invoices")
		return
	}
	if invoice.PaymentStatus == models.PaymentStatusRefunded ||
		invoice.PaymentStatus == models.PaymentStatusWrittenOff {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Invoice payment status is closed")
		return
	}

	paidAt := time.Now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	payment := models.Payment{
		SalonID:   salonUUID,
		InvoiceID: invoice.ID,
		Amount:    input.Amount,
		Method:    input.Method,
		Reference: input.Reference,
		PaidAt:    paidAt,
	}

	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	// amount_paid is always the sum of the ledger, never an increment,
	// so a replayed request cannot drift the header.
	var totalPaid float64
	if err := tx.Model(&models.Payment{}).
		Where("invoice_id = ?", invoice.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalPaid).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to aggregate payments")
		return
	}

	invoice.AmountPaid = totalPaid
	invoice.AmountDue = invoice.Total - totalPaid
	invoice.PaymentStatus = models.DerivePaymentStatus(invoice.Total, totalPaid)

	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	tx.Commit()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"payment": payment,
			"invoice": invoice,
		},
	})
}

// GetPayments lists the payment ledger for an invoice
func GetPayments(c *gin.Context) {
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

	var payments []models.Payment
	if err := config.DB.Where("invoice_id = ?", invoice.ID).
		Order("paid_at ASC").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	utils.RespondWithData(c, http.StatusOK, payments)
}

// SetInvoicePaymentStatus manually closes an invoice's payment state as
// refunded or written_off. These are terminal and bypass derivation.
func SetInvoicePaymentStatus(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input SetPaymentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	if invoice.Status == models.InvoiceStatusDraft {
		utils.RespondWithError(c, http.StatusConflict, "Draft invoices have no payment state to close")
		return
	}

	invoice.PaymentStatus = models.PaymentStatus(input.Status)
	if err := config.DB.Save(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update payment status")
		return
	}

	utils.RespondWithData(c, http.StatusOK, invoice)
}
