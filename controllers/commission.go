// controllers/commission.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type MarkCommissionsPaidInput struct {
	CommissionIDs    []uuid.UUID `json:"commissionIds" binding:"required,min=1"`
	PaymentReference string      `json:"paymentReference"`
}

// GetCommissions lists commission records filtered by stylist, date
// range and status, with a summary split between services and products.
func GetCommissions(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Stylist").Preload("Invoice").
		Where("salon_id = ?", salonUUID)

	if stylistID := c.Query("stylist_id"); stylistID != "" {
		query = query.Where("stylist_id = ?", stylistID)
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("earned_at >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("earned_at <= ?", end)
	}
	if status := c.Query("status"); status != "" {
		if err := models.CommissionStatus(status).Validate(); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("status = ?", status)
	}

	var commissions []models.Commission
	if err := query.Order("earned_at DESC").Find(&commissions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve commissions")
		return
	}

	summary := gin.H{
		"count":              len(commissions),
		"servicesCommission": lo.SumBy(commissions, func(m models.Commission) float64 { return m.ServicesCommission }),
		"productsCommission": lo.SumBy(commissions, func(m models.Commission) float64 { return m.ProductsCommission }),
		"totalCommission":    lo.SumBy(commissions, func(m models.Commission) float64 { return m.TotalCommission }),
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commissions,
		"summary": summary,
	})
}

// ApproveCommission moves a pending commission to approved
func ApproveCommission(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	commissionUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var commission models.Commission
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, commissionUUID).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Commission not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if commission.Status != models.CommissionStatusPending {
		utils.RespondWithError(c, http.StatusConflict, "Only pending commissions can be approved")
		return
	}

	commission.Status = models.CommissionStatusApproved
	if err := config.DB.Save(&commission).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to approve commission")
		return
	}

	utils.RespondWithData(c, http.StatusOK, commission)
}

// MarkCommissionsPaid pays out a batch of commissions under one payment
// reference. A commission is only payable once its invoice is paid;
// ineligible records are skipped and counted, the rest proceed
// best-effort.
func MarkCommissionsPaid(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input MarkCommissionsPaidInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reference := input.PaymentReference
	if reference == "" {
		reference = "PAYOUT-" + utils.GenerateRandomString(8)
	}

	now := time.Now()
	updated := 0
	skipped := 0

	for _, commissionID := range input.CommissionIDs {
		var commission models.Commission
		if err := config.DB.Preload("Invoice").
			Where("salon_id = ? AND id = ?", salonUUID, commissionID).
			First(&commission).Error; err != nil {
			skipped++
			continue
		}

		if commission.Status == models.CommissionStatusPaid ||
			commission.Invoice.PaymentStatus != models.PaymentStatusPaid {
			skipped++
			continue
		}

		commission.Status = models.CommissionStatusPaid
		commission.PaymentReference = reference
		commission.PaidAt = &now

		if err := config.DB.Save(&commission).Error; err != nil {
			skipped++
			continue
		}
		updated++
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"paymentReference": reference,
		"updated":          updated,
		"skipped":          skipped,
	})
}
