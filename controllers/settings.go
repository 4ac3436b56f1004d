// controllers/settings.go
package controllers

import (
	"errors"
	"net/http"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateSalonSettingsInput struct {
	Name         *string       `json:"name"`
	Address      *string       `json:"address"`
	Phone        *string       `json:"phone"`
	WorkingHours *models.JSONB `json:"workingHours"`
	CurrencyCode *string       `json:"currencyCode" binding:"omitempty,len=3"`

	TaxRegistered *bool    `json:"taxRegistered"`
	TaxRate       *float64 `json:"taxRate" binding:"omitempty,min=0,max=100"`
	InvoicePrefix *string  `json:"invoicePrefix"`
	QuotePrefix   *string  `json:"quotePrefix"`

	ServiceCommissionRate        *float64 `json:"serviceCommissionRate" binding:"omitempty,min=0,max=100"`
	ProductCommissionRate        *float64 `json:"productCommissionRate" binding:"omitempty,min=0,max=100"`
	ServiceProductCommissionRate *float64 `json:"serviceProductCommissionRate" binding:"omitempty,min=0,max=100"`

	PaymentReminders     *bool `json:"paymentReminders"`
	BirthdayReminders    *bool `json:"birthdayReminders"`
	AnniversaryReminders *bool `json:"anniversaryReminders"`
}

type UpdateReminderTemplateInput struct {
	Type     string `json:"type" binding:"required,oneof=payment_due birthday anniversary"`
	Message  string `json:"message" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

// GetSettings returns the salon profile and billing settings
func GetSettings(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var templates []models.ReminderTemplate
	config.DB.Where("salon_id = ?", salonUUID).Find(&templates)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"salon":             salon,
		"reminderTemplates": templates,
	})
}

// UpdateSettings updates the salon profile and billing settings.
// Changing tax or commission defaults only affects future computations;
// finalized invoices keep their snapshots.
func UpdateSettings(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateSalonSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		salon.Name = *input.Name
	}
	if input.Address != nil {
		salon.Address = *input.Address
	}
	if input.Phone != nil {
		salon.Phone = *input.Phone
	}
	if input.WorkingHours != nil {
		salon.WorkingHours = *input.WorkingHours
	}
	if input.CurrencyCode != nil {
		salon.CurrencyCode = *input.CurrencyCode
	}
	if input.TaxRegistered != nil {
		salon.TaxRegistered = *input.TaxRegistered
	}
	if input.TaxRate != nil {
		salon.TaxRate = *input.TaxRate
	}
	if input.InvoicePrefix != nil {
		salon.InvoicePrefix = *input.InvoicePrefix
	}
	if input.QuotePrefix != nil {
		salon.QuotePrefix = *input.QuotePrefix
	}
	if input.ServiceCommissionRate != nil {
		salon.ServiceCommissionRate = *input.ServiceCommissionRate
	}
	if input.ProductCommissionRate != nil {
		salon.ProductCommissionRate = *input.ProductCommissionRate
	}
	if input.ServiceProductCommissionRate != nil {
		salon.ServiceProductCommissionRate = *input.ServiceProductCommissionRate
	}
	if input.PaymentReminders != nil {
		salon.PaymentReminders = *input.PaymentReminders
	}
	if input.BirthdayReminders != nil {
		salon.BirthdayReminders = *input.BirthdayReminders
	}
	if input.AnniversaryReminders != nil {
		salon.AnniversaryReminders = *input.AnniversaryReminders
	}

	if err := config.DB.Save(&salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	utils.RespondWithData(c, http.StatusOK, salon)
}

// UpdateReminderTemplate upserts the active message for a reminder type
func UpdateReminderTemplate(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateReminderTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var template models.ReminderTemplate
	err := config.DB.Where("salon_id = ? AND type = ?", salonUUID, input.Type).
		First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		template = models.ReminderTemplate{
			SalonID:  salonUUID,
			Type:     input.Type,
			Message:  input.Message,
			IsActive: true,
		}
		if input.IsActive != nil {
			template.IsActive = *input.IsActive
		}
		if err := config.DB.Create(&template).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
			return
		}
	} else if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	} else {
		template.Message = input.Message
		if input.IsActive != nil {
			template.IsActive = *input.IsActive
		}
		if err := config.DB.Save(&template).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
			return
		}
	}

	utils.RespondWithData(c, http.StatusOK, template)
}
