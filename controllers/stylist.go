// controllers/stylist.go
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

type CreateStylistInput struct {
	Name           string   `json:"name" binding:"required"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email" binding:"omitempty,email"`
	Specialty      string   `json:"specialty"`
	CommissionRate *float64 `json:"commissionRate" binding:"omitempty,min=0,max=100"`
}

type UpdateStylistInput struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	Specialty      *string  `json:"specialty"`
	CommissionRate *float64 `json:"commissionRate" binding:"omitempty,min=0,max=100"`
	IsActive       *bool    `json:"isActive"`
}

// CreateStylist adds a stylist to the salon
func CreateStylist(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateStylistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	stylist := models.Stylist{
		SalonID:        salonUUID,
		Name:           input.Name,
		Phone:          input.Phone,
		Email:          input.Email,
		Specialty:      input.Specialty,
		CommissionRate: input.CommissionRate,
		IsActive:       true,
	}

	if err := config.DB.Create(&stylist).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create stylist")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, stylist)
}

// GetStylists retrieves all stylists for the salon
func GetStylists(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var stylists []models.Stylist
	if err := config.DB.Where("salon_id = ?", salonUUID).Find(&stylists).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve stylists")
		return
	}

	utils.RespondWithData(c, http.StatusOK, stylists)
}

// GetStylist retrieves a specific stylist by ID
func GetStylist(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	stylistUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var stylist models.Stylist
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, stylistUUID).
		First(&stylist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, stylist)
}

// UpdateStylist updates an existing stylist
func UpdateStylist(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	stylistUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateStylistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var stylist models.Stylist
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, stylistUUID).
		First(&stylist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		stylist.Name = *input.Name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		stylist.Phone = *input.Phone
	}
	if input.Email != nil {
		stylist.Email = *input.Email
	}
	if input.Specialty != nil {
		stylist.Specialty = *input.Specialty
	}
	if input.CommissionRate != nil {
		stylist.CommissionRate = input.CommissionRate
	}
	if input.IsActive != nil {
		stylist.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&stylist).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update stylist")
		return
	}

	utils.RespondWithData(c, http.StatusOK, stylist)
}

// DeleteStylist soft deletes a stylist. Commission history keeps the
// reference.
func DeleteStylist(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	stylistUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, stylistUUID).
		Delete(&models.Stylist{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete stylist")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Stylist not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stylist deleted successfully"})
}
