// controllers/booking.go
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
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	CustomerID uuid.UUID `json:"customerId" binding:"required"`
	StylistID  uuid.UUID `json:"stylistId" binding:"required"`
	ServiceID  uuid.UUID `json:"serviceId" binding:"required"`
	StartTime  time.Time `json:"startTime" binding:"required"`
	Notes      string    `json:"notes"`
}

type UpdateBookingInput struct {
	CustomerID *uuid.UUID `json:"customerId"`
	StylistID  *uuid.UUID `json:"stylistId"`
	ServiceID  *uuid.UUID `json:"serviceId"`
	StartTime  *time.Time `json:"startTime"`
	Status     *string    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled no_show"`
	Notes      *string    `json:"notes"`
}

// CreateBooking schedules an appointment. Duration comes from the
// booked service.
func CreateBooking(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	userUUID, ok := userFromContext(c)
	if !ok {
		return
	}

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, input.ServiceID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	booking := models.Booking{
		ID:              uuid.New(),
		SalonID:         salonUUID,
		CreatedByUserID: userUUID,
		CustomerID:      input.CustomerID,
		StylistID:       input.StylistID,
		ServiceID:       input.ServiceID,
		StartTime:       input.StartTime,
		Duration:        service.Duration,
		Status:          models.BookingStatusScheduled,
		Notes:           input.Notes,
	}

	if err := config.DB.Create(&booking).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, booking)
}

// GetBookings lists bookings filtered by stylist, status and date range
func GetBookings(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Customer").Preload("Stylist").Preload("Service").
		Where("salon_id = ?", salonUUID)
	if stylistID := c.Query("stylist_id"); stylistID != "" {
		query = query.Where("stylist_id = ?", stylistID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("start_time >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("start_time <= ?", end)
	}

	var bookings []models.Booking
	if err := query.Order("start_time ASC").Find(&bookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	utils.RespondWithData(c, http.StatusOK, bookings)
}

// GetBooking retrieves a specific booking by ID
func GetBooking(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	bookingUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var booking models.Booking
	if err := config.DB.Preload("Customer").Preload("Stylist").Preload("Service").
		Where("salon_id = ? AND id = ?", salonUUID, bookingUUID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, booking)
}

// UpdateBooking reschedules or re-statuses a booking
func UpdateBooking(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	bookingUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var booking models.Booking
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, bookingUUID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.CustomerID != nil {
		booking.CustomerID = *input.CustomerID
	}
	if input.StylistID != nil {
		booking.StylistID = *input.StylistID
	}
	if input.ServiceID != nil {
		var service models.Service
		if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, *input.ServiceID).
			First(&service).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Service not found")
			return
		}
		booking.ServiceID = *input.ServiceID
		booking.Duration = service.Duration
	}
	if input.StartTime != nil {
		booking.StartTime = *input.StartTime
	}
	if input.Status != nil {
		booking.Status = models.BookingStatus(*input.Status)
	}
	if input.Notes != nil {
		booking.Notes = *input.Notes
	}

	if err := config.DB.Save(&booking).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update booking")
		return
	}

	utils.RespondWithData(c, http.StatusOK, booking)
}

// DeleteBooking soft deletes a booking
func DeleteBooking(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	bookingUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, bookingUUID).
		Delete(&models.Booking{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete booking")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted successfully"})
}
