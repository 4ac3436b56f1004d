// controllers/product.go
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

type CreateProductInput struct {
	Name           string   `json:"name" binding:"required"`
	Category       string   `json:"category"`
	Type           string   `json:"type" binding:"omitempty,oneof=retail service_consumed"`
	Price          float64  `json:"price" binding:"required,min=0"`
	Cost           float64  `json:"cost" binding:"min=0"`
	Stock          int      `json:"stock" binding:"min=0"`
	CommissionRate *float64 `json:"commissionRate" binding:"omitempty,min=0,max=100"`
}

type UpdateProductInput struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Type           *string  `json:"type" binding:"omitempty,oneof=retail service_consumed"`
	Price          *float64 `json:"price" binding:"omitempty,min=0"`
	Cost           *float64 `json:"cost" binding:"omitempty,min=0"`
	Stock          *int     `json:"stock" binding:"omitempty,min=0"`
	CommissionRate *float64 `json:"commissionRate" binding:"omitempty,min=0,max=100"`
	IsActive       *bool    `json:"isActive"`
}

// CreateProduct creates a new retail or service-consumed product
func CreateProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	productType := input.Type
	if productType == "" {
		productType = models.ProductTypeRetail
	}

	product := models.Product{
		SalonID:        salonUUID,
		Name:           input.Name,
		Category:       input.Category,
		Type:           productType,
		Price:          input.Price,
		Cost:           input.Cost,
		Stock:          input.Stock,
		CommissionRate: input.CommissionRate,
		IsActive:       true,
	}

	if err := config.DB.Create(&product).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, product)
}

// GetProducts retrieves all products for the salon
func GetProducts(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("salon_id = ?", salonUUID)
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	utils.RespondWithData(c, http.StatusOK, products)
}

// GetProduct retrieves a specific product by ID
func GetProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	productUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, productUUID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, product)
}

// UpdateProduct updates an existing product
func UpdateProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	productUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var product models.Product
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, productUUID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Type != nil {
		product.Type = *input.Type
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Cost != nil {
		product.Cost = *input.Cost
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.CommissionRate != nil {
		product.CommissionRate = input.CommissionRate
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&product).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	utils.RespondWithData(c, http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog
func DeleteProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	productUUID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, productUUID).
		Delete(&models.Product{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}
