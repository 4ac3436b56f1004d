// controllers/pricelist.go
package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ImportPricelist upserts catalog entries from an uploaded CSV.
// Expected header: type,name,category,price,duration,stock,commission_rate,product_type
// where type is "service" or "product". Rows are matched by name;
// malformed rows are reported and skipped, the rest proceed.
func ImportPricelist(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "CSV file upload required under field 'file'")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read CSV header")
		return
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "name", "price"} {
		if _, ok := col[required]; !ok {
			utils.RespondWithError(c, http.StatusBadRequest, "Missing required CSV column: "+required)
			return
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	created := 0
	updated := 0
	var rowErrors []string

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		name := field(record, "name")
		if name == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: missing name", rowNum))
			continue
		}

		price, err := strconv.ParseFloat(field(record, "price"), 64)
		if err != nil || price < 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid price", rowNum))
			continue
		}

		var commissionRate *float64
		if raw := field(record, "commission_rate"); raw != "" {
			rate, err := strconv.ParseFloat(raw, 64)
			if err != nil || rate < 0 || rate > 100 {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid commission_rate", rowNum))
				continue
			}
			commissionRate = &rate
		}

		category := field(record, "category")
		if category == "" {
			category = "General"
		}

		switch field(record, "type") {
		case "service":
			duration := 0
			if raw := field(record, "duration"); raw != "" {
				duration, _ = strconv.Atoi(raw)
			}

			var service models.Service
			err := config.DB.Where("salon_id = ? AND name = ?", salonUUID, name).First(&service).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				service = models.Service{
					SalonID:        salonUUID,
					Name:           name,
					Category:       category,
					Price:          price,
					Duration:       duration,
					CommissionRate: commissionRate,
					IsActive:       true,
				}
				if err := config.DB.Create(&service).Error; err != nil {
					rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
					continue
				}
				created++
			} else if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
				continue
			} else {
				service.Category = category
				service.Price = price
				if duration > 0 {
					service.Duration = duration
				}
				if commissionRate != nil {
					service.CommissionRate = commissionRate
				}
				if err := config.DB.Save(&service).Error; err != nil {
					rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
					continue
				}
				updated++
			}

		case "product":
			stock := 0
			if raw := field(record, "stock"); raw != "" {
				stock, _ = strconv.Atoi(raw)
			}
			productType := field(record, "product_type")
			if productType == "" {
				productType = models.ProductTypeRetail
			}
			if productType != models.ProductTypeRetail && productType != models.ProductTypeServiceConsumed {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid product_type", rowNum))
				continue
			}

			var product models.Product
			err := config.DB.Where("salon_id = ? AND name = ?", salonUUID, name).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				product = models.Product{
					SalonID:        salonUUID,
					Name:           name,
					Category:       category,
					Type:           productType,
					Price:          price,
					Stock:          stock,
					CommissionRate: commissionRate,
					IsActive:       true,
				}
				if err := config.DB.Create(&product).Error; err != nil {
					rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
					continue
				}
				created++
			} else if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
				continue
			} else {
				product.Category = category
				product.Type = productType
				product.Price = price
				product.Stock = stock
				if commissionRate != nil {
					product.CommissionRate = commissionRate
				}
				if err := config.DB.Save(&product).Error; err != nil {
					rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
					continue
				}
				updated++
			}

		default:
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: type must be service or product", rowNum))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": created,
		"updated": updated,
		"skipped": len(rowErrors),
		"errors":  rowErrors,
	})
}
