// controllers/export.go
package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
)

// ExportInvoices streams the salon's invoices as CSV, honoring the same
// filters as the list endpoint.
func ExportInvoices(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("salon_id = ?", salonUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("service_date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("service_date <= ?", end)
	}

	var invoices []models.Invoice
	if err := query.Order("service_date ASC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="invoices.csv"`)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write([]string{
		"invoice_number", "service_date", "status", "payment_status",
		"services_subtotal", "products_subtotal", "subtotal",
		"discount_amount", "tax_amount", "total", "amount_paid", "amount_due",
		"commission_total",
	})

	for _, invoice := range invoices {
		number := ""
		if invoice.InvoiceNumber != nil {
			number = *invoice.InvoiceNumber
		}
		w.Write([]string{
			number,
			invoice.ServiceDate.Format("2006-01-02"),
			string(invoice.Status),
			string(invoice.PaymentStatus),
			fmt.Sprintf("%.2f", invoice.ServicesSubtotal),
			fmt.Sprintf("%.2f", invoice.ProductsSubtotal),
			fmt.Sprintf("%.2f", invoice.Subtotal),
			fmt.Sprintf("%.2f", invoice.DiscountAmount),
			fmt.Sprintf("%.2f", invoice.TaxAmount),
			fmt.Sprintf("%.2f", invoice.Total),
			fmt.Sprintf("%.2f", invoice.AmountPaid),
			fmt.Sprintf("%.2f", invoice.AmountDue),
			fmt.Sprintf("%.2f", invoice.CommissionTotal),
		})
	}
}

// ExportBookings streams the salon's bookings as CSV.
func ExportBookings(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Customer").Preload("Stylist").Preload("Service").
		Where("salon_id = ?", salonUUID)
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

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="bookings.csv"`)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write([]string{
		"start_time", "duration_minutes", "status",
		"customer", "stylist", "service", "notes",
	})

	for _, booking := range bookings {
		w.Write([]string{
			booking.StartTime.Format(time.RFC3339),
			fmt.Sprintf("%d", booking.Duration),
			string(booking.Status),
			booking.Customer.Name,
			booking.Stylist.Name,
			booking.Service.Name,
			booking.Notes,
		})
	}
}
