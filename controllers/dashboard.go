package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecentCustomer struct {
	Name      string `json:"name"`
	Service   string `json:"service"`
	VisitDate string `json:"visitDate"` // e.g. "Today", "Yesterday"
}

type TodayBooking struct {
	CustomerName string `json:"customerName"`
	ServiceName  string `json:"serviceName"`
	StylistName  string `json:"stylistName"`
	StartTime    string `json:"startTime"`
	Status       string `json:"status"`
}

func GetDashboardOverview(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	billable := []models.InvoiceStatus{models.InvoiceStatusFinalized, models.InvoiceStatusSent}

	// Total Customers
	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("salon_id = ? AND deleted_at IS NULL", salonUUID).Count(&totalCustomers)

	// This Month's Revenue
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue float64
	config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ? AND service_date >= ?", salonUUID, billable, firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlyRevenue)

	// Total Invoices
	var totalInvoices int64
	config.DB.Model(&models.Invoice{}).Where("salon_id = ? AND status IN ?", salonUUID, billable).Count(&totalInvoices)

	// Draft invoices waiting to be finalized
	var draftInvoices int64
	config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status = ?", salonUUID, models.InvoiceStatusDraft).Count(&draftInvoices)

	// Unpaid / partially paid invoices and money outstanding
	var unpaidInvoices int64
	var outstandingDue float64
	unpaidStatuses := []models.PaymentStatus{models.PaymentStatusUnpaid, models.PaymentStatusPartial}
	config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ? AND payment_status IN ?", salonUUID, billable, unpaidStatuses).
		Count(&unpaidInvoices)
	config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ? AND payment_status IN ?", salonUUID, billable, unpaidStatuses).
		Select("COALESCE(SUM(amount_due), 0)").Scan(&outstandingDue)

	// Commission owed to stylists
	var pendingCommission float64
	config.DB.Model(&models.Commission{}).
		Where("salon_id = ? AND status != ?", salonUUID, models.CommissionStatusPaid).
		Select("COALESCE(SUM(total_commission), 0)").Scan(&pendingCommission)

	// Quotes awaiting a customer decision
	var openQuotes int64
	config.DB.Model(&models.Quote{}).
		Where("salon_id = ? AND status = ? AND valid_until >= ?", salonUUID, models.QuoteStatusSent, now).
		Count(&openQuotes)

	// Today's bookings
	startOfDay := utils.BeginningOfDay(now)
	endOfDay := startOfDay.AddDate(0, 0, 1)
	var bookings []models.Booking
	config.DB.Preload("Customer").Preload("Service").Preload("Stylist").
		Where("salon_id = ? AND start_time >= ? AND start_time < ?", salonUUID, startOfDay, endOfDay).
		Order("start_time ASC").
		Find(&bookings)

	todayBookings := make([]TodayBooking, 0, len(bookings))
	for _, b := range bookings {
		todayBookings = append(todayBookings, TodayBooking{
			CustomerName: b.Customer.Name,
			ServiceName:  b.Service.Name,
			StylistName:  b.Stylist.Name,
			StartTime:    b.StartTime.Format("15:04"),
			Status:       string(b.Status),
		})
	}

	// Recent Customers (last 3 visits)
	var recentCustomers []RecentCustomer
	rows, err := config.DB.Raw(`
    SELECT c.name, i.service_date, i.id
    FROM invoices i
    JOIN customers c ON c.id = i.customer_id
    WHERE i.salon_id = ? AND i.status IN ('finalized', 'sent')
    ORDER BY i.service_date DESC
`, salonUUID).Rows()
	if err == nil {
		defer rows.Close()
		customerMap := make(map[string]bool)
		count := 0
		for rows.Next() {
			var name string
			var serviceDate time.Time
			var invoiceID uuid.UUID
			rows.Scan(&name, &serviceDate, &invoiceID)
			if customerMap[name] {
				continue
			}
			// Get all line items for this invoice
			var services []string
			config.DB.Raw(`
            SELECT name FROM invoice_items WHERE invoice_id = ?
        `, invoiceID).Scan(&services)
			// Calculate "Today", "Yesterday", "X days ago"
			daysAgo := utils.DaysBetween(serviceDate, now)
			var visitDate string
			switch daysAgo {
			case 0:
				visitDate = "Today"
			case 1:
				visitDate = "Yesterday"
			default:
				visitDate = fmt.Sprintf("%d days ago", daysAgo)
			}
			recentCustomers = append(recentCustomers, RecentCustomer{
				Name:      name,
				Service:   strings.Join(services, ", "),
				VisitDate: visitDate,
			})
			customerMap[name] = true
			count++
			if count >= 3 {
				break
			}
		}
	}

	response := gin.H{
		"success":        true,
		"totalCustomers": totalCustomers,
		"monthlyRevenue": monthlyRevenue,
		"totalInvoices":  totalInvoices,
		"draftInvoices":  draftInvoices,
		"unpaidInvoices": gin.H{
			"count":     unpaidInvoices,
			"amountDue": outstandingDue,
		},
		"pendingCommission": pendingCommission,
		"openQuotes":        openQuotes,
		"todayBookings":     todayBookings,
		"recentCustomers":   recentCustomers,
	}

	c.JSON(http.StatusOK, response)
}
