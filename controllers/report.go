// controllers/report.go
package controllers

import (
	"net/http"
	"sort"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64           `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue float64           `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    float64           `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	TopServices           []ServiceSummary  `json:"topServices"`
	TopStylists           []StylistSummary  `json:"topStylists"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type StylistSummary struct {
	Name               string  `json:"name"`
	ServicesCommission float64 `json:"servicesCommission"`
	ProductsCommission float64 `json:"productsCommission"`
	TotalCommission    float64 `json:"totalCommission"`
	UnpaidCommission   float64 `json:"unpaidCommission"`
}

type CustomerSummary struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalCustomers  int     `json:"totalCustomers"`
	TotalInvoices   int     `json:"totalInvoices"`
	UnpaidInvoices  int     `json:"unpaidInvoices"`
	OutstandingDue  float64 `json:"outstandingDue"`
	AvgInvoiceValue float64 `json:"avgInvoiceValue"`
}

// GetReportAnalytics returns the complete analytics summary. Only
// finalized business counts: drafts, cancelled and void invoices are
// excluded from revenue.
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	currentLocation := now.Location()

	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, currentLocation)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	currentMonthRevenue, err := rc.getRevenue(salonUUID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}

	lastMonthRevenue, err := rc.getRevenue(salonUUID,
		firstOfMonth.AddDate(0, -1, 0),
		lastOfMonth.AddDate(0, -1, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}

	currentQuarterRevenue, err := rc.getRevenue(salonUUID,
		rc.getQuarterStart(now),
		rc.getQuarterEnd(now))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quarterly revenue")
		return
	}

	lastQuarterRevenue, err := rc.getRevenue(salonUUID,
		rc.getQuarterStart(now).AddDate(0, -3, 0),
		rc.getQuarterEnd(now).AddDate(0, -3, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last quarter revenue")
		return
	}

	currentYearRevenue, err := rc.getRevenue(salonUUID,
		time.Date(currentYear, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get yearly revenue")
		return
	}

	lastYearRevenue, err := rc.getRevenue(salonUUID,
		time.Date(currentYear-1, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear-1, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last year revenue")
		return
	}

	topServices, err := rc.getTopServices(salonUUID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top services")
		return
	}

	topStylists, err := rc.getTopStylists(salonUUID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top stylists")
		return
	}

	topCustomers, err := rc.getTopCustomers(salonUUID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top customers")
		return
	}

	quickStats, err := rc.getQuickStatistics(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	summary := AnalyticsSummary{
		CurrentMonthRevenue:   currentMonthRevenue,
		MonthGrowth:           rc.calculateGrowthPercentage(currentMonthRevenue, lastMonthRevenue),
		CurrentQuarterRevenue: currentQuarterRevenue,
		QuarterGrowth:         rc.calculateGrowthPercentage(currentQuarterRevenue, lastQuarterRevenue),
		CurrentYearRevenue:    currentYearRevenue,
		YearGrowth:            rc.calculateGrowthPercentage(currentYearRevenue, lastYearRevenue),
		TopServices:           topServices,
		TopStylists:           topStylists,
		TopCustomers:          topCustomers,
		QuickStats:            quickStats,
	}

	utils.RespondWithData(c, http.StatusOK, summary)
}

// Helper functions for reports

func (rc *ReportController) revenueStatuses() []models.InvoiceStatus {
	return []models.InvoiceStatus{models.InvoiceStatusFinalized, models.InvoiceStatusSent}
}

func (rc *ReportController) getRevenue(salonID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ? AND service_date BETWEEN ? AND ?",
			salonID, rc.revenueStatuses(), start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) getQuarterEnd(date time.Time) time.Time {
	return rc.getQuarterStart(date).AddDate(0, 3, -1)
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getTopServices(salonID uuid.UUID, start, end time.Time, limit int) ([]ServiceSummary, error) {
	var services []ServiceSummary

	err := config.DB.Table("invoice_items").
		Select("invoice_items.name, SUM(invoice_items.quantity) as count, SUM(invoice_items.line_total) as revenue").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.salon_id = ? AND invoices.status IN ? AND invoices.service_date BETWEEN ? AND ? AND invoice_items.item_type = ?",
			salonID, rc.revenueStatuses(), start, end, models.ItemTypeService).
		Group("invoice_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error

	return services, err
}

// getTopStylists aggregates commission records in memory; a salon has
// few stylists so the grouping stays small.
func (rc *ReportController) getTopStylists(salonID uuid.UUID, start, end time.Time) ([]StylistSummary, error) {
	var commissions []models.Commission
	err := config.DB.Preload("Stylist").
		Where("salon_id = ? AND earned_at BETWEEN ? AND ?", salonID, start, end).
		Find(&commissions).Error
	if err != nil {
		return nil, err
	}

	grouped := lo.GroupBy(commissions, func(m models.Commission) uuid.UUID { return m.StylistID })

	summaries := lo.MapToSlice(grouped, func(_ uuid.UUID, records []models.Commission) StylistSummary {
		unpaid := lo.Filter(records, func(m models.Commission, _ int) bool {
			return m.Status != models.CommissionStatusPaid
		})
		return StylistSummary{
			Name:               records[0].Stylist.Name,
			ServicesCommission: lo.SumBy(records, func(m models.Commission) float64 { return m.ServicesCommission }),
			ProductsCommission: lo.SumBy(records, func(m models.Commission) float64 { return m.ProductsCommission }),
			TotalCommission:    lo.SumBy(records, func(m models.Commission) float64 { return m.TotalCommission }),
			UnpaidCommission:   lo.SumBy(unpaid, func(m models.Commission) float64 { return m.TotalCommission }),
		}
	})

	// Highest earners first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalCommission > summaries[j].TotalCommission
	})
	return summaries, nil
}

func (rc *ReportController) getTopCustomers(salonID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	var customers []CustomerSummary

	err := config.DB.Table("invoices").
		Select("customers.name, COUNT(invoices.id) as visits, SUM(invoices.total) as spent").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.salon_id = ? AND invoices.status IN ? AND invoices.service_date BETWEEN ? AND ? AND customers.deleted_at IS NULL",
			salonID, rc.revenueStatuses(), start, end).
		Group("customers.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&customers).Error

	return customers, err
}

func (rc *ReportController) getQuickStatistics(salonID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	var totalCustomers int64
	if err := config.DB.Model(&models.Customer{}).
		Where("salon_id = ? AND deleted_at IS NULL", salonID).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	var totalInvoices int64
	if err := config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ?", salonID, rc.revenueStatuses()).
		Count(&totalInvoices).Error; err != nil {
		return stats, err
	}
	stats.TotalInvoices = int(totalInvoices)

	var unpaidInvoices int64
	if err := config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ? AND payment_status IN ?",
			salonID, rc.revenueStatuses(),
			[]models.PaymentStatus{models.PaymentStatusUnpaid, models.PaymentStatusPartial}).
		Count(&unpaidInvoices).Error; err != nil {
		return stats, err
	}
	stats.UnpaidInvoices = int(unpaidInvoices)

	if err := config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ?", salonID, rc.revenueStatuses()).
		Select("COALESCE(SUM(amount_due), 0)").
		Scan(&stats.OutstandingDue).Error; err != nil {
		return stats, err
	}

	var totalRevenue float64
	if err := config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND status IN ?", salonID, rc.revenueStatuses()).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return stats, err
	}

	if stats.TotalInvoices > 0 {
		stats.AvgInvoiceValue = totalRevenue / float64(stats.TotalInvoices)
	}

	return stats, nil
}
