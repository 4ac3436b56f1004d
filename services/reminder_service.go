// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"salondesk-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// How long an invoice may sit unpaid before a reminder goes out, and
// the cooldown between reminders for the same invoice.
const (
	paymentReminderAfter    = 3 * 24 * time.Hour
	paymentReminderCooldown = 7 * 24 * time.Hour
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", func() {
		s.SendPaymentReminders()
	})

	c.Start()
	log.Println("Payment reminder scheduler started")
}

// SendPaymentReminders walks every salon with reminders enabled and
// nudges customers whose finalized invoices are still carrying a
// balance.
func (s *ReminderService) SendPaymentReminders() {
	log.Println("Starting payment reminder processing...")

	var salons []models.Salon
	if err := s.db.Find(&salons, "payment_reminders = ?", true).Error; err != nil {
		log.Printf("Failed to fetch salons: %v", err)
		return
	}

	for _, salon := range salons {
		s.ProcessSalonReminders(salon.ID)
	}

	log.Println("Payment reminder processing completed")
}

func (s *ReminderService) ProcessSalonReminders(salonID uuid.UUID) {
	invoices, err := s.getOverdueInvoices(salonID)
	if err != nil {
		log.Printf("Salon %s: Failed to get overdue invoices: %v", salonID, err)
		return
	}
	if len(invoices) == 0 {
		return
	}

	var template models.ReminderTemplate
	if err := s.db.Where("salon_id = ? AND type = ? AND is_active = true",
		salonID, models.ReminderTypePaymentDue).
		First(&template).Error; err != nil {
		log.Printf("Salon %s: No active payment_due template: %v", salonID, err)
		return
	}

	for _, invoice := range invoices {
		s.sendReminder(salonID, invoice, template)
	}
}

func (s *ReminderService) getOverdueInvoices(salonID uuid.UUID) ([]models.Invoice, error) {
	cutoff := time.Now().Add(-paymentReminderAfter)

	var invoices []models.Invoice
	err := s.db.
		Where("salon_id = ? AND status IN ? AND payment_status IN ? AND finalized_at < ?",
			salonID,
			[]models.InvoiceStatus{models.InvoiceStatusFinalized, models.InvoiceStatusSent},
			[]models.PaymentStatus{models.PaymentStatusUnpaid, models.PaymentStatusPartial},
			cutoff).
		Find(&invoices).Error
	return invoices, err
}

func (s *ReminderService) sendReminder(salonID uuid.UUID, invoice models.Invoice, template models.ReminderTemplate) {
	// Respect the cooldown so a customer is not nudged daily.
	var recent int64
	s.db.Model(&models.ReminderLog{}).
		Where("invoice_id = ? AND status = ? AND sent_at > ?",
			invoice.ID, "sent", time.Now().Add(-paymentReminderCooldown)).
		Count(&recent)
	if recent > 0 {
		return
	}

	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", invoice.CustomerID).Error; err != nil {
		log.Printf("Invoice %s: customer lookup failed: %v", invoice.ID, err)
		return
	}

	number := ""
	if invoice.InvoiceNumber != nil {
		number = *invoice.InvoiceNumber
	}

	message := strings.ReplaceAll(template.Message, "[CustomerName]", customer.Name)
	message = strings.ReplaceAll(message, "[InvoiceNumber]", number)
	message = strings.ReplaceAll(message, "[AmountDue]", fmt.Sprintf("%.2f", invoice.AmountDue))

	// WhatsApp when the phone is in E.164 format, SMS otherwise.
	channel := "sms"
	to := customer.Phone
	if strings.HasPrefix(customer.Phone, "+") {
		to = "whatsapp:" + customer.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send reminder to %s: %v", customer.Phone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Reminder sent to %s, SID: %s", customer.Phone, *resp.Sid)
	} else {
		log.Printf("Reminder sent to %s, but no SID returned", customer.Phone)
	}

	invoiceID := invoice.ID
	reminderLog := models.ReminderLog{
		SalonID:      salonID,
		CustomerID:   customer.ID,
		InvoiceID:    &invoiceID,
		TemplateID:   template.ID,
		Type:         models.ReminderTypePaymentDue,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}

	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for invoice %s: %v", invoice.ID, err)
	}
}
