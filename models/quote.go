package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteStatus is the lifecycle state of a quote. Expiry is derived at
// read time from ValidUntil rather than written back by a sweep; use
// EffectiveStatus when presenting a quote.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusDeclined  QuoteStatus = "declined"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusConverted QuoteStatus = "converted"
)

func (s QuoteStatus) String() string {
	return string(s)
}

func (s QuoteStatus) Validate() error {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusDeclined, QuoteStatusExpired, QuoteStatusConverted:
		return nil
	}
	return fmt.Errorf("invalid quote status: %s", s)
}

func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return next == QuoteStatusSent
	case QuoteStatusSent:
		return next == QuoteStatusAccepted || next == QuoteStatusDeclined ||
			next == QuoteStatusExpired
	case QuoteStatusAccepted:
		return next == QuoteStatusConverted
	}
	return false
}

type Quote struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_quotes_salon_number"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Assigned when the quote is sent; unique per salon.
	QuoteNumber *string `gorm:"uniqueIndex:idx_quotes_salon_number"`

	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	StylistID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ValidUntil *time.Time

	ServicesSubtotal float64 `gorm:"type:decimal(10,2);default:0.0"`
	ProductsSubtotal float64 `gorm:"type:decimal(10,2);default:0.0"`
	Subtotal         float64 `gorm:"type:decimal(10,2);not null"`
	DiscountType     string  `gorm:"type:varchar(20);default:'none'"`
	DiscountValue    float64 `gorm:"type:decimal(10,2);default:0.0"`
	DiscountAmount   float64 `gorm:"type:decimal(10,2);default:0.0"`
	TaxRate          float64 `gorm:"type:decimal(5,2);default:0.0"`
	TaxAmount        float64 `gorm:"type:decimal(10,2);default:0.0"`
	Total            float64 `gorm:"type:decimal(10,2);not null"`

	Status             QuoteStatus `gorm:"type:varchar(20);default:'draft';index"`
	ConvertedInvoiceID *uuid.UUID  `gorm:"type:uuid;index"`

	SentAt *time.Time
	Notes  string

	Items []QuoteItem `gorm:"foreignKey:QuoteID"`

	gorm.Model
}

func (q *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return
}

func (q *Quote) IsEditable() bool {
	return q.Status == QuoteStatusDraft
}

// EffectiveStatus derives expiry lazily: a sent quote whose ValidUntil
// has passed reads back as expired without any intervening write. Two
// reads of the same row can therefore differ across midnight.
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status == QuoteStatusSent && q.ValidUntil != nil && q.ValidUntil.Before(now) {
		return QuoteStatusExpired
	}
	return q.Status
}

// QuoteItem mirrors InvoiceItem; conversion copies these verbatim into
// the created invoice.
type QuoteItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	QuoteID uuid.UUID `gorm:"type:uuid;index;not null"`

	ItemType    string    `gorm:"type:varchar(10);not null"`
	CatalogID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"not null"`
	Category    string
	ProductType string `gorm:"type:varchar(20)"`

	StylistID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UnitPrice    float64   `gorm:"type:decimal(10,2);not null"`
	Quantity     int       `gorm:"default:1"`
	LineDiscount float64   `gorm:"type:decimal(10,2);default:0.0"`
	LineTotal    float64   `gorm:"type:decimal(10,2);not null"`

	CommissionRate *float64 `gorm:"type:decimal(5,2)"`
}

func (it *QuoteItem) BeforeCreate(tx *gorm.DB) (err error) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return
}
