package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionStatus tracks payout state separately from the invoice's
// payment status: a commission only becomes payable once the invoice
// itself is paid.
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusPaid     CommissionStatus = "paid"
)

func (s CommissionStatus) Validate() error {
	switch s {
	case CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid:
		return nil
	}
	return fmt.Errorf("invalid commission status: %s", s)
}

// Commission is the per-invoice, per-stylist payout record cut at
// finalize time, split between services and products.
type Commission struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`
	StylistID uuid.UUID `gorm:"type:uuid;index;not null"`

	ServicesCommission float64 `gorm:"type:decimal(10,2);default:0.0"`
	ProductsCommission float64 `gorm:"type:decimal(10,2);default:0.0"`
	TotalCommission    float64 `gorm:"type:decimal(10,2);not null"`

	Status           CommissionStatus `gorm:"type:varchar(20);default:'pending';index"`
	PaymentReference string
	PaidAt           *time.Time

	EarnedAt time.Time `gorm:"index"`

	Invoice Invoice `gorm:"foreignKey:InvoiceID"`
	Stylist Stylist `gorm:"foreignKey:StylistID"`
}

func (c *Commission) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
