package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus is the lifecycle state of an invoice. Only a draft may
// be edited or deleted; finalize assigns the invoice number and freezes
// the line items.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusVoid      InvoiceStatus = "void"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusFinalized, InvoiceStatusSent,
		InvoiceStatusCancelled, InvoiceStatusVoid:
		return nil
	}
	return fmt.Errorf("invalid invoice status: %s", s)
}

// CanTransitionTo reports whether the status machine allows moving to
// next. Cancelled and void are terminal.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return next == InvoiceStatusFinalized || next == InvoiceStatusCancelled
	case InvoiceStatusFinalized:
		return next == InvoiceStatusSent || next == InvoiceStatusVoid
	case InvoiceStatusSent:
		return next == InvoiceStatusVoid
	}
	return false
}

// PaymentStatus is the payment sub-state, orthogonal to the lifecycle
// status. unpaid/partial/paid are derived from the payment ledger;
// refunded and written_off are set manually and are terminal.
type PaymentStatus string

const (
	PaymentStatusUnpaid     PaymentStatus = "unpaid"
	PaymentStatusPartial    PaymentStatus = "partial"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusWrittenOff PaymentStatus = "written_off"
)

func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid,
		PaymentStatusRefunded, PaymentStatusWrittenOff:
		return nil
	}
	return fmt.Errorf("invalid payment status: %s", s)
}

// DerivePaymentStatus maps cumulative payments against the total. A
// zero-value invoice stays unpaid until money actually moves.
func DerivePaymentStatus(total, amountPaid float64) PaymentStatus {
	switch {
	case total > 0 && amountPaid >= total:
		return PaymentStatusPaid
	case amountPaid > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// Discount types applicable at the invoice level. Loyalty points
// convert at 10 points = 1 currency unit.
const (
	DiscountTypeNone          = "none"
	DiscountTypePercentage    = "percentage"
	DiscountTypeFixed         = "fixed"
	DiscountTypeLoyaltyPoints = "loyalty_points"
)

// Line item types
const (
	ItemTypeService = "service"
	ItemTypeProduct = "product"
)

type Invoice struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_invoices_salon_number"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Empty until finalize; unique per salon once assigned. SQLite's
	// unique index ignores NULLs, so drafts store NULL here.
	InvoiceNumber *string `gorm:"uniqueIndex:idx_invoices_salon_number"`

	CustomerID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	StylistID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuoteID     *uuid.UUID `gorm:"type:uuid;index"` // set when converted from a quote
	ServiceDate time.Time  `gorm:"default:CURRENT_TIMESTAMP"`

	ServicesSubtotal float64 `gorm:"type:decimal(10,2);default:0.0"`
	ProductsSubtotal float64 `gorm:"type:decimal(10,2);default:0.0"`
	Subtotal         float64 `gorm:"type:decimal(10,2);not null"`
	DiscountType     string  `gorm:"type:varchar(20);default:'none'"`
	DiscountValue    float64 `gorm:"type:decimal(10,2);default:0.0"`
	DiscountAmount   float64 `gorm:"type:decimal(10,2);default:0.0"`
	TaxRate          float64 `gorm:"type:decimal(5,2);default:0.0"`
	TaxAmount        float64 `gorm:"type:decimal(10,2);default:0.0"`
	Total            float64 `gorm:"type:decimal(10,2);not null"`

	Status        InvoiceStatus `gorm:"type:varchar(20);default:'draft';index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'unpaid';index"`
	AmountPaid    float64       `gorm:"type:decimal(10,2);default:0.0"`
	AmountDue     float64       `gorm:"type:decimal(10,2);default:0.0"`

	CommissionTotal float64 `gorm:"type:decimal(10,2);default:0.0"`

	FinalizedAt *time.Time
	Notes       string

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID"`

	gorm.Model
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// IsEditable reports whether header and line items may still change.
func (i *Invoice) IsEditable() bool {
	return i.Status == InvoiceStatusDraft
}

// InvoiceItem snapshots the catalog item at invoice time so historical
// invoices stay stable when catalog prices change later.
type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	ItemType    string    `gorm:"type:varchar(10);not null"` // service | product
	CatalogID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"not null"`
	Category    string
	ProductType string `gorm:"type:varchar(20)"` // retail | service_consumed, products only

	StylistID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UnitPrice    float64   `gorm:"type:decimal(10,2);not null"`
	Quantity     int       `gorm:"default:1"`
	LineDiscount float64   `gorm:"type:decimal(10,2);default:0.0"`
	LineTotal    float64   `gorm:"type:decimal(10,2);not null"`

	// CommissionRate is the explicit per-line override; the resolved
	// rate records what the hierarchy actually settled on.
	CommissionRate         *float64 `gorm:"type:decimal(5,2)"`
	ResolvedCommissionRate float64  `gorm:"type:decimal(5,2);default:0.0"`
	CommissionAmount       float64  `gorm:"type:decimal(10,2);default:0.0"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return
}

// Payment methods
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodOther        = "other"
)

// Payment is one append-only ledger entry against an invoice.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID   uuid.UUID `gorm:"type:uuid;index;not null"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	Amount    float64   `gorm:"type:decimal(10,2);not null"`
	Method    string    `gorm:"type:varchar(20);not null"`
	Reference string
	PaidAt    time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
