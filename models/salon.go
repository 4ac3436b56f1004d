package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

type Salon struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"not null"`
	Address      string
	Phone        string
	WorkingHours JSONB  `gorm:"type:jsonb;default:'{}'"`
	CurrencyCode string `gorm:"type:varchar(3);default:'ZAR'"`

	// Billing settings
	TaxRegistered bool    `gorm:"default:false"`
	TaxRate       float64 `gorm:"type:decimal(5,2);default:15.0"` // percentage
	InvoicePrefix string  `gorm:"type:varchar(10);default:'INV'"`
	QuotePrefix   string  `gorm:"type:varchar(10);default:'QUO'"`

	// System default commission rates (percentage), used when neither the
	// line, the catalog item nor the stylist carries one.
	ServiceCommissionRate        float64 `gorm:"type:decimal(5,2);default:10.0"`
	ProductCommissionRate        float64 `gorm:"type:decimal(5,2);default:5.0"`
	ServiceProductCommissionRate float64 `gorm:"type:decimal(5,2);default:2.0"`

	PaymentReminders     bool `gorm:"default:true"`
	BirthdayReminders    bool `gorm:"default:true"`
	AnniversaryReminders bool `gorm:"default:true"`

	Users     []User     `gorm:"foreignKey:SalonID"`
	Customers []Customer `gorm:"foreignKey:SalonID"`
	Stylists  []Stylist  `gorm:"foreignKey:SalonID"`
	Services  []Service  `gorm:"foreignKey:SalonID"`
	Products  []Product  `gorm:"foreignKey:SalonID"`
	Invoices  []Invoice  `gorm:"foreignKey:SalonID"`
	Quotes    []Quote    `gorm:"foreignKey:SalonID"`
	Bookings  []Booking  `gorm:"foreignKey:SalonID"`
}

// Custom JSONB type for working hours
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &j)
	case string:
		return json.Unmarshal([]byte(v), &j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}
