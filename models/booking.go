package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

func (s BookingStatus) Validate() error {
	switch s {
	case BookingStatusScheduled, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return nil
	}
	return fmt.Errorf("invalid booking status: %s", s)
}

type Booking struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	StylistID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null"`

	StartTime time.Time `gorm:"index;not null"`
	Duration  int       // in minutes
	Status    BookingStatus `gorm:"type:varchar(20);default:'scheduled';index"`
	Notes     string

	Customer Customer `gorm:"foreignKey:CustomerID"`
	Stylist  Stylist  `gorm:"foreignKey:StylistID"`
	Service  Service  `gorm:"foreignKey:ServiceID"`

	gorm.Model
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
