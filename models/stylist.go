package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Stylist struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name      string `gorm:"not null"`
	Phone     string
	Email     string
	Specialty string

	// Default commission percentage for this stylist; nil falls through
	// to the salon defaults.
	CommissionRate *float64 `gorm:"type:decimal(5,2)"`

	IsActive bool `gorm:"default:true"`

	Commissions []Commission `gorm:"foreignKey:StylistID"`

	gorm.Model
}

func (s *Stylist) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
