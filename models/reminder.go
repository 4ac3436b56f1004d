package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder types
const (
	ReminderTypePaymentDue  = "payment_due"
	ReminderTypeBirthday    = "birthday"
	ReminderTypeAnniversary = "anniversary"
)

type ReminderTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Type     string    `gorm:"type:varchar(20);not null"`
	Message  string    `gorm:"type:text;not null"`
	IsActive bool      `gorm:"default:true"`
	gorm.Model
}

func (t *ReminderTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
