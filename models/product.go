package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product types: retail products are sold to the customer, service
// products are consumed during a treatment and carry their own
// commission default.
const (
	ProductTypeRetail          = "retail"
	ProductTypeServiceConsumed = "service_consumed"
)

type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name     string `gorm:"not null"`
	Category string `gorm:"default:'General'"`
	Type     string `gorm:"type:varchar(20);default:'retail'"`
	Price    float64 `gorm:"type:decimal(10,2);not null"`
	Cost     float64 `gorm:"type:decimal(10,2);default:0.0"`
	Stock    int     `gorm:"default:0"`

	CommissionRate *float64 `gorm:"type:decimal(5,2)"`

	IsActive bool `gorm:"default:true"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
