package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	Name  string `gorm:"not null"`
	Phone string `gorm:"not null;uniqueIndex"`
	Email string
	Notes string

	// Visit stats are incremented exactly once per completed appointment,
	// always through atomic updates (see services.BookingService).
	TotalVisits   int     `gorm:"default:0"`
	TotalSpent    float64 `gorm:"type:decimal(10,2);default:0.0"`
	LoyaltyPoints int     `gorm:"default:0"`
	LastVisit     *time.Time

	IsActive bool `gorm:"default:true"`

	Appointments []Appointment `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
