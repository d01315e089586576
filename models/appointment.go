package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses. The lifecycle is pending -> confirmed -> in-progress
// -> completed; cancelled and no-show are reachable from any non-terminal
// status.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

// Discount types. At most one discount applies per appointment.
const (
	DiscountNone    = "none"
	DiscountLoyalty = "loyalty"
	DiscountPromo   = "promo"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	// Snapshot of the customer at booking time, kept for display stability.
	CustomerName  string `gorm:"not null"`
	CustomerPhone string `gorm:"not null"`

	EmployeeID *uuid.UUID `gorm:"type:uuid;index"`

	Date string `gorm:"type:varchar(10);index;not null"` // "YYYY-MM-DD"
	Time string `gorm:"type:varchar(5);not null"`        // "HH:MM"

	Status string `gorm:"type:varchar(20);default:'pending';index"`

	Services []AppointmentService `gorm:"foreignKey:AppointmentID"`

	TotalAmount   float64 `gorm:"type:decimal(10,2);not null"`
	TotalDuration int     // in minutes, informational only

	DiscountType   string  `gorm:"type:varchar(20);default:'none'"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);default:0.0"`
	DiscountReason string

	IsBilled bool `gorm:"default:false"`
	Notes    string

	gorm.Model
}

// AppointmentService is a line item frozen at booking time. Later catalog
// price changes never reprice an existing appointment.
type AppointmentService struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceName   string    `gorm:"not null"`
	Price         float64   `gorm:"type:decimal(10,2);not null"`
	Duration      int
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (s *AppointmentService) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// IsTerminalStatus reports whether status ends the appointment lifecycle.
// Terminal appointments never block a time slot.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled || status == StatusNoShow
}

// IsValidStatus reports whether status is one of the known lifecycle values.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
