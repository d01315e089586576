package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	Name           string `gorm:"not null"`
	Phone          string
	Email          string
	Specialization string `gorm:"default:'General'"`

	// Incremented when an assigned appointment transitions to completed.
	CompletedAppointments int `gorm:"default:0"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (e *Employee) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
