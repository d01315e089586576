package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Feedback struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  string     `gorm:"not null"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`

	Rating         int `gorm:"not null"` // 1-5
	ServiceQuality int
	Comment        string `gorm:"type:text"`

	IsPublished bool `gorm:"default:false"`

	gorm.Model
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
