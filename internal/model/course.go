package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is owned by the course catalogue; the identity core only reads it
// to guard teacher deletion and to report aggregate counts.
type Course struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Code      string    `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	TeacherID uuid.UUID `json:"teacherId" gorm:"type:char(36);not null;index"` // instructor's Account id
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
