package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Area is an organizational unit that owns purchase requests. Requests carry
// an area reference only; the area never owns their lifecycle.
type Area struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Code string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Area) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Project is an optional cost-tracking reference a request may point at.
type Project struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string     `gorm:"type:varchar(255);not null" json:"name"`
	Code   string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	AreaID *uuid.UUID `gorm:"type:uuid;index" json:"area_id"`
	Area   *Area      `gorm:"foreignKey:AreaID" json:"area,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
