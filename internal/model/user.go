package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

// User is an account that creates or decides purchase requests. The role
// column feeds both route gating and the engine's role-at-stage check.
type User struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Username string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email    string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string        `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	Role     workflow.Role `gorm:"type:varchar(32);not null" json:"role"`

	// AreaID is the organizational area the user belongs to; set for
	// requesters and area leads, optional for company-wide roles.
	AreaID *uuid.UUID `gorm:"type:uuid;index" json:"area_id"`
	Area   *Area      `gorm:"foreignKey:AreaID" json:"area,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the id so inserts behave the same on every database
// the suite runs against.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
