package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

// ApprovalEvent is one immutable entry in the approval ledger. An event is
// created exactly once per stage transition, inside the same transaction as
// the request mutation it records, and is never updated or deleted. The
// ordered events of a request form its complete audit trail.
type ApprovalEvent struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	RequestID uint `gorm:"not null;index" json:"request_id"`

	// StageOrdinal is 0 for the submission event and 1..3 for decisions at
	// the area-lead, executive and treasury stages respectively.
	StageOrdinal int `gorm:"not null" json:"stage_ordinal"`

	Action workflow.Action `gorm:"type:varchar(16);not null;check:chk_approval_events_action,action IN ('SUBMIT','APPROVE','REJECT')" json:"action"`

	// Comment is required for rejections and optional otherwise.
	Comment string `gorm:"type:text" json:"comment"`

	ActorID uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_id"`
	Actor   *User     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	ResultingStage workflow.Stage `gorm:"type:varchar(32);not null" json:"resulting_stage"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
