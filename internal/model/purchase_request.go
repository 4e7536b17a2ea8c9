package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

// PurchaseRequest is an authorization-pending purchase routed through the
// amount-dependent approval chain. Stage changes happen only through the
// workflow service, which stamps the updating user and appends a ledger event
// in the same transaction. Requests are never physically deleted; retirement
// is the soft-deletion marker.
type PurchaseRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Justification string     `gorm:"type:text;not null" json:"justification"`
	ProjectID     *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project       *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AreaID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"area_id"`
	Area          *Area      `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Items         []LineItem `gorm:"foreignKey:RequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`

	// TotalAmount is derived as the sum of item subtotals at creation and is
	// never written independently afterwards.
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;check:chk_purchase_requests_total,total_amount >= 0" json:"total_amount"`

	Urgent      bool       `gorm:"not null;default:false" json:"urgent"`
	RequiredBy  *time.Time `json:"required_by"`
	RequesterID uuid.UUID  `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   *User      `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`

	CurrentStage workflow.Stage `gorm:"type:varchar(32);not null;default:'DRAFT';index;check:chk_purchase_requests_stage,current_stage IN ('DRAFT','PENDING_AREA_LEAD','PENDING_EXECUTIVE','PENDING_TREASURY','APPROVED','REJECTED','VOIDED','IN_PROGRESS','COMPLETED')" json:"current_stage"`
	UpdatedByID  *uuid.UUID     `gorm:"type:uuid" json:"updated_by_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ComputedTotal recomputes the request total from its items. It must always
// equal the stored TotalAmount for a request loaded with its items.
func (r *PurchaseRequest) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.ComputedSubtotal())
	}
	return total
}

// LineItem is one priced component of a purchase request. Items are written
// once with their request and never edited afterwards; they disappear only
// when their request is deleted.
type LineItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RequestID   uint   `gorm:"not null;index" json:"request_id"`
	Description string `gorm:"type:varchar(255);not null" json:"description"`

	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;check:chk_line_items_quantity,quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;check:chk_line_items_unit_price,unit_price >= 0" json:"unit_price"`

	// Subtotal is always quantity * unit price, derived at creation.
	Subtotal decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`

	BudgetCodeID *uuid.UUID  `gorm:"type:uuid;index" json:"budget_code_id"`
	BudgetCode   *BudgetCode `gorm:"foreignKey:BudgetCodeID" json:"budget_code,omitempty"`
	SupplierID   *uuid.UUID  `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier     *Supplier   `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ComputedSubtotal is the deterministic product of quantity and unit price.
func (i LineItem) ComputedSubtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}
