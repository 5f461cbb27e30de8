package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryAction identifies the workflow action recorded in an audit entry
type HistoryAction string

const (
	HistoryActionSubmitted     HistoryAction = "submitted"
	HistoryActionLinesDecided  HistoryAction = "lines_decided"
	HistoryActionApproved      HistoryAction = "approved"
	HistoryActionRejected      HistoryAction = "rejected"
	HistoryActionCancelled     HistoryAction = "cancelled"
	HistoryActionLineCancelled HistoryAction = "line_cancelled"
	HistoryActionOrdered       HistoryAction = "ordered"
	HistoryActionDuplicated    HistoryAction = "duplicated"
)

// ApprovalHistoryEntry is an immutable audit record of a workflow action.
// Generated order and backorder references are attached after the
// side-effect steps run; nothing else changes after creation.
type ApprovalHistoryEntry struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	BrandID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ActorID           uuid.UUID       `gorm:"type:uuid;not null"`
	ActorName         string          `gorm:"type:varchar(100)"`
	Action            HistoryAction   `gorm:"type:varchar(30);not null"`
	Comments          string          `gorm:"type:varchar(1000)"`
	AffectedLineIDs   pq.StringArray  `gorm:"type:text[]"`
	OverrideApplied   bool            `gorm:"not null;default:false"`
	GeneratedOrderIDs pq.StringArray  `gorm:"type:text[]"`
	BackorderIDs      pq.StringArray  `gorm:"type:text[]"`
	CreatedAt         time.Time       `gorm:"index"`
}

// TableName returns the table name for GORM
func (ApprovalHistoryEntry) TableName() string {
	return "approval_history"
}

// NewApprovalHistoryEntry creates an audit entry for a workflow action
func NewApprovalHistoryEntry(brandID, orderID, actorID uuid.UUID, actorName string, action HistoryAction, comments string) *ApprovalHistoryEntry {
	return &ApprovalHistoryEntry{
		ID:        uuid.New(),
		BrandID:   brandID,
		OrderID:   orderID,
		ActorID:   actorID,
		ActorName: actorName,
		Action:    action,
		Comments:  comments,
		CreatedAt: time.Now(),
	}
}

// WithAffectedLines records which lines the action touched
func (h *ApprovalHistoryEntry) WithAffectedLines(lineIDs []uuid.UUID, overrideApplied bool) *ApprovalHistoryEntry {
	ids := make(pq.StringArray, 0, len(lineIDs))
	for _, id := range lineIDs {
		ids = append(ids, id.String())
	}
	h.AffectedLineIDs = ids
	h.OverrideApplied = overrideApplied
	return h
}

// AttachGeneratedRefs adds fulfillment order and backorder references
// produced by the side-effect steps that followed the recorded action
func (h *ApprovalHistoryEntry) AttachGeneratedRefs(orderIDs, backorderIDs []uuid.UUID) {
	for _, id := range orderIDs {
		h.GeneratedOrderIDs = append(h.GeneratedOrderIDs, id.String())
	}
	for _, id := range backorderIDs {
		h.BackorderIDs = append(h.BackorderIDs, id.String())
	}
}
