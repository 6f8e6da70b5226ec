package editrequest

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an edit request. Pending is the only
// initial state; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision is a reviewer's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// EditRequest maps to the edit_request table. ProposedChanges is immutable
// after creation, so the diff shown to a reviewer exactly matches what an
// approval applies. Requests are never deleted; resolved rows remain as an
// audit trail.
type EditRequest struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	TargetRecordID       uuid.UUID  `db:"target_record_id" json:"target_record_id"`
	OriginOrganizationID uuid.UUID  `db:"origin_organization_id" json:"origin_organization_id"`
	ProposedChanges      Changes    `db:"proposed_changes" json:"proposed_changes"`
	Status               Status     `db:"status" json:"status"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt           *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy           *string    `db:"resolved_by" json:"resolved_by,omitempty"`
}
