package model

import "time"

// DeletionRequestStatus values. Transitions are one-directional
// except confirmed -> undone, which is only legal inside the undo
// window.
const (
	DeletionStatusRequested = "requested"
	DeletionStatusConfirmed = "confirmed"
	DeletionStatusUndone    = "undone"
	DeletionStatusCompleted = "completed"
)

// AuditEvent is one entry in a deletion request's chronological log.
type AuditEvent struct {
	At     time.Time `bson:"at" json:"at"`
	Event  string    `bson:"event" json:"event"`
	Actor  string    `bson:"actor,omitempty" json:"actor,omitempty"`
	Detail string    `bson:"detail,omitempty" json:"detail,omitempty"`
}

// DeletionRequest models an organization's path from "deletion
// requested" to "permanently removed", gated by single-use expiring
// tokens for confirmation and undo.
type DeletionRequest struct {
	RequestId           string       `bson:"request_id" json:"requestId"`
	OrgId               string       `bson:"org_id" json:"orgId"`
	RequestedBy         string       `bson:"requested_by" json:"requestedBy"`
	RequestedAt         time.Time    `bson:"requested_at" json:"requestedAt"`
	Status              string       `bson:"status" json:"status"`
	Token               string       `bson:"token,omitempty" json:"-"`
	TokenExpiresAt      time.Time    `bson:"token_expires_at,omitempty" json:"-"`
	UndoToken           string       `bson:"undo_token,omitempty" json:"-"`
	UndoExpiresAt       time.Time    `bson:"undo_expires_at,omitempty" json:"-"`
	ConfirmedAt         *time.Time   `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	ScheduledDeletionAt *time.Time   `bson:"scheduled_deletion_at,omitempty" json:"scheduledDeletionAt,omitempty"`
	CompletedAt         *time.Time   `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	AuditLog            []AuditEvent `bson:"audit_log" json:"auditLog"`
}

func (DeletionRequest) CollectionName() string {
	return "t_deletion_request"
}
