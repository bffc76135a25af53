package model

import "time"

// DeletedOrganizationAudit is the append-only record written at the
// moment of permanent deletion. It lives in its own collection so it
// survives the removal of the organization it describes; it is the
// only remaining evidence of a deleted tenant.
type DeletedOrganizationAudit struct {
	RequestId        string       `bson:"request_id" json:"requestId"`
	OrgId            string       `bson:"org_id" json:"orgId"`
	OrgName          string       `bson:"org_name" json:"orgName"`
	RequestedBy      string       `bson:"requested_by" json:"requestedBy"`
	RequestedAt      time.Time    `bson:"requested_at" json:"requestedAt"`
	ConfirmedAt      *time.Time   `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt      time.Time    `bson:"completed_at" json:"completedAt"`
	MemberCount      int          `bson:"member_count" json:"memberCount"`
	BrandCount       int          `bson:"brand_count" json:"brandCount"`
	InvitationCount  int          `bson:"invitation_count" json:"invitationCount"`
	DeletedUserCount int          `bson:"deleted_user_count" json:"deletedUserCount"`
	AuditLog         []AuditEvent `bson:"audit_log" json:"auditLog"`
}

func (DeletedOrganizationAudit) CollectionName() string {
	return "t_deleted_organization_audit"
}
