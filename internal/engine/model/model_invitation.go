package model

import "time"

// OrganizationInvitation is a pending invite. Accepting it creates a
// membership; pending invitations are removed by the cleanup sweep
// when the organization is permanently deleted.
type OrganizationInvitation struct {
	InvitationId string    `bson:"invitation_id" json:"invitationId"`
	OrgId        string    `bson:"org_id" json:"orgId"`
	Email        string    `bson:"email" json:"email"`
	Role         string    `bson:"role" json:"role"`
	Token        string    `bson:"token" json:"token"`
	InvitedBy    string    `bson:"invited_by" json:"invitedBy"`
	Status       int       `bson:"status" json:"status"`
	ExpiresAt    time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

func (OrganizationInvitation) CollectionName() string {
	return "t_organization_invitation"
}

// InvitationStatus
const (
	InvitationStatusPending  = 0
	InvitationStatusAccepted = 1
	InvitationStatusRejected = 2
	InvitationStatusExpired  = 3
)
