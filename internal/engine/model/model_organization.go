package model

import "time"

// Organization is the tenant document. SoftDeletedAt and
// DeletionRequestId are set when a deletion request is confirmed and
// gate all access until undo or permanent removal.
type Organization struct {
	OrgId             string     `bson:"org_id" json:"orgId"`
	Name              string     `bson:"name" json:"name"`
	DisplayName       string     `bson:"display_name" json:"displayName"`
	Description       string     `bson:"description" json:"description"`
	OwnerUserId       string     `bson:"owner_user_id" json:"ownerUserId"`
	Status            int        `bson:"status" json:"status"`
	SoftDeletedAt     *time.Time `bson:"soft_deleted_at,omitempty" json:"softDeletedAt,omitempty"`
	DeletionRequestId string     `bson:"deletion_request_id,omitempty" json:"deletionRequestId,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updatedAt"`
}

func (Organization) CollectionName() string {
	return "t_organization"
}

// OrganizationStatus
const (
	OrgStatusInactive  = 0
	OrgStatusActive    = 1
	OrgStatusSuspended = 2
)
