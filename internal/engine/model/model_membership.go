package model

import "time"

// Membership links a user to an organization with a role and
// brand-scope grants. Mutated on invite-accept, role change,
// brand-access change and removal; every write triggers a claims
// rebuild for the user.
type Membership struct {
	OrgId              string    `bson:"org_id" json:"orgId"`
	UserId             string    `bson:"user_id" json:"userId"`
	Role               string    `bson:"role" json:"role"`
	BrandAccess        []string  `bson:"brand_access" json:"brandAccess"`
	AutoGrantNewBrands bool      `bson:"auto_grant_new_brands" json:"autoGrantNewBrands"`
	InvitedBy          string    `bson:"invited_by" json:"invitedBy"`
	Status             int       `bson:"status" json:"status"`
	CreatedAt          time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updatedAt"`
}

func (Membership) CollectionName() string {
	return "t_membership"
}

// MembershipStatus
const (
	MemberStatusPending  = 0
	MemberStatusActive   = 1
	MemberStatusDisabled = 2
)
