package model

import "time"

// User is the user profile document. The materialized authorization
// claims and the claims version counter live on this document; the
// version is bumped in a separate write after every claims rewrite.
type User struct {
	UserId        string              `bson:"user_id" json:"userId"`
	Username      string              `bson:"username" json:"username"`
	Email         string              `bson:"email" json:"email"`
	ClaimsVersion int64               `bson:"claims_version" json:"claimsVersion"`
	AuthClaims    *AuthorizationToken `bson:"auth_claims,omitempty" json:"authClaims,omitempty"`
	AuthToken     string              `bson:"auth_token,omitempty" json:"authToken,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updatedAt"`
}

func (User) CollectionName() string {
	return "t_user"
}

// OrgGrant is the per-organization slice of an authorization token:
// encoded permission tokens and granted brand ids.
type OrgGrant struct {
	Permissions []string `bson:"p" json:"p"`
	Brands      []string `bson:"b" json:"b"`
}

// AuthorizationToken is the compact, size-bounded claims payload.
// Rebuilt wholesale on every relevant membership mutation, never
// partially patched.
type AuthorizationToken struct {
	Orgs map[string]OrgGrant `bson:"orgs" json:"orgs"`
	CV   int64               `bson:"cv" json:"cv"`
}

// MaxClaimsBytes is the hard cap on the serialized claims payload.
// Above it the payload degrades to empty orgs rather than being left
// stale or unset.
const MaxClaimsBytes = 1000

// WarnClaimsBytes is the early-warning threshold below the hard cap.
const WarnClaimsBytes = 950
