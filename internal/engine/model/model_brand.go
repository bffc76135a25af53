package model

import "time"

// Brand is a brand document scoped to one organization. Events and
// live scenes hang off brands; membership brand grants reference
// these ids.
type Brand struct {
	BrandId   string    `bson:"brand_id" json:"brandId"`
	OrgId     string    `bson:"org_id" json:"orgId"`
	Name      string    `bson:"name" json:"name"`
	Logo      string    `bson:"logo" json:"logo"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (Brand) CollectionName() string {
	return "t_brand"
}
