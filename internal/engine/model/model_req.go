package model

// Request bodies for the engine API.

type CreateOrganizationReq struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

type CreateBrandReq struct {
	Name string `json:"name"`
}

type InviteMemberReq struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AddMemberReq struct {
	UserId             string   `json:"userId"`
	Role               string   `json:"role"`
	BrandAccess        []string `json:"brandAccess"`
	AutoGrantNewBrands bool     `json:"autoGrantNewBrands"`
}

type UpdateRoleReq struct {
	Role string `json:"role"`
}

type UpdateBrandAccessReq struct {
	BrandAccess        []string `json:"brandAccess"`
	AutoGrantNewBrands bool     `json:"autoGrantNewBrands"`
}
