package perm

// Organization roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// rolePermissions expands a role to its permission set. The owner
// carries the wildcard; everything else is enumerated.
var rolePermissions = map[string][]string{
	RoleOwner: {"*"},
	RoleAdmin: {
		"org:read", "org:update",
		"member:read", "member:invite", "member:update", "member:remove",
		"brand:read", "brand:create", "brand:update", "brand:delete",
		"event:read", "event:create", "event:update", "event:delete",
		"scene:view", "scene:direct",
	},
	RoleEditor: {
		"org:read",
		"member:read",
		"brand:read",
		"event:read", "event:create", "event:update",
		"scene:view", "scene:direct",
	},
	RoleViewer: {
		"org:read",
		"brand:read",
		"event:read",
		"scene:view",
	},
}

// RolePermissions returns the permission set for a role, nil for an
// unknown role.
func RolePermissions(role string) []string {
	return rolePermissions[role]
}

// EncodeRole expands a role and encodes each permission. An unknown
// role yields an empty set, never nil, so the serialized claims keep
// the same shape for every org entry.
func EncodeRole(role string) []string {
	perms := rolePermissions[role]
	encoded := make([]string, 0, len(perms))
	for _, p := range perms {
		encoded = append(encoded, Encode(p))
	}
	return encoded
}
