// Package constant holds cross-module constants such as casbin objects and
// actions. Keep values stable; they are referenced from seeded policies.
package constant

// Casbin objects.
const (
	PermIdentityMgmtUsers = "identity:mgmt:users"
	PermStudioArtworks    = "studio:artworks"
)

// Casbin actions.
const (
	PermActCreate = "create"
	PermActRead   = "read"
	PermActUpdate = "update"
	PermActDelete = "delete"
)
