// Package rbac decides which API actions a caller's role allows.
package rbac

type Role string
type Action string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

const (
	// ActionRender covers rendering, exporting, history and search.
	ActionRender Action = "render"
	// ActionEditValues covers writing a session's mention values.
	ActionEditValues Action = "edit-values"
	// ActionImport covers reloading contracts from the contracts directory.
	ActionImport Action = "import"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleEditor:
		return action == ActionRender || action == ActionEditValues
	case RoleViewer:
		return action == ActionRender
	default:
		return false
	}
}

// Normalize maps unknown or empty roles to viewer.
func Normalize(role string) Role {
	switch Role(role) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return Role(role)
	default:
		return RoleViewer
	}
}
