package model

// Role is the permission level a user holds on an event system,
// ordered Viewer < Editor < Admin < Owner.
type Role string

const (
	RoleViewer Role = "Viewer"
	RoleEditor Role = "Editor"
	RoleAdmin  Role = "Admin"
	RoleOwner  Role = "Owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// UserSystemPermission is the authorization source of truth: one row per
// (user, event system) pair. Event system membership is derived from it.
type UserSystemPermission struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	UserID        string `gorm:"uniqueIndex:idx_user_system;not null"`
	EventSystemID string `gorm:"uniqueIndex:idx_user_system;not null"`
	Role          Role   `gorm:"size:10;default:Viewer"`
}
