// Package permission is the authorization layer for event systems. Every
// mutating or reading operation on an event system or its files is gated by
// an allow-list of roles per action, backed by the UserSystemPermission
// table.
package permission

import (
	"slices"

	"gorm.io/gorm"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
)

// Action names a gated operation on an event system.
type Action string

const (
	ActionRead       Action = "read"
	ActionUpload     Action = "upload"
	ActionRename     Action = "rename"
	ActionSelect     Action = "select"
	ActionDelete     Action = "delete"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

// allowed is the single source of truth for which roles may perform which
// action. Editors can read: a role that may write but not read would be
// incoherent.
var allowed = map[Action][]model.Role{
	ActionRead:       {model.RoleViewer, model.RoleEditor, model.RoleAdmin, model.RoleOwner},
	ActionUpload:     {model.RoleEditor, model.RoleAdmin, model.RoleOwner},
	ActionRename:     {model.RoleEditor, model.RoleAdmin, model.RoleOwner},
	ActionSelect:     {model.RoleAdmin, model.RoleOwner},
	ActionDelete:     {model.RoleAdmin, model.RoleOwner},
	ActionActivate:   {model.RoleAdmin, model.RoleOwner},
	ActionDeactivate: {model.RoleAdmin, model.RoleOwner},
}

// AllowedRoles returns the allow-list for an action.
func AllowedRoles(a Action) []model.Role {
	return allowed[a]
}

type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Check returns the role the user holds on the event system if that role is
// allowed to perform the action. A missing permission row and an
// insufficient role both fail with PermissionDenied.
func (r *Registry) Check(userID, eventSystemID string, action Action) (model.Role, error) {
	var perm model.UserSystemPermission

	err := r.db.
		Where("user_id = ? AND event_system_id = ?", userID, eventSystemID).
		First(&perm).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", apperr.New(apperr.PermissionDenied, "You do not have permission to perform this action")
		}

		return "", apperr.Wrap(apperr.Unexpected, "Failed to look up permissions", err)
	}

	if !slices.Contains(allowed[action], perm.Role) {
		return "", apperr.New(apperr.PermissionDenied, "You do not have permission to perform this action")
	}

	return perm.Role, nil
}

// GrantOwner assigns the Owner role. It is called exactly once per event
// system, at creation, for the creating user. No other path grants Owner.
func (r *Registry) GrantOwner(tx *gorm.DB, userID, eventSystemID string) error {
	if tx == nil {
		tx = r.db
	}

	err := tx.Create(&model.UserSystemPermission{
		UserID:        userID,
		EventSystemID: eventSystemID,
		Role:          model.RoleOwner,
	}).Error
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to grant owner permission", err)
	}

	return nil
}

// ListMembers returns all permission rows of an event system.
func (r *Registry) ListMembers(eventSystemID string) ([]model.UserSystemPermission, error) {
	var perms []model.UserSystemPermission

	err := r.db.
		Where("event_system_id = ?", eventSystemID).
		Find(&perms).
		Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to list members", err)
	}

	return perms, nil
}

// SystemsOf returns the IDs of every event system the user has a role on.
func (r *Registry) SystemsOf(userID string) ([]string, error) {
	var ids []string

	err := r.db.
		Model(model.UserSystemPermission{}).
		Where("user_id = ?", userID).
		Pluck("event_system_id", &ids).
		Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to list event systems", err)
	}

	return ids, nil
}
