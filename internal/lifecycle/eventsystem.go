// Package lifecycle holds the state transitions of event systems and their
// files. Every operation first consults the permission registry and returns
// a typed error kind on failure, so callers never have to guess what went
// wrong.
package lifecycle

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
	"evsys/event-api/internal/permission"
)

type EventSystems struct {
	db    *gorm.DB
	perms *permission.Registry
}

func NewEventSystems(db *gorm.DB, perms *permission.Registry) *EventSystems {
	return &EventSystems{db: db, perms: perms}
}

// Create makes a new active event system and grants the creator the Owner
// role in the same transaction. This is the only path that grants Owner.
func (s *EventSystems) Create(userID, name string) (*model.EventSystem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.New(apperr.Validation, "Event system name can't be empty")
	}

	es := model.EventSystem{
		ID:     uuid.NewString(),
		Name:   name,
		Status: model.EventStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&es).Error; err != nil {
			return apperr.Wrap(apperr.Unexpected, "Failed to create event system", err)
		}

		return s.perms.GrantOwner(tx, userID, es.ID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Debug("Event system created",
		zap.String("id", es.ID),
		zap.String("owner", userID))

	return &es, nil
}

// Get returns an event system the user may read.
func (s *EventSystems) Get(userID, eventSystemID string) (*model.EventSystem, error) {
	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionRead); err != nil {
		return nil, err
	}

	return s.fetch(eventSystemID)
}

// List returns every event system the user holds any role on.
func (s *EventSystems) List(userID string) ([]model.EventSystem, error) {
	ids, err := s.perms.SystemsOf(userID)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []model.EventSystem{}, nil
	}

	var systems []model.EventSystem
	err = s.db.Where("id IN ?", ids).Find(&systems).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to list event systems", err)
	}

	return systems, nil
}

// Rename changes the display name. Requires an editing role.
func (s *EventSystems) Rename(userID, eventSystemID, newName string) (*model.EventSystem, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, apperr.New(apperr.Validation, "Event system name can't be empty")
	}

	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionRename); err != nil {
		return nil, err
	}

	es, err := s.fetch(eventSystemID)
	if err != nil {
		return nil, err
	}

	es.Name = newName

	if err := s.db.Save(es).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to rename event system", err)
	}

	return es, nil
}

// UpdateStatus flips an event system between Active and Inactive. The
// transition is explicit: moving to the status it already has fails with
// InvalidState instead of silently succeeding.
func (s *EventSystems) UpdateStatus(userID, eventSystemID string, status model.EventStatus) (*model.EventSystem, error) {
	if !status.Valid() {
		return nil, apperr.New(apperr.Validation, "Status must be Active or Inactive")
	}

	action := permission.ActionActivate
	if status == model.EventStatusInactive {
		action = permission.ActionDeactivate
	}

	if _, err := s.perms.Check(userID, eventSystemID, action); err != nil {
		return nil, err
	}

	es, err := s.fetch(eventSystemID)
	if err != nil {
		return nil, err
	}

	if es.Status == status {
		return nil, apperr.New(apperr.InvalidState, "Event system is already "+string(status))
	}

	es.Status = status

	if err := s.db.Save(es).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to update event system status", err)
	}

	zap.L().Info("Event system status changed",
		zap.String("id", es.ID),
		zap.String("status", string(status)))

	return es, nil
}

func (s *EventSystems) fetch(eventSystemID string) (*model.EventSystem, error) {
	var es model.EventSystem

	err := s.db.Where("id = ?", eventSystemID).First(&es).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Event system not found")
		}

		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch event system", err)
	}

	return &es, nil
}
