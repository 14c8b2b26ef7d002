package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
	"evsys/event-api/internal/permission"
)

func testEventSystems(t *testing.T) (*EventSystems, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.EventSystem{},
		&model.FileReference{},
		&model.UserSystemPermission{},
	))

	perms := permission.NewRegistry(db)

	return NewEventSystems(db, perms), db
}

func TestCreateGrantsOwner(t *testing.T) {
	svc, db := testEventSystems(t)

	es, err := svc.Create("u1", "Production line A")
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusActive, es.Status)

	var perms []model.UserSystemPermission
	require.NoError(t, db.Find(&perms).Error)
	require.Len(t, perms, 1)
	assert.Equal(t, "u1", perms[0].UserID)
	assert.Equal(t, es.ID, perms[0].EventSystemID)
	assert.Equal(t, model.RoleOwner, perms[0].Role)
}

func TestCreateEmptyName(t *testing.T) {
	svc, _ := testEventSystems(t)

	_, err := svc.Create("u1", "   ")
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestGetRequiresMembership(t *testing.T) {
	svc, _ := testEventSystems(t)

	es, err := svc.Create("u1", "Line A")
	require.NoError(t, err)

	got, err := svc.Get("u1", es.ID)
	require.NoError(t, err)
	assert.Equal(t, es.ID, got.ID)

	_, err = svc.Get("stranger", es.ID)
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))
}

func TestGetMissing(t *testing.T) {
	svc, db := testEventSystems(t)

	// Membership row without a backing event system
	require.NoError(t, db.Create(&model.UserSystemPermission{
		UserID:        "u1",
		EventSystemID: "ghost",
		Role:          model.RoleOwner,
	}).Error)

	_, err := svc.Get("u1", "ghost")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestListOnlyOwnSystems(t *testing.T) {
	svc, _ := testEventSystems(t)

	a, err := svc.Create("u1", "Line A")
	require.NoError(t, err)
	_, err = svc.Create("u2", "Line B")
	require.NoError(t, err)

	systems, err := svc.List("u1")
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, a.ID, systems[0].ID)

	systems, err = svc.List("nobody")
	require.NoError(t, err)
	assert.Empty(t, systems)
}

func TestRename(t *testing.T) {
	svc, _ := testEventSystems(t)

	es, err := svc.Create("u1", "Line A")
	require.NoError(t, err)

	renamed, err := svc.Rename("u1", es.ID, "Line B")
	require.NoError(t, err)
	assert.Equal(t, "Line B", renamed.Name)

	_, err = svc.Rename("stranger", es.ID, "Nope")
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))
}

func TestUpdateStatus(t *testing.T) {
	svc, db := testEventSystems(t)

	es, err := svc.Create("u1", "Line A")
	require.NoError(t, err)

	// Activating an already active system is rejected, not a silent no-op
	_, err = svc.UpdateStatus("u1", es.ID, model.EventStatusActive)
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	updated, err := svc.UpdateStatus("u1", es.ID, model.EventStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusInactive, updated.Status)

	_, err = svc.UpdateStatus("u1", es.ID, model.EventStatusInactive)
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	_, err = svc.UpdateStatus("u1", es.ID, "Broken")
	assert.True(t, apperr.Is(err, apperr.Validation))

	// A viewer can't flip the status
	require.NoError(t, db.Create(&model.UserSystemPermission{
		UserID:        "v1",
		EventSystemID: es.ID,
		Role:          model.RoleViewer,
	}).Error)

	_, err = svc.UpdateStatus("v1", es.ID, model.EventStatusActive)
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))
}
