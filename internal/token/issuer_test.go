package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
	"evsys/event-api/pkg/security"
)

func testIssuer(t *testing.T) (*Issuer, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.UserToken{}))

	signer, err := security.NewSigner("test-secret", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	return NewIssuer(db, signer), db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	require.NoError(t, db.Create(&model.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
		IsVerified:   true,
	}).Error)
}

func TestIssueAndResolve(t *testing.T) {
	issuer, db := testIssuer(t)
	seedUser(t, db, "u1")

	pair, err := issuer.Issue("u1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	user, err := issuer.Resolve(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestResolveRejectsRefreshToken(t *testing.T) {
	issuer, db := testIssuer(t)
	seedUser(t, db, "u1")

	pair, err := issuer.Issue("u1")
	require.NoError(t, err)

	_, err = issuer.Resolve(pair.Refresh)
	assert.True(t, apperr.Is(err, apperr.InvalidToken))
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	issuer, db := testIssuer(t)
	seedUser(t, db, "u1")

	pair, err := issuer.Issue("u1")
	require.NoError(t, err)

	_, err = issuer.Refresh(pair.Access)
	assert.True(t, apperr.Is(err, apperr.InvalidToken))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	issuer, db := testIssuer(t)
	seedUser(t, db, "u1")

	pair, err := issuer.Issue("u1")
	require.NoError(t, err)

	fresh, err := issuer.Refresh(pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Access)
	assert.NotEmpty(t, fresh.Refresh)

	// A user holds exactly one tracked pair
	var count int64
	require.NoError(t, db.Model(model.UserToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	issuer, db := testIssuer(t)
	seedUser(t, db, "u1")

	pair, err := issuer.Issue("u1")
	require.NoError(t, err)

	require.NoError(t, db.Model(model.User{}).Where("id = ?", "u1").Update("is_deleted", true).Error)

	_, err = issuer.Refresh(pair.Refresh)
	assert.True(t, apperr.Is(err, apperr.InvalidToken))
}

func TestResolveRejectsGarbage(t *testing.T) {
	issuer, _ := testIssuer(t)

	_, err := issuer.Resolve("not-a-token")
	assert.True(t, apperr.Is(err, apperr.InvalidToken))
}

func TestRevoke(t *testing.T) {
	issuer, db := testIssuer(t)
	seedUser(t, db, "u1")

	_, err := issuer.Issue("u1")
	require.NoError(t, err)

	require.NoError(t, issuer.Revoke("u1"))

	var count int64
	require.NoError(t, db.Model(model.UserToken{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
