// Package token implements JWT session issuance, refresh, resolution and
// revocation. A user has at most one tracked token pair server-side; each
// issue overwrites the previous row.
package token

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
	"evsys/event-api/pkg/security"
)

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Issuer struct {
	db     *gorm.DB
	signer *security.Signer
	now    func() time.Time
}

func NewIssuer(db *gorm.DB, signer *security.Signer) *Issuer {
	return &Issuer{db: db, signer: signer, now: time.Now}
}

// Issue creates a fresh access/refresh pair for the user and persists it as
// their sole tracked session.
func (i *Issuer) Issue(userID string) (*Pair, error) {
	now := i.now()

	access, err := i.signer.Sign(userID, security.TokenKindAccess, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to sign access token", err)
	}

	refresh, err := i.signer.Sign(userID, security.TokenKindRefresh, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to sign refresh token", err)
	}

	rec := model.UserToken{
		UserID:  userID,
		Access:  access,
		Refresh: refresh,
	}

	err = i.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&rec).
		Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to store token pair", err)
	}

	return &Pair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token, re-checks that its user still exists
// and isn't deleted, then issues a new pair. Access tokens are rejected
// here; the token kind is part of the claims, not guessed by fallback.
func (i *Issuer) Refresh(refreshToken string) (*Pair, error) {
	userID, err := i.signer.Parse(refreshToken, security.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	if _, err := i.lookupUser(userID); err != nil {
		return nil, err
	}

	return i.Issue(userID)
}

// Resolve returns the user behind an access token. Refresh tokens do not
// authenticate requests.
func (i *Issuer) Resolve(accessToken string) (*model.User, error) {
	userID, err := i.signer.Parse(accessToken, security.TokenKindAccess)
	if err != nil {
		return nil, err
	}

	return i.lookupUser(userID)
}

// Revoke drops the persisted pair. A signed token a client still holds
// stays verifiable until it expires, which is why access TTLs are short.
func (i *Issuer) Revoke(userID string) error {
	err := i.db.
		Where("user_id = ?", userID).
		Delete(model.UserToken{}).
		Error
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to revoke tokens", err)
	}

	return nil
}

func (i *Issuer) lookupUser(userID string) (*model.User, error) {
	var user model.User

	err := i.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.InvalidToken, "User no longer exists")
		}

		return nil, apperr.Wrap(apperr.Unexpected, "Failed to look up user", err)
	}

	if user.IsDeleted {
		return nil, apperr.New(apperr.InvalidToken, "User no longer exists")
	}

	return &user, nil
}
