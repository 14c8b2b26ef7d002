// Package verification implements the one-time email code ledger used for
// registration and password resets. Each email holds at most one active
// code with a fixed attempt budget; the code is burned on success, on
// exhaustion and on expiry so it can never be matched twice.
package verification

import (
	"crypto/rand"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
)

const (
	CodeLength = 6
	CodeTTL    = time.Hour
	MaxTries   = 3

	codeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// NewLedgerWithClock is used by tests to control expiry.
func NewLedgerWithClock(db *gorm.DB, now func() time.Time) *Ledger {
	return &Ledger{db: db, now: now}
}

// Issue creates a fresh code for the email and returns it. Any previous code
// is overwritten, the attempt budget is reset and the expiry window restarts.
func (l *Ledger) Issue(email string) (string, error) {
	code, err := generateCode(CodeLength)
	if err != nil {
		return "", apperr.Wrap(apperr.Unexpected, "Failed to generate verification code", err)
	}

	now := l.now()
	rec := model.EmailVerification{
		Email:     email,
		Code:      &code,
		IssuedAt:  &now,
		TriesLeft: MaxTries,
	}

	err = l.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			UpdateAll: true,
		}).
		Create(&rec).
		Error
	if err != nil {
		return "", apperr.Wrap(apperr.Unexpected, "Failed to store verification code", err)
	}

	return code, nil
}

// Check verifies a candidate code. Outcomes:
//   - no row, burned code or exhausted budget -> NotFound
//   - past IssuedAt + CodeTTL                 -> Expired (code is burned)
//   - mismatch                                -> Validation, one try consumed,
//     burned when the budget hits zero
//   - match                                   -> nil, code is burned (single use)
func (l *Ledger) Check(email, candidate string) error {
	var rec model.EmailVerification

	err := l.db.Where("email = ?", email).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.New(apperr.NotFound, "No active verification code for this email")
		}

		return apperr.Wrap(apperr.Unexpected, "Failed to look up verification code", err)
	}

	if rec.Code == nil || rec.IssuedAt == nil || rec.TriesLeft <= 0 {
		return apperr.New(apperr.NotFound, "No active verification code for this email")
	}

	if l.now().After(rec.IssuedAt.Add(CodeTTL)) {
		// An expired code must not keep eating attempts
		if err := l.burn(email); err != nil {
			return err
		}

		return apperr.New(apperr.Expired, "Verification code expired")
	}

	if *rec.Code != candidate {
		rec.TriesLeft--

		if rec.TriesLeft <= 0 {
			if err := l.burn(email); err != nil {
				return err
			}

			zap.L().Debug("Verification code burned after exhausting tries", zap.String("email", email))
		} else {
			err := l.db.
				Model(model.EmailVerification{}).
				Where("email = ?", email).
				Update("tries_left", rec.TriesLeft).
				Error
			if err != nil {
				return apperr.Wrap(apperr.Unexpected, "Failed to update verification code", err)
			}
		}

		return apperr.New(apperr.Validation, "Invalid verification code")
	}

	return l.burn(email)
}

// DeleteExpired removes all codes issued longer than CodeTTL before now.
// Called by the periodic cleanup job.
func (l *Ledger) DeleteExpired(now time.Time) (int64, error) {
	r := l.db.
		Where("issued_at < ?", now.Add(-CodeTTL)).
		Delete(model.EmailVerification{})
	if r.Error != nil {
		return 0, apperr.Wrap(apperr.Unexpected, "Failed to delete expired verification codes", r.Error)
	}

	return r.RowsAffected, nil
}

func (l *Ledger) burn(email string) error {
	err := l.db.
		Model(model.EmailVerification{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"code":       nil,
			"issued_at":  nil,
			"tries_left": 0,
		}).
		Error
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to burn verification code", err)
	}

	return nil
}

func generateCode(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		b[i] = codeCharset[idx.Int64()]
	}

	return string(b), nil
}
