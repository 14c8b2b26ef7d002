package service

import (
	"time"

	"go.uber.org/zap"

	"evsys/event-api/internal/verification"
)

const staleFcmTokenAge = 90 * 24 * time.Hour

// VerificationCleanup periodically sweeps expired verification codes.
func VerificationCleanup(t time.Duration, ledger *verification.Ledger) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Verification cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			n, err := ledger.DeleteExpired(time.Now())
			if err != nil {
				zap.L().Error("Failed to sweep expired verification codes", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Swept expired verification codes", zap.Int64("deleted", n))
			}
		}
	}()
}

// FcmTokenCleanup periodically deletes push tokens unused for 90 days.
func FcmTokenCleanup(t time.Duration, notifications *Notifications) {
	ticker := time.NewTicker(t)

	zap.L().Debug("FCM token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			n, err := notifications.DeleteStale(staleFcmTokenAge)
			if err != nil {
				zap.L().Error("Failed to sweep stale FCM tokens", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Swept stale FCM tokens", zap.Int64("deleted", n))
			}
		}
	}()
}
