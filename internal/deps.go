package internal

import (
	"gorm.io/gorm"

	"evsys/event-api/internal/lifecycle"
	"evsys/event-api/internal/permission"
	"evsys/event-api/internal/service"
	"evsys/event-api/internal/storage"
	"evsys/event-api/internal/token"
	"evsys/event-api/internal/verification"
	"evsys/event-api/pkg/security"
)

// Deps carries everything the handlers need. Built once in api.NewRouter.
type Deps struct {
	DB            *gorm.DB
	Argon         *security.ArgonHash
	Signer        *security.Signer
	Tokens        *token.Issuer
	Ledger        *verification.Ledger
	Perms         *permission.Registry
	Events        *lifecycle.EventSystems
	Files         *lifecycle.Files
	Store         storage.Storage
	Mailer        *service.Mailer
	Notifications *service.Notifications
}
