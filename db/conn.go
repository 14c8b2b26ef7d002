// Package db opens the relational store and keeps the schema migrated
package db

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"evsys/event-api/internal/model"
	"evsys/event-api/pkg/util"
)

func New() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch viper.GetString("db.driver") {
	case "postgres":
		db, err = gorm.Open(postgres.Open(viper.GetString("db.dsn")))
	default:
		dsn := viper.GetString("db.dsn")

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, serr := os.Stat(dsn); serr != nil {
				if os.IsNotExist(serr) {
					return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
				}
			}
		}

		db, err = gorm.Open(sqlite.Open(dsn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(
		model.User{},
		model.EmailVerification{},
		model.UserToken{},
		model.EventSystem{},
		model.FileReference{},
		model.UserSystemPermission{},
		model.FcmToken{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
