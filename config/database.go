package config

import (
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "salondesk.db"
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_journal_mode=WAL"), &gorm.Config{})
	if err != nil {
		panic("Failed to connect database")
	}

	// SQLite serializes writers; a single open connection avoids
	// SQLITE_BUSY under concurrent requests.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db
}
