package database

import (
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// MemoryDSN opens a private in-memory database, handy for tests.
const MemoryDSN = ":memory:"

// NewSQLiteDB opens (and creates when missing) a sqlite database file.
func NewSQLiteDB(path string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, err
	}

	// sqlite serialises writers; a single connection avoids "database is locked".
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
