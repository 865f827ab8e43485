package database

import (
	"errors"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoTestDatabase is returned by OpenTestDB when TEST_DB_DSN is unset
var ErrNoTestDatabase = errors.New("TEST_DB_DSN not set")

// OpenTestDB connects to the PostgreSQL database named by TEST_DB_DSN, wipes
// every managed table and migrates it fresh. Integration tests skip when it
// returns ErrNoTestDatabase.
func OpenTestDB() (*gorm.DB, error) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		return nil, ErrNoTestDatabase
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	store := NewGORMStore(db)
	if err := store.Init(); err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(Models()))
	stmt := &gorm.Statement{DB: db}
	for _, m := range Models() {
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		if stmt.Schema.Table == "roles" {
			continue
		}
		tables = append(tables, stmt.Schema.Table)
	}
	if err := db.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error; err != nil {
		return nil, err
	}

	return db, nil
}
