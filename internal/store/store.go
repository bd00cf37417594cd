// Package store is the credential store: durable Account records with
// transparent password hashing, email uniqueness, single-use challenge
// tokens, and the community-post cascade on account deletion.
package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateEmail is returned when creating an account whose
	// normalized email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

type Store struct {
	db *gorm.DB
}

// New wraps an existing gorm handle. Used by tests and by Open.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured database and runs migrations.
func Open(dbType, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&Account{}, &Post{})
}
