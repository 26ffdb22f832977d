package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vocaman_backend/internal/util"

	"gorm.io/gorm"
)

// Store runs units of work against the database with a bounded deadline.
// A deadline or a cancelled request surfaces as util.ErrStoreUnavailable and
// the surrounding transaction is rolled back.
type Store struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{DB: db, Timeout: timeout}
}

// Transaction runs fn inside a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.DB.WithContext(ctx).Transaction(fn)
	return mapStoreError(ctx, err)
}

// Read runs fn outside a transaction with the same deadline.
func (s *Store) Read(ctx context.Context, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	err := fn(s.DB.WithContext(ctx))
	return mapStoreError(ctx, err)
}

func mapStoreError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}
	return err
}

// IsNotFound reports whether err is gorm's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
