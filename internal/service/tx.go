package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Actor identifies the authenticated caller of a service operation.
// The identity layer is trusted for authentication; services still re-check
// shift ownership for non-manager actors.
type Actor struct {
	ID   uuid.UUID
	Role string
}
