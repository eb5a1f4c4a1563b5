package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey returns an unexpired key for the user, or nil
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create inserts a key. A second insert of the same key and user
	// fails with ErrDuplicate.
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Complete stores the response for a pending key and extends its expiry
	Complete(ctx context.Context, id uuid.UUID, code int, body string, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpiredKey removes the key for the user only if it has expired
	DeleteExpiredKey(ctx context.Context, key string, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
