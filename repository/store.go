package repository

import (
	"context"

	"github.com/facturapro/sessiond/domain"
)

// SessionStore persists at most one identity in a single durable slot.
// Save overwrites any prior value; Load returns (nil, nil) when the slot
// is empty; Clear is idempotent. The store knows nothing about roles or
// permissions.
type SessionStore interface {
	Save(ctx context.Context, identity *domain.Identity) error
	Load(ctx context.Context) (*domain.Identity, error)
	Clear(ctx context.Context) error
}
