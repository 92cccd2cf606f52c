package repository

import (
	"context"

	"github.com/facturapro/sessiond/domain"
)

// IdentityResolver wraps the hosted identity provider. Implementations
// perform network I/O and surface failures as typed domain errors.
type IdentityResolver interface {
	// Authenticate checks credentials remotely and resolves the merged
	// identity (profile role and tenant included).
	Authenticate(ctx context.Context, handle, secret string) (*domain.Identity, error)
	// CurrentSession returns the provider's still-active session, or
	// (nil, nil) when there is none.
	CurrentSession(ctx context.Context) (*domain.Identity, error)
	// SignOut terminates the provider-side session.
	SignOut(ctx context.Context) error
}
