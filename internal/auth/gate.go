package auth

import (
	"context"
	"errors"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/jwt"
)

var (
	// ErrUnauthenticated means the credential is missing or malformed.
	ErrUnauthenticated = errors.New("missing or malformed credential")
	// ErrCredentialExpired means the credential's expiry check failed.
	ErrCredentialExpired = errors.New("credential expired")
	// ErrCredentialInvalid means the signature check failed.
	ErrCredentialInvalid = errors.New("credential invalid")
	// ErrUnauthorized means the credential is valid but the role is
	// insufficient for the operation.
	ErrUnauthorized = errors.New("insufficient role")
)

// Gate validates bearer credentials against the trust anchor and
// resolves the identity they carry. It never persists anything.
type Gate struct {
	manager *jwt.Manager
}

// NewGate creates a credential gate around a JWT manager.
func NewGate(manager *jwt.Manager) *Gate {
	return &Gate{manager: manager}
}

// Authenticate verifies a bearer credential and returns the identity.
func (g *Gate) Authenticate(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrUnauthenticated
	}

	claims, err := g.manager.ValidateToken(token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			return domain.Identity{}, ErrCredentialExpired
		default:
			return domain.Identity{}, ErrCredentialInvalid
		}
	}

	return domain.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

type identityKey struct{}

// WithIdentity stores the resolved identity in the context for all
// downstream components to read.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom retrieves the identity attached by the gate.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
