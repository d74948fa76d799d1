package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// IdentityContextKey is the context key for the resolved caller identity
	IdentityContextKey contextKey = "identity"

	// RoleAdmin marks back-office callers.
	RoleAdmin = "admin"
)

// Identity is the resolved caller of a request. OwnerID doubles as the cart
// owner id for shoppers.
type Identity struct {
	OwnerID uuid.UUID
	Role    string
}

// IsAdmin reports whether the caller may use the back-office surface.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IdentityResolver turns a request into a caller identity. Authentication
// itself is an external collaborator (a session layer or an API gateway in
// front of this service); implementations only read its outcome. Returning
// nil with no error means the request is anonymous.
type IdentityResolver interface {
	Resolve(r *http.Request) (*Identity, error)
}

// HeaderResolver trusts identity headers set by an upstream proxy:
// X-User-ID carries the caller's uuid, X-User-Role its role.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (*Identity, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	return &Identity{OwnerID: id, Role: r.Header.Get("X-User-Role")}, nil
}

// WithIdentity resolves the caller identity and stores it in the context.
// Anonymous requests pass through; route guards decide what requires auth.
func WithIdentity(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			if identity != nil {
				ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity retrieves the caller identity from the context, or nil for
// anonymous requests.
func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityContextKey).(*Identity); ok {
		return identity
	}
	return nil
}

// RequireShopper rejects anonymous requests.
func RequireShopper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous and non-admin callers.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())
		if identity == nil {
			respondUnauthorized(w, r)
			return
		}
		if !identity.IsAdmin() {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
