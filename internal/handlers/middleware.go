package handlers

import (
	"context"
	"net/http"

	"github.com/openmeet/eventhub/internal/domain"
	"github.com/openmeet/eventhub/pkg/auth"
	"github.com/openmeet/eventhub/pkg/logger"
)

// Identity is the resolved caller attached to the request context after the
// guard succeeds. Handlers read it from there and never re-derive it.
type Identity struct {
	AccountID int64
	Role      string
}

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFrom returns the identity attached by the guard, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// resolveIdentity is the guard's decision core: extract, verify, decode.
// Side-effect free; both failure-reporting adapters wrap it. The distinct
// verification failures are logged here and never surfaced to the caller.
func (h *Handlers) resolveIdentity(r *http.Request) (*Identity, error) {
	raw, ok := auth.ExtractToken(r, h.config.Auth.CookieName)
	if !ok {
		return nil, domain.NewAuthenticationError("authentication required")
	}

	claims, err := auth.Parse(raw, h.config.Auth.JWTSecret)
	if err != nil {
		logger.DebugContext(r.Context(), "Token verification failed", "reason", err)
		return nil, domain.NewAuthenticationError("invalid token")
	}

	return &Identity{AccountID: claims.Sub, Role: claims.Role}, nil
}

func withIdentity(r *http.Request, id *Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, id)
	ctx = context.WithValue(ctx, logger.AccountIDKey, id.AccountID)
	return r.WithContext(ctx)
}

// RequireAuth rejects unauthenticated requests with a structured 401.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.resolveIdentity(r)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, withIdentity(r, id))
	})
}

// RequireRole implies RequireAuth and additionally demands one of the given
// roles. A valid credential with the wrong role gets 403, not 401.
func (h *Handlers) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := h.resolveIdentity(r)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			if !allowed[id.Role] {
				writeDomainError(w, r, domain.NewAuthorizationError("insufficient role"))
				return
			}
			next.ServeHTTP(w, withIdentity(r, id))
		})
	}
}

// RequireAuthRedirect is the page-surface adapter around the same decision
// core: instead of a structured 401 it sends the browser to the login page.
// The API binary mounts no HTML routes, so nothing in cmd/api uses it; it
// exists for server-rendered surfaces that share this handler set.
func (h *Handlers) RequireAuthRedirect(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := h.resolveIdentity(r)
			if err != nil {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, withIdentity(r, id))
		})
	}
}
