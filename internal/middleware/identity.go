// Package middleware contains HTTP middleware for the inventory API.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler
// and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/bazaar/internal/auth"
	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/handler"
	"github.com/DukeRupert/bazaar/internal/service"
)

// SubjectHeader carries the identity-provider subject. The gateway in front
// of the API authenticates the caller and sets it; the API trusts it as-is.
const SubjectHeader = "X-Subject-ID"

// IdentityMiddleware resolves the caller into a domain.Actor.
type IdentityMiddleware struct {
	accounts service.AccountService
	admins   map[string]bool
	logger   *slog.Logger
}

// NewIdentityMiddleware creates a new IdentityMiddleware.
// adminSubjects lists the subjects granted moderation and catalog access.
func NewIdentityMiddleware(accounts service.AccountService, adminSubjects []string, logger *slog.Logger) *IdentityMiddleware {
	admins := make(map[string]bool, len(adminSubjects))
	for _, s := range adminSubjects {
		if s = strings.TrimSpace(s); s != "" {
			admins[s] = true
		}
	}
	return &IdentityMiddleware{
		accounts: accounts,
		admins:   admins,
		logger:   logger,
	}
}

// WithActor loads the caller's account from the subject header.
//
// Requests without the header continue anonymously. The account is created
// with the default tier on first sight.
func (m *IdentityMiddleware) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := strings.TrimSpace(r.Header.Get(SubjectHeader))
		if subject == "" {
			next.ServeHTTP(w, r)
			return
		}

		account, err := m.accounts.Resolve(r.Context(), subject)
		if err != nil {
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}

		actor := &domain.Actor{Account: account, IsAdmin: m.admins[subject]}
		next.ServeHTTP(w, r.WithContext(auth.SetActor(r.Context(), actor)))
	})
}

// RequireActor rejects anonymous requests with 401.
// It must run after WithActor.
func (m *IdentityMiddleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetActorFromRequest(r) == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers that are not admins with 403.
// It must run after WithActor.
func (m *IdentityMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := auth.GetActorFromRequest(r)
		if actor == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		if !actor.IsAdmin {
			m.logger.Warn("admin route denied", "account_id", actor.Account.ID, "path", r.URL.Path)
			handler.ForbiddenResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// The first middleware is the outermost: it runs first on the request and
// last on the response.
//
//	apiStack := Stack(identity.WithActor, identity.RequireActor)
//	mux.Handle("GET /api/me", apiStack(meHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

var (
	_ func(http.Handler) http.Handler = (&IdentityMiddleware{}).WithActor
	_ func(http.Handler) http.Handler = (&IdentityMiddleware{}).RequireActor
	_ func(http.Handler) http.Handler = (&IdentityMiddleware{}).RequireAdmin
)
