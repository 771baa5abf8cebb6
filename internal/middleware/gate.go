// Package middleware holds the HTTP and gRPC request wrappers: the page access
// gate, the API session guard, per-IP rate limiting and request logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"hiway-api/internal/auth"
	"hiway-api/internal/model"
)

type ctxKey string

const (
	userKey     ctxKey = "user"
	employerKey ctxKey = "employer"
)

type Sessions interface {
	CurrentUser(w http.ResponseWriter, r *http.Request) (*auth.Identity, error)
	SignOut(ctx context.Context, w http.ResponseWriter, userID string) error
}

type EmployerChecker interface {
	Check(ctx context.Context, authUserID string) (*model.Employer, bool, error)
}

// pages reachable without a session
var publicPrefixes = []string{
	"/login",
	"/signup",
	"/verify-email",
	"/auth/callback",
	"/auth/confirm",
	"/auth/auth-code-error",
	"/error",
	"/terms",
	"/privacy-policy",
	"/healthz",
}

const (
	LoginPath     = "/login"
	ProfilePath   = "/profile"
	DashboardPath = "/dashboard"
)

// PassThrough reports paths the gate never inspects: public pages, the API
// (guarded separately), static files and anything that looks like an asset.
func PassThrough(path string) bool {
	if path == "/" || strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/api/") || path == "/api" {
		return true
	}
	if strings.Contains(path, ".") {
		return true
	}
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Gate decides, before a protected page runs, whether the caller may see it
// or must first sign in or finish their profile.
func Gate(s Sessions, c EmployerChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if PassThrough(path) {
				next.ServeHTTP(w, r)
				return
			}

			id, err := s.CurrentUser(w, r)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					log.Printf("[gate] resolve session: %v", err)
				}
				http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(path), http.StatusFound)
				return
			}
			ctx := WithUser(r.Context(), id)

			e, complete, err := c.Check(r.Context(), id.UserID)
			switch {
			case err != nil:
				// permissive: a failing lookup must not lock everyone out
				log.Printf("[gate] profile check %s: %v", id.UserID, err)
			case e == nil:
				if err := s.SignOut(r.Context(), w, id.UserID); err != nil {
					log.Printf("[gate] sign out %s: %v", id.UserID, err)
				}
				http.Redirect(w, r, LoginPath+"?error=not_employer", http.StatusFound)
				return
			case !complete && path != ProfilePath:
				http.Redirect(w, r, ProfilePath, http.StatusFound)
				return
			case complete && path == ProfilePath:
				http.Redirect(w, r, DashboardPath, http.StatusFound)
				return
			default:
				ctx = context.WithValue(ctx, employerKey, e)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser guards JSON endpoints: no session is a 401, never a redirect.
func RequireUser(s Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.CurrentUser(w, r)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					log.Printf("resolve session: %v", err)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), id)))
		})
	}
}

func WithUser(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, userKey, id)
}

func UserFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(userKey).(*auth.Identity)
	return id, ok && id != nil
}

// EmployerFrom is set by Gate once the profile check passed.
func EmployerFrom(ctx context.Context) (*model.Employer, bool) {
	e, ok := ctx.Value(employerKey).(*model.Employer)
	return e, ok && e != nil
}
