package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiway-api/internal/model"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// RotationGrace is how long a just-rotated refresh token still resolves.
	RotationGrace = 30 * time.Second
)

var ErrNoSession = errors.New("no session")

type SessionStore interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Identity is the signed-in user as seen by request handlers.
type Identity struct {
	UserID string
	Email  string
}

type Sessions struct {
	store  SessionStore
	secret string
	secure bool
	now    func() time.Time
}

func NewSessions(st SessionStore, secret string, secureCookies bool) *Sessions {
	return &Sessions{store: st, secret: secret, secure: secureCookies, now: time.Now}
}

// Issue starts a new session for u and writes both cookies.
func (s *Sessions) Issue(ctx context.Context, w http.ResponseWriter, u *model.User) error {
	raw, hash, err := NewOpaqueToken()
	if err != nil {
		return err
	}
	now := s.now()
	if _, err := s.store.CreateRefreshToken(ctx, u.ID, hash, now.Add(RefreshTTL)); err != nil {
		return err
	}
	return s.writeCookies(w, u.ID, u.Email, raw, now)
}

// CurrentUser resolves the caller from the access token, falling back to the
// refresh cookie. A refresh rotates the token and re-issues both cookies.
func (s *Sessions) CurrentUser(w http.ResponseWriter, r *http.Request) (*Identity, error) {
	if raw := accessToken(r); raw != "" {
		if c, err := ParseToken(raw, s.secret); err == nil {
			return &Identity{UserID: c.UserID, Email: c.Email}, nil
		}
	}

	rc, err := r.Cookie(RefreshCookie)
	if err != nil || rc.Value == "" {
		return nil, ErrNoSession
	}
	return s.refresh(r.Context(), w, rc.Value)
}

func (s *Sessions) refresh(ctx context.Context, w http.ResponseWriter, raw string) (*Identity, error) {
	rt, err := s.store.GetRefreshTokenByHash(ctx, HashToken(raw))
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if rt.Revoked {
		// parallel requests of one page load all carry the token being rotated
		if rotatedRecently(rt, now) {
			return s.resume(ctx, w, rt.UserID, now)
		}
		// a rotated token coming back later means it leaked
		log.Printf("refresh token reuse for user %s, revoking sessions", rt.UserID)
		if err := s.store.RevokeAllRefreshTokens(ctx, rt.UserID); err != nil {
			log.Printf("revoke sessions %s: %v", rt.UserID, err)
		}
		return nil, ErrNoSession
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrNoSession
	}

	u, err := s.store.UserByID(ctx, rt.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	newRaw, newHash, err := NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	err = s.store.RotateRefreshToken(ctx, rt.ID, uuid.New().String(), u.ID, newHash, now.Add(RefreshTTL))
	if errors.Is(err, model.ErrNotFound) {
		// another request rotated it between our read and write
		cur, gerr := s.store.GetRefreshTokenByHash(ctx, rt.TokenHash)
		if gerr != nil || !rotatedRecently(cur, now) {
			return nil, ErrNoSession
		}
		return s.resume(ctx, w, u.ID, now)
	}
	if err != nil {
		return nil, err
	}
	if err := s.writeCookies(w, u.ID, u.Email, newRaw, now); err != nil {
		return nil, err
	}
	return &Identity{UserID: u.ID, Email: u.Email}, nil
}

// rotatedRecently reports a token replaced within RotationGrace whose
// replacement chain is still live.
func rotatedRecently(rt *model.RefreshToken, now time.Time) bool {
	return rt.Revoked && rt.ReplacedBy != nil && rt.RevokedAt != nil &&
		now.Sub(*rt.RevokedAt) < RotationGrace
}

// resume serves a request that lost the rotation race. Only the access cookie
// is written; the refresh cookie set by the winning request stays.
func (s *Sessions) resume(ctx context.Context, w http.ResponseWriter, uid string, now time.Time) (*Identity, error) {
	u, err := s.store.UserByID(ctx, uid)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	tok, err := MakeToken(u.ID, u.Email, s.secret, now)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, s.cookie(AccessCookie, tok, now.Add(AccessTTL)))
	return &Identity{UserID: u.ID, Email: u.Email}, nil
}

// SignOut revokes every refresh token of userID and clears the cookies.
func (s *Sessions) SignOut(ctx context.Context, w http.ResponseWriter, userID string) error {
	s.clearCookies(w)
	if userID == "" {
		return nil
	}
	return s.store.RevokeAllRefreshTokens(ctx, userID)
}

func (s *Sessions) writeCookies(w http.ResponseWriter, uid, email, refresh string, now time.Time) error {
	tok, err := MakeToken(uid, email, s.secret, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(AccessCookie, tok, now.Add(AccessTTL)))
	http.SetCookie(w, s.cookie(RefreshCookie, refresh, now.Add(RefreshTTL)))
	return nil
}

func (s *Sessions) clearCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := s.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (s *Sessions) cookie(name, val string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    val,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// bearer header wins over the cookie
func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}
