package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiway-api/internal/auth"
	"hiway-api/internal/mailer"
	"hiway-api/internal/model"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// readCredentials accepts both form posts and JSON bodies.
func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &c); err != nil {
			return c, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c = credentials{Email: r.PostFormValue("email"), Password: r.PostFormValue("password"), Name: r.PostFormValue("name")}
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	c.Name = strings.TrimSpace(c.Name)
	return c, nil
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(c.Password) < auth.MinPassLen {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		internalError(w, "hash password", err)
		return
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        c.Email,
		PasswordHash: hash,
		Name:         c.Name,
		Provider:     "email",
	}
	if err := h.Store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, model.ErrExists) {
			// don't reveal which addresses are registered
			writeError(w, http.StatusConflict, "Registration failed")
			return
		}
		internalError(w, "create user", err)
		return
	}

	if err := h.sendVerification(r.Context(), u); err != nil {
		log.Printf("signup %s: verification email: %v", u.ID, err)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Check your email to verify your account.",
	})
}

func (h *Handler) sendVerification(ctx context.Context, u *model.User) error {
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := h.Store.CreateVerification(ctx, u.ID, hash, h.now().Add(mailer.VerificationTTL)); err != nil {
		return err
	}
	link := h.BaseURL + "/auth/callback?" + url.Values{
		"code":     {raw},
		"verified": {"true"},
		"next":     {"/login"},
	}.Encode()
	return mailer.SendVerification(ctx, h.Mailer, u.Email, link)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil || c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.Store.UserByEmail(r.Context(), c.Email)
	if err != nil && !isNotFound(err) {
		internalError(w, "login lookup", err)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, c.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid login credentials")
		return
	}
	if !u.Confirmed() {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":             "Please verify your email before signing in",
			"needsVerification": true,
		})
		return
	}

	if _, err := h.ensureEmployer(r.Context(), u); err != nil {
		internalError(w, "ensure employer", err)
		return
	}
	if err := h.Sessions.Issue(r.Context(), w, u); err != nil {
		internalError(w, "issue session", err)
		return
	}

	next := "/profile"
	if h.Profiles.IsComplete(r.Context(), u.ID) {
		next = "/dashboard"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "redirect": next})
}

// ensureEmployer returns the employer record for u, creating a blank one on
// first sign-in.
func (h *Handler) ensureEmployer(ctx context.Context, u *model.User) (*model.Employer, error) {
	e, err := h.Store.EmployerByAuthUser(ctx, u.ID)
	if err == nil {
		return e, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return h.Store.CreateEmployer(ctx, &model.Employer{
		EmployerID:   uuid.New().String(),
		AuthUserID:   u.ID,
		Role:         "employer",
		Name:         u.Name,
		CompanyEmail: u.Email,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	uid := ""
	if id, err := h.Sessions.CurrentUser(w, r); err == nil {
		uid = id.UserID
	}
	if err := h.Sessions.SignOut(r.Context(), w, uid); err != nil {
		log.Printf("sign out %s: %v", uid, err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil || strings.TrimSpace(body.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	u, err := h.Store.UserByEmail(r.Context(), strings.TrimSpace(body.Email))
	switch {
	case isNotFound(err):
	case err != nil:
		internalError(w, "resend lookup", err)
		return
	case !u.Confirmed():
		if err := h.sendVerification(r.Context(), u); err != nil {
			log.Printf("resend verification %s: %v", u.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to send verification email")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Verification email resent! Check your inbox.",
	})
}

const stateTTL = 10 * time.Minute

// oauthStart hands back the provider URL. Provider, state and the return
// path travel in an HttpOnly cookie until the callback.
func (h *Handler) oauthStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.Providers.Get(r.PostFormValue("provider"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported provider")
		return
	}
	state, err := auth.NewState()
	if err != nil {
		internalError(w, "oauth state", err)
		return
	}

	next := safeNext(r.PostFormValue("next"))
	http.SetCookie(w, &http.Cookie{
		Name:     auth.StateCookie,
		Value:    url.Values{"p": {p.Name}, "s": {state}, "n": {next}}.Encode(),
		Path:     "/auth/callback",
		Expires:  h.now().Add(stateTTL),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"url": p.AuthURL(state)})
}

func codeError(w http.ResponseWriter, r *http.Request, reason string) {
	target := "/auth/auth-code-error"
	if reason != "" {
		target += "?reason=" + url.QueryEscape(reason)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, verified := q.Get("code"), q.Get("verified") == "true"

	switch {
	case code == "" && verified:
		http.Redirect(w, r, "/login?verified=true", http.StatusFound)
		return
	case code == "":
		codeError(w, r, "")
		return
	case verified:
		if _, err := h.Store.ConsumeVerification(r.Context(), auth.HashToken(code), h.now()); err != nil {
			if !isNotFound(err) {
				log.Printf("consume verification: %v", err)
			}
			codeError(w, r, "invalid_code")
			return
		}
		http.Redirect(w, r, "/login?verified=true", http.StatusFound)
		return
	}

	h.oauthCallback(w, r, code, q.Get("state"))
}

func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request, code, state string) {
	c, err := r.Cookie(auth.StateCookie)
	if err != nil {
		codeError(w, r, "invalid_state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: auth.StateCookie, Path: "/auth/callback", MaxAge: -1})

	saved, err := url.ParseQuery(c.Value)
	if err != nil || saved.Get("s") == "" || saved.Get("s") != state {
		codeError(w, r, "invalid_state")
		return
	}
	p, err := h.Providers.Get(saved.Get("p"))
	if err != nil {
		codeError(w, r, "invalid_state")
		return
	}

	ctx := r.Context()
	prof, err := p.Exchange(ctx, code)
	if err != nil {
		log.Printf("oauth exchange: %v", err)
		codeError(w, r, "")
		return
	}

	u, err := h.oauthUser(ctx, p.Name, prof)
	if err != nil {
		log.Printf("oauth user %s: %v", prof.Email, err)
		codeError(w, r, "")
		return
	}

	if _, err := h.Store.EmployerByAuthUser(ctx, u.ID); isNotFound(err) {
		if _, err := h.ensureEmployer(ctx, u); err != nil {
			log.Printf("create employer %s: %v", u.ID, err)
			codeError(w, r, "employer_creation_failed")
			return
		}
	} else if err != nil {
		log.Printf("check employer %s: %v", u.ID, err)
		codeError(w, r, "employer_check_failed")
		return
	}

	if err := h.Sessions.Issue(ctx, w, u); err != nil {
		log.Printf("issue session %s: %v", u.ID, err)
		codeError(w, r, "")
		return
	}
	http.Redirect(w, r, safeNext(saved.Get("n")), http.StatusFound)
}

// oauthUser finds the account for a provider profile or creates it. The
// provider has already verified the address.
func (h *Handler) oauthUser(ctx context.Context, provider string, prof *auth.Profile) (*model.User, error) {
	u, err := h.Store.UserByEmail(ctx, prof.Email)
	if err == nil {
		if !u.Confirmed() {
			if err := h.Store.ConfirmEmail(ctx, u.ID, h.now()); err != nil {
				return nil, err
			}
		}
		return u, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	now := h.now()
	u = &model.User{
		ID:               uuid.New().String(),
		Email:            strings.ToLower(prof.Email),
		Name:             prof.Name,
		Provider:         provider,
		EmailConfirmedAt: &now,
	}
	if err := h.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// safeNext only allows same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/dashboard"
	}
	return next
}
