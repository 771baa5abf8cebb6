// Package handler exposes the dashboard over HTTP: the gated pages (as JSON
// data for the client) and the session-guarded JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"hiway-api/internal/applications"
	"hiway-api/internal/auth"
	"hiway-api/internal/mailer"
	"hiway-api/internal/meeting"
	"hiway-api/internal/middleware"
	"hiway-api/internal/model"
	"hiway-api/internal/profile"
)

const maxBody = 1 << 20

type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ConfirmEmail(ctx context.Context, userID string, at time.Time) error
	CreateVerification(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	ConsumeVerification(ctx context.Context, codeHash string, now time.Time) (string, error)

	EmployerByAuthUser(ctx context.Context, authUserID string) (*model.Employer, error)
	CreateEmployer(ctx context.Context, e *model.Employer) (*model.Employer, error)
	UpdateEmployerProfile(ctx context.Context, authUserID string, u model.ProfileUpdate) (*model.Employer, error)

	ApplicationDetail(ctx context.Context, employerID, id string) (*model.ApplicationRow, error)
	HasApplied(ctx context.Context, employerID, jobSeekerID string) (bool, error)
	JobSeekerByID(ctx context.Context, id string) (*model.JobSeeker, error)
}

type Sessions interface {
	middleware.Sessions
	Issue(ctx context.Context, w http.ResponseWriter, u *model.User) error
}

type Outbox interface {
	QueueEmail(ctx context.Context, to, subject, body, templateType, meetingID string) (*model.EmailJob, error)
}

type Deps struct {
	Store        Store
	Sessions     Sessions
	Providers    auth.Providers
	Profiles     *profile.Checker
	Applications *applications.Service
	Dashboard    *applications.Dashboard
	Scheduler    *meeting.Scheduler
	Outbox       Outbox
	Mailer       mailer.Sender
	Limiter      *middleware.RateLimiter
	Health       http.Handler // optional
	BaseURL      string
	SecureCookie bool
}

type Handler struct {
	Deps
	now func() time.Time
}

func New(d Deps) *Handler {
	return &Handler{Deps: d, now: time.Now}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	api := middleware.RequireUser(h.Sessions)
	limited := middleware.Limit(h.Limiter)

	// pages
	mux.HandleFunc("GET /{$}", h.home)
	for _, p := range []string{"/login", "/signup", "/verify-email", "/error", "/auth/auth-code-error"} {
		mux.HandleFunc("GET "+p, h.publicPage)
	}
	mux.HandleFunc("GET /auth/callback", h.callback)
	mux.HandleFunc("GET /dashboard", h.dashboard)
	mux.HandleFunc("GET /profile", h.profilePage)
	mux.HandleFunc("POST /profile", h.saveProfile)

	// auth
	mux.Handle("POST /api/auth", limited(http.HandlerFunc(h.oauthStart)))
	mux.Handle("POST /api/auth/signup", limited(http.HandlerFunc(h.signup)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(h.login)))
	mux.Handle("POST /api/auth/resend-verification", limited(http.HandlerFunc(h.resendVerification)))
	mux.HandleFunc("POST /api/auth/logout", h.logout)

	// json api
	mux.Handle("GET /api/applications", api(http.HandlerFunc(h.listApplications)))
	mux.Handle("POST /api/applications", api(http.HandlerFunc(h.updateApplication)))
	mux.Handle("GET /api/applications/export", api(http.HandlerFunc(h.exportApplications)))
	mux.Handle("GET /api/scheduled-events", api(http.HandlerFunc(h.scheduledEvents)))
	mux.Handle("POST /api/zoom/create-meeting", api(http.HandlerFunc(h.createMeeting)))
	mux.Handle("GET /api/job-seeker", api(http.HandlerFunc(h.jobSeeker)))
	mux.Handle("GET /api/employer", api(http.HandlerFunc(h.getEmployer)))
	mux.Handle("PUT /api/employer", api(http.HandlerFunc(h.putEmployer)))
	mux.Handle("GET /api/templates", api(http.HandlerFunc(h.listTemplates)))
	mux.Handle("POST /api/templates/render", api(http.HandlerFunc(h.renderTemplate)))
	mux.Handle("POST /api/templates/send", api(http.HandlerFunc(h.sendTemplate)))

	if h.Health != nil {
		mux.Handle("GET /healthz", h.Health)
	}

	gated := middleware.Gate(h.Sessions, h.Profiles)(mux)
	return middleware.Logger(gated)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// internalError logs err and answers with the generic 500 body.
func internalError(w http.ResponseWriter, what string, err error) {
	log.Printf("%s: %v", what, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBody))
}

func decodeJSON(r *http.Request, v any) error {
	b, err := readBody(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// userID is only called behind RequireUser or Gate.
func userID(r *http.Request) string {
	id, _ := middleware.UserFrom(r.Context())
	if id == nil {
		return ""
	}
	return id.UserID
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
