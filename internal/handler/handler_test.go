package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"hiway-api/internal/applications"
	"hiway-api/internal/auth"
	"hiway-api/internal/meeting"
	"hiway-api/internal/middleware"
	"hiway-api/internal/model"
	"hiway-api/internal/notify"
	"hiway-api/internal/profile"
	"hiway-api/internal/zoom"
)

const testSecret = "test-secret"

// memStore is an in-memory stand-in for the postgres store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*model.User // by id
	tokens   map[string]*model.RefreshToken
	codes    map[string]string // code hash -> user id
	emps     map[string]*model.Employer
	apps     map[string]*model.Application
	posts    map[string]string // job post id -> title
	seekers  map[string]*model.JobSeeker
	meetings []*model.Meeting
	emails   []*model.EmailJob
	reminds  []model.Reminder
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*model.User{},
		tokens:  map[string]*model.RefreshToken{},
		codes:   map[string]string{},
		emps:    map[string]*model.Employer{},
		apps:    map[string]*model.Application{},
		posts:   map[string]string{},
		seekers: map[string]*model.JobSeeker{},
	}
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if strings.EqualFold(x.Email, u.Email) {
			return model.ErrExists
		}
	}
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memStore) ConfirmEmail(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.EmailConfirmedAt = &at
	return nil
}

func (m *memStore) CreateVerification(_ context.Context, uid, hash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[hash] = uid
	return nil
}

func (m *memStore) ConsumeVerification(ctx context.Context, hash string, now time.Time) (string, error) {
	m.mu.Lock()
	uid, ok := m.codes[hash]
	delete(m.codes, hash)
	m.mu.Unlock()
	if !ok {
		return "", model.ErrNotFound
	}
	return uid, m.ConfirmEmail(ctx, uid, now)
}

func (m *memStore) CreateRefreshToken(_ context.Context, uid, hash string, exp time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "rt-" + hash[:8]
	m.tokens[hash] = &model.RefreshToken{ID: id, UserID: uid, TokenHash: hash, ExpiresAt: exp}
	return id, nil
}

func (m *memStore) GetRefreshTokenByHash(_ context.Context, hash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[hash]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *rt
	return &c, nil
}

func (m *memStore) RotateRefreshToken(_ context.Context, oldID, newID, uid, hash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, rt := range m.tokens {
		if rt.ID == oldID {
			if rt.Revoked {
				return model.ErrNotFound
			}
			rt.Revoked, rt.ReplacedBy, rt.RevokedAt = true, &newID, &now
		}
	}
	m.tokens[hash] = &model.RefreshToken{ID: newID, UserID: uid, TokenHash: hash, ExpiresAt: exp}
	return nil
}

func (m *memStore) RevokeAllRefreshTokens(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rt := range m.tokens {
		if rt.UserID == uid {
			rt.Revoked, rt.ReplacedBy = true, nil
		}
	}
	return nil
}

func (m *memStore) EmployerByAuthUser(_ context.Context, uid string) (*model.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emps[uid]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (m *memStore) CreateEmployer(_ context.Context, e *model.Employer) (*model.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if x, ok := m.emps[e.AuthUserID]; ok {
		return x, nil
	}
	c := *e
	m.emps[e.AuthUserID] = &c
	return &c, nil
}

func (m *memStore) UpdateEmployerProfile(_ context.Context, uid string, u model.ProfileUpdate) (*model.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emps[uid]
	if !ok {
		return nil, model.ErrNotFound
	}
	e.Name, e.Company, e.CompanyEmail = u.Name, u.Company, u.CompanyEmail
	e.CompanyPosition, e.CompanyPhoneNumber = u.CompanyPosition, u.CompanyPhoneNumber
	e.DTIOrSECRegistration, e.BarangayClearance, e.BusinessPermit = u.DTIOrSECRegistration, u.BarangayClearance, u.BusinessPermit
	c := *e
	return &c, nil
}

func (m *memStore) row(a *model.Application) model.ApplicationRow {
	r := model.ApplicationRow{Application: *a}
	if t, ok := m.posts[a.JobPostID]; ok {
		r.PostTitle = &t
	}
	if js, ok := m.seekers[a.JobSeekerID]; ok {
		r.SeekerName, r.SeekerEmail = &js.FullName, &js.Email
	}
	return r
}

func (m *memStore) matching(f model.ApplicationFilter) []model.ApplicationRow {
	var out []model.ApplicationRow
	for _, a := range m.apps {
		if a.EmployerID == f.EmployerID && (f.Status == "" || string(a.Status) == f.Status) {
			out = append(out, m.row(a))
		}
	}
	return out
}

func (m *memStore) ListApplications(_ context.Context, f model.ApplicationFilter) ([]model.ApplicationRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.matching(f)
	if f.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[f.Offset:]
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, nil
}

func (m *memStore) CountApplications(_ context.Context, f model.ApplicationFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(f)), nil
}

func (m *memStore) ApplicationDetail(_ context.Context, eid, id string) (*model.ApplicationRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.EmployerID != eid {
		return nil, model.ErrNotFound
	}
	r := m.row(a)
	return &r, nil
}

func (m *memStore) ApplicationForEmployer(_ context.Context, eid, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.EmployerID != eid {
		return nil, model.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *memStore) UpdateApplication(_ context.Context, eid, id string, u model.ApplicationUpdate) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.EmployerID != eid {
		return nil, model.ErrNotFound
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.Source != nil {
		a.Source = *u.Source
	}
	if u.ResumeURL != nil {
		a.ResumeURL = *u.ResumeURL
	}
	c := *a
	return &c, nil
}

func (m *memStore) SetApplicationStatus(ctx context.Context, eid, id string, st model.Status) error {
	_, err := m.UpdateApplication(ctx, eid, id, model.ApplicationUpdate{Status: &st})
	return err
}

func (m *memStore) StatusCounts(_ context.Context, eid string) (map[model.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[model.Status]int{}
	for _, a := range m.apps {
		if a.EmployerID == eid {
			out[a.Status]++
		}
	}
	return out, nil
}

func (m *memStore) HasApplied(_ context.Context, eid, seeker string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.EmployerID == eid && a.JobSeekerID == seeker {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) JobSeekerByID(_ context.Context, id string) (*model.JobSeeker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	js, ok := m.seekers[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *js
	return &c, nil
}

func (m *memStore) CreateMeeting(_ context.Context, mt *model.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings = append(m.meetings, mt)
	return nil
}

func (m *memStore) ScheduledMeetings(_ context.Context, eid string, from time.Time, _ int) ([]model.ScheduledMeeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ScheduledMeeting
	for _, mt := range m.meetings {
		if mt.EmployerID == eid && !mt.StartTime.Before(from) {
			out = append(out, model.ScheduledMeeting{Meeting: *mt})
		}
	}
	return out, nil
}

func (m *memStore) EnqueueEmail(_ context.Context, j *model.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = append(m.emails, j)
	return nil
}

func (m *memStore) CreateReminders(_ context.Context, rs []model.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminds = append(m.reminds, rs...)
	return nil
}

type fakeZoom struct{ calls int }

func (z *fakeZoom) CreateMeeting(_ context.Context, req zoom.MeetingRequest) (*zoom.Meeting, error) {
	z.calls++
	return &zoom.Meeting{ID: "555", Topic: req.Topic, StartTime: req.StartTime, Duration: req.Duration, Timezone: req.Timezone, JoinURL: "https://zoom.us/j/555"}, nil
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct{ sent []sentMail }

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type env struct {
	store  *memStore
	zoom   *fakeZoom
	mail   *fakeMailer
	server http.Handler
}

func setup(t *testing.T) *env {
	t.Helper()
	st := newMemStore()
	z := &fakeZoom{}
	ml := &fakeMailer{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := notify.New(st, st, nil)
	h := New(Deps{
		Store:        st,
		Sessions:     auth.NewSessions(st, testSecret, false),
		Providers:    auth.Providers{"google": auth.Google("gid", "gsecret", "http://localhost/auth/callback")},
		Profiles:     profile.NewChecker(st),
		Applications: applications.NewService(st, nil),
		Dashboard:    applications.NewDashboard(st, st),
		Scheduler:    meeting.NewScheduler(z, st, n),
		Outbox:       n,
		Mailer:       ml,
		Limiter:      middleware.NewRateLimiter(ctx, 100, 100),
		BaseURL:      "http://localhost:8080",
	})
	return &env{store: st, zoom: z, mail: ml, server: h.Routes()}
}

// employer adds a confirmed user with an employer record.
func (e *env) employer(id string, complete bool) *model.Employer {
	now := time.Now()
	e.store.users[id] = &model.User{ID: id, Email: id + "@example.com", EmailConfirmedAt: &now}
	emp := &model.Employer{EmployerID: "emp-" + id, AuthUserID: id, Name: "Ana Reyes"}
	if complete {
		emp.Company = "Hiway Inc"
		emp.CompanyEmail = "hr@hiway.test"
		emp.CompanyPosition = "HR Lead"
		emp.CompanyPhoneNumber = "0917"
	}
	e.store.emps[id] = emp
	return emp
}

func (e *env) app(id, employer, seeker string, st model.Status) {
	e.store.apps[id] = &model.Application{ApplicationID: id, EmployerID: employer, JobSeekerID: seeker, JobPostID: "post-1", Status: st}
}

func bearer(t *testing.T, uid string) string {
	t.Helper()
	tok, err := auth.MakeToken(uid, uid+"@example.com", testSecret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func (e *env) do(t *testing.T, method, target, uid, ctype, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	if uid != "" {
		req.Header.Set("Authorization", bearer(t, uid))
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

const (
	jsonType = "application/json"
	appID    = "7d1e9c3a-8f42-4b1a-b0c3-2a9e6f4d5c02"
	seekerID = "0b6f2a64-3c1e-4c55-9a0e-5d7c1f1d2e01"
)

func TestGateRedirects(t *testing.T) {
	e := setup(t)
	e.employer("u-inc", false)
	e.employer("u-ok", true)

	tests := []struct {
		name, path, uid, want string
	}{
		{"anonymous dashboard", "/dashboard", "", "/login?next=%2Fdashboard"},
		{"incomplete dashboard", "/dashboard", "u-inc", "/profile"},
		{"complete profile", "/profile", "u-ok", "/dashboard"},
		{"root", "/", "", "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, tt.path, tt.uid, "", "")
			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.want {
				t.Fatalf("location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDashboardOverview(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.app("a1", "u1", "s1", model.StatusHired)
	e.app("a2", "u1", "s2", model.StatusSubmitted)

	rec := e.do(t, http.MethodGet, "/dashboard", "u1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decode(t, rec)
	if body["total_applications"] != float64(2) {
		t.Fatalf("total = %v", body["total_applications"])
	}
}

func TestAPIRequiresSession(t *testing.T) {
	e := setup(t)
	for _, p := range []string{"/api/applications", "/api/scheduled-events", "/api/employer"} {
		rec := e.do(t, http.MethodGet, p, "", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", p, rec.Code)
		}
	}
}

func TestListApplicationsByStatus(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.employer("u2", true)
	for _, id := range []string{"h1", "h2", "h3"} {
		e.app(id, "u1", "s-"+id, model.StatusHired)
	}
	e.app("x1", "u1", "s-x1", model.StatusRejected)
	e.app("x2", "u2", "s-x2", model.StatusHired)

	rec := e.do(t, http.MethodGet, "/api/applications?status=hired&limit=10&offset=0", "u1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var page applications.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Total)
	}
	if len(page.Applications) > 10 {
		t.Fatalf("got %d items", len(page.Applications))
	}
	for _, a := range page.Applications {
		if a.Status != model.StatusHired {
			t.Fatalf("item %s has status %s", a.ApplicationID, a.Status)
		}
		if a.EmployerID != "u1" {
			t.Fatalf("item %s belongs to %s", a.ApplicationID, a.EmployerID)
		}
	}
}

func TestUpdateApplication(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.employer("u2", true)
	e.app("a1", "u1", "s1", model.StatusSubmitted)

	tests := []struct {
		name string
		uid  string
		body string
		want int
	}{
		{"ok", "u1", `{"application_id":"a1","action":"shortlisted","source":"referral"}`, http.StatusOK},
		{"missing id", "u1", `{"action":"hired"}`, http.StatusBadRequest},
		{"bad status", "u1", `{"application_id":"a1","action":"promoted"}`, http.StatusBadRequest},
		{"unknown field", "u1", `{"application_id":"a1","action":"hired","employer_id":"u2"}`, http.StatusBadRequest},
		{"malformed", "u1", `{`, http.StatusBadRequest},
		{"other employer", "u2", `{"application_id":"a1","action":"hired"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/applications", tt.uid, jsonType, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
	if a := e.store.apps["a1"]; a.Status != model.StatusShortlisted || a.Source != "referral" {
		t.Fatalf("application = %+v", a)
	}
}

func TestCreateMeetingPastStart(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.app(appID, "u1", seekerID, model.StatusShortlisted)

	body := `{"applicant_id":"` + seekerID + `","application_id":"` + appID + `","position":"Driver","start_time":"2020-01-01T10:00:00Z","applicant_email":"j@example.com","applicant_name":"Juan"}`
	rec := e.do(t, http.MethodPost, "/api/zoom/create-meeting", "u1", jsonType, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	out := decode(t, rec)
	details, _ := out["details"].([]any)
	if len(details) == 0 {
		t.Fatalf("no details in %v", out)
	}
	if len(e.store.meetings) != 0 || e.zoom.calls != 0 {
		t.Fatalf("meetings = %d, provider calls = %d", len(e.store.meetings), e.zoom.calls)
	}
}

func TestCreateMeeting(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.employer("u2", true)
	e.app(appID, "u1", seekerID, model.StatusShortlisted)

	start := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"applicant_id":"` + seekerID + `","application_id":"` + appID + `","position":"Driver","start_time":"` + start + `","applicant_email":"j@example.com","applicant_name":"Juan"}`

	t.Run("missing fields", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/zoom/create-meeting", "u1", jsonType, `{"position":"Driver"}`)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Missing required fields") {
			t.Fatalf("got %d: %s", rec.Code, rec.Body)
		}
	})

	t.Run("malformed ids", func(t *testing.T) {
		bad := strings.Replace(body, `"applicant_id":"`+seekerID+`"`, `"applicant_id":"abc"`, 1)
		rec := e.do(t, http.MethodPost, "/api/zoom/create-meeting", "u1", jsonType, bad)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "applicant_id") {
			t.Fatalf("got %d: %s", rec.Code, rec.Body)
		}
	})

	t.Run("other applicant", func(t *testing.T) {
		other := strings.Replace(body, seekerID, "5a0c7e21-9b3d-4f6e-8c1a-3d2b4e5f6a03", 1)
		rec := e.do(t, http.MethodPost, "/api/zoom/create-meeting", "u1", jsonType, other)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if e.zoom.calls != 0 {
			t.Fatal("provider called for another applicant")
		}
	})

	t.Run("foreign application", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/zoom/create-meeting", "u2", jsonType, body)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if e.zoom.calls != 0 {
			t.Fatal("provider called for foreign application")
		}
	})

	t.Run("ok", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/zoom/create-meeting", "u1", jsonType, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		out := decode(t, rec)
		if out["application_status_updated"] != true || out["invitation_queued"] != true {
			t.Fatalf("follow-ups: %v", out)
		}
		if out["reminders_scheduled"] != float64(3) {
			t.Fatalf("reminders = %v", out["reminders_scheduled"])
		}
		if len(e.store.meetings) != 1 || e.store.meetings[0].Topic != "Driver Interview - Juan" {
			t.Fatalf("meetings = %+v", e.store.meetings)
		}
		if e.store.apps[appID].Status != meeting.InterviewStatus {
			t.Fatalf("application status = %s", e.store.apps[appID].Status)
		}
	})

	t.Run("listed as event", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/scheduled-events", "u1", "", "")
		out := decode(t, rec)
		if events, _ := out["events"].([]any); len(events) != 1 {
			t.Fatalf("events = %v", out["events"])
		}
	})
}

var codeRe = regexp.MustCompile(`code=([0-9a-f]+)`)

func TestSignupVerifyLogin(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodPost, "/api/auth/signup", "", jsonType, `{"email":"New@Example.com","password":"hunter22!","name":"Ana"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d: %s", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, "/api/auth/signup", "", jsonType, `{"email":"new@example.com","password":"hunter22!"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", rec.Code)
	}

	login := url.Values{"email": {"new@example.com"}, "password": {"hunter22!"}}.Encode()
	form := "application/x-www-form-urlencoded"

	rec = e.do(t, http.MethodPost, "/api/auth/login", "", form, login)
	if rec.Code != http.StatusForbidden || decode(t, rec)["needsVerification"] != true {
		t.Fatalf("unverified login = %d: %s", rec.Code, rec.Body)
	}

	if len(e.mail.sent) != 1 {
		t.Fatalf("sent %d mails", len(e.mail.sent))
	}
	m := codeRe.FindStringSubmatch(e.mail.sent[0].body)
	if m == nil {
		t.Fatalf("no code in %q", e.mail.sent[0].body)
	}

	rec = e.do(t, http.MethodGet, "/auth/callback?code="+m[1]+"&verified=true&next=/login", "", "", "")
	if got := rec.Header().Get("Location"); got != "/login?verified=true" {
		t.Fatalf("callback location = %q", got)
	}
	rec = e.do(t, http.MethodGet, "/auth/callback?code="+m[1]+"&verified=true", "", "", "")
	if got := rec.Header().Get("Location"); got != "/auth/auth-code-error?reason=invalid_code" {
		t.Fatalf("reused code location = %q", got)
	}

	if rec := e.do(t, http.MethodPost, "/api/auth/login", "", form, url.Values{"email": {"new@example.com"}, "password": {"wrong-pass"}}.Encode()); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/auth/login", "", form, login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body)
	}
	if got := decode(t, rec)["redirect"]; got != "/profile" {
		t.Fatalf("redirect = %v", got)
	}
	var access *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.AccessCookie {
			access = c
		}
	}
	if access == nil {
		t.Fatal("no access cookie")
	}
	if len(e.store.emps) != 1 {
		t.Fatalf("employers = %d", len(e.store.emps))
	}

	// the cookie session reaches the gated profile page
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(access)
	prec := httptest.NewRecorder()
	e.server.ServeHTTP(prec, req)
	if prec.Code != http.StatusOK || decode(t, prec)["profile_complete"] != false {
		t.Fatalf("profile page = %d: %s", prec.Code, prec.Body)
	}
}

func TestCallbackWithoutCode(t *testing.T) {
	e := setup(t)
	tests := []struct{ target, want string }{
		{"/auth/callback?verified=true", "/login?verified=true"},
		{"/auth/callback", "/auth/auth-code-error"},
		{"/auth/callback?code=abc&state=x", "/auth/auth-code-error?reason=invalid_state"},
	}
	for _, tt := range tests {
		rec := e.do(t, http.MethodGet, tt.target, "", "", "")
		if got := rec.Header().Get("Location"); got != tt.want {
			t.Errorf("%s: location = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestResendVerification(t *testing.T) {
	e := setup(t)
	e.store.users["u1"] = &model.User{ID: "u1", Email: "pending@example.com"}

	if rec := e.do(t, http.MethodPost, "/api/auth/resend-verification", "", jsonType, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty = %d", rec.Code)
	}

	var bodies []string
	for _, email := range []string{"pending@example.com", "nobody@example.com"} {
		rec := e.do(t, http.MethodPost, "/api/auth/resend-verification", "", jsonType, `{"email":"`+email+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s = %d", email, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("responses differ: %q vs %q", bodies[0], bodies[1])
	}
	if len(e.mail.sent) != 1 || e.mail.sent[0].to != "pending@example.com" {
		t.Fatalf("sent = %+v", e.mail.sent)
	}
}

func TestOAuthStart(t *testing.T) {
	e := setup(t)
	form := "application/x-www-form-urlencoded"

	if rec := e.do(t, http.MethodPost, "/api/auth", "", form, "provider=github"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown provider = %d", rec.Code)
	}

	rec := e.do(t, http.MethodPost, "/api/auth", "", form, "provider=google")
	if rec.Code != http.StatusOK {
		t.Fatalf("google = %d: %s", rec.Code, rec.Body)
	}
	u, _ := decode(t, rec)["url"].(string)
	if !strings.Contains(u, "access_type=offline") || !strings.Contains(u, "state=") {
		t.Fatalf("url = %q", u)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.StateCookie && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatal("state cookie missing")
	}
}

func TestSaveProfile(t *testing.T) {
	e := setup(t)
	e.employer("u1", false)
	form := "application/x-www-form-urlencoded"

	rec := e.do(t, http.MethodPost, "/profile", "u1", form, "name=Ana&company=")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Please fill in all required fields" {
		t.Fatalf("incomplete = %d: %s", rec.Code, rec.Body)
	}

	full := url.Values{
		"name":                 {"Ana Reyes"},
		"company":              {"Hiway Inc"},
		"company_email":        {"hr@hiway.test"},
		"company_position":     {"HR Lead"},
		"company_phone_number": {"0917"},
		"business_permit":      {"BP-1"},
	}.Encode()
	rec = e.do(t, http.MethodPost, "/profile", "u1", form, full)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("save = %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	if e.store.emps["u1"].BusinessPermit != "BP-1" {
		t.Fatal("optional document not stored")
	}
}

func TestJobSeeker(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.store.seekers["s1"] = &model.JobSeeker{JobSeekerID: "s1", FullName: "Juan", Skills: []any{}}
	e.store.seekers["s2"] = &model.JobSeeker{JobSeekerID: "s2", FullName: "Maria"}
	e.app("a1", "u1", "s1", model.StatusSubmitted)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/job-seeker", http.StatusBadRequest},
		{"/api/job-seeker?job_seeker_id=s2", http.StatusNotFound},
		{"/api/job-seeker?job_seeker_id=nope", http.StatusNotFound},
		{"/api/job-seeker?job_seeker_id=s1", http.StatusOK},
	}
	for _, tt := range tests {
		rec := e.do(t, http.MethodGet, tt.target, "u1", "", "")
		if rec.Code != tt.want {
			t.Errorf("%s = %d, want %d", tt.target, rec.Code, tt.want)
		}
	}
}

func TestTemplates(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.store.posts["post-1"] = "Driver"
	e.store.seekers["s1"] = &model.JobSeeker{JobSeekerID: "s1", FullName: "Juan", Email: "juan@example.com"}
	e.app("a1", "u1", "s1", model.StatusShortlisted)

	rec := e.do(t, http.MethodGet, "/api/templates?category=offer", "u1", "", "")
	if list, _ := decode(t, rec)["templates"].([]any); len(list) == 0 {
		t.Fatalf("offer templates = %s", rec.Body)
	}

	if rec := e.do(t, http.MethodPost, "/api/templates/render", "u1", jsonType, `{"template_key":"nope"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown render = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/templates/send", "u1", jsonType,
		`{"template_key":"application-shortlisted","application_id":"a1","variables":{"employer_name":"Recruiting"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("send = %d: %s", rec.Code, rec.Body)
	}
	if len(e.store.emails) != 1 {
		t.Fatalf("queued %d emails", len(e.store.emails))
	}
	j := e.store.emails[0]
	if j.ToEmail != "juan@example.com" || j.TemplateType != "application-shortlisted" {
		t.Fatalf("job = %+v", j)
	}
	if strings.Contains(j.Body, "{applicant_name}") || !strings.Contains(j.Body, "Juan") {
		t.Fatalf("body not filled: %q", j.Body)
	}
}

func TestExport(t *testing.T) {
	e := setup(t)
	e.employer("u1", true)
	e.app("a1", "u1", "s1", model.StatusHired)

	rec := e.do(t, http.MethodGet, "/api/applications/export?status=hired", "u1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty workbook")
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/dashboard",
		"/applications":     "/applications",
		"//evil.example":    "/dashboard",
		"https://evil.test": "/dashboard",
		"/\\evil":           "/dashboard",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
