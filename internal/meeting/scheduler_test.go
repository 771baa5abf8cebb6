package meeting

import (
	"context"
	"errors"
	"testing"
	"time"

	"hiway-api/internal/model"
	"hiway-api/internal/zoom"
)

type fakeProvider struct {
	calls int
	err   error
}

func (p *fakeProvider) CreateMeeting(_ context.Context, req zoom.MeetingRequest) (*zoom.Meeting, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &zoom.Meeting{
		ID:        "987",
		Topic:     req.Topic,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		JoinURL:   "https://zoom.us/j/987",
	}, nil
}

type fakeStore struct {
	apps      map[string]string // application id -> employer id
	seekers   map[string]string // application id -> job seeker id
	meetings  []*model.Meeting
	statuses  map[string]model.Status
	statusErr error
}

func (s *fakeStore) ApplicationForEmployer(_ context.Context, employerID, id string) (*model.Application, error) {
	if s.apps[id] != employerID {
		return nil, model.ErrNotFound
	}
	return &model.Application{ApplicationID: id, EmployerID: employerID, JobSeekerID: s.seekers[id]}, nil
}

func (s *fakeStore) CreateMeeting(_ context.Context, m *model.Meeting) error {
	s.meetings = append(s.meetings, m)
	return nil
}

func (s *fakeStore) SetApplicationStatus(_ context.Context, _, id string, st model.Status) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statuses[id] = st
	return nil
}

type fakeNotifier struct {
	invites   []string
	reminders int
}

func (n *fakeNotifier) QueueInvitation(_ context.Context, _ *model.Meeting, to, _, _ string) error {
	n.invites = append(n.invites, to)
	return nil
}

func (n *fakeNotifier) ScheduleReminders(_ context.Context, _ *model.Meeting, _ time.Time) (int, error) {
	n.reminders = 3
	return 3, nil
}

func newTestScheduler() (*Scheduler, *fakeProvider, *fakeStore, *fakeNotifier) {
	p := &fakeProvider{}
	st := &fakeStore{
		apps:     map[string]string{appID: "emp-1"},
		seekers:  map[string]string{appID: seekerID},
		statuses: map[string]model.Status{},
	}
	n := &fakeNotifier{}
	s := NewScheduler(p, st, n)
	s.now = func() time.Time { return now }
	return s, p, st, n
}

func TestScheduleHappyPath(t *testing.T) {
	s, p, st, n := newTestScheduler()

	out, err := s.Schedule(context.Background(), "emp-1", WithDefaults(validReq()))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if p.calls != 1 || len(st.meetings) != 1 {
		t.Fatalf("expected one provider call and one row, got %d/%d", p.calls, len(st.meetings))
	}
	m := out.Meeting
	if m.Status != model.MeetingScheduled || m.MeetingID != "987" || m.EmployerID != "emp-1" {
		t.Errorf("unexpected meeting %+v", m)
	}
	if m.ApplicationID != appID || m.ApplicantID != seekerID {
		t.Errorf("links not kept: %+v", m)
	}
	if st.statuses[appID] != model.StatusInterviewed || !out.ApplicationStatusUpdated {
		t.Errorf("application status not updated: %v", st.statuses)
	}
	if !out.InvitationQueued || len(n.invites) != 1 || n.invites[0] != "ana@example.com" {
		t.Errorf("invitation not queued: %v", n.invites)
	}
	if out.RemindersScheduled != 3 {
		t.Errorf("reminders: %d", out.RemindersScheduled)
	}
}

func TestScheduleInvalidHasNoSideEffects(t *testing.T) {
	s, p, st, _ := newTestScheduler()
	req := validReq()
	req.StartTime = "2020-01-01T00:00:00Z"

	_, err := s.Schedule(context.Background(), "emp-1", req)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if p.calls != 0 || len(st.meetings) != 0 {
		t.Error("side effects on invalid request")
	}
}

func TestScheduleForeignApplication(t *testing.T) {
	s, p, st, _ := newTestScheduler()

	_, err := s.Schedule(context.Background(), "emp-2", validReq())
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if p.calls != 0 || len(st.meetings) != 0 {
		t.Error("side effects for foreign application")
	}
}

func TestScheduleProviderFailure(t *testing.T) {
	s, p, st, _ := newTestScheduler()
	p.err = errors.New("zoom down")

	if _, err := s.Schedule(context.Background(), "emp-1", validReq()); err == nil {
		t.Fatal("expected error")
	}
	if len(st.meetings) != 0 {
		t.Error("meeting persisted after provider failure")
	}
}

func TestScheduleStatusUpdateIsBestEffort(t *testing.T) {
	s, _, st, _ := newTestScheduler()
	st.statusErr = errors.New("db blip")

	out, err := s.Schedule(context.Background(), "emp-1", validReq())
	if err != nil {
		t.Fatalf("schedule should succeed: %v", err)
	}
	if out.ApplicationStatusUpdated {
		t.Error("status update reported as done")
	}
	if len(st.meetings) != 1 {
		t.Error("meeting rolled back")
	}
}

func TestScheduleMalformedIDs(t *testing.T) {
	s, p, st, _ := newTestScheduler()
	req := validReq()
	req.ApplicantID = "abc"

	_, err := s.Schedule(context.Background(), "emp-1", req)
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 1 {
		t.Fatalf("expected one id error, got %v", err)
	}
	if p.calls != 0 || len(st.meetings) != 0 {
		t.Error("side effects for malformed id")
	}
}

func TestScheduleApplicantMismatch(t *testing.T) {
	s, p, st, _ := newTestScheduler()
	req := validReq()
	req.ApplicantID = "5a0c7e21-9b3d-4f6e-8c1a-3d2b4e5f6a03"

	if _, err := s.Schedule(context.Background(), "emp-1", req); !errors.Is(err, ErrApplicantMismatch) {
		t.Fatalf("expected ErrApplicantMismatch, got %v", err)
	}
	if p.calls != 0 || len(st.meetings) != 0 {
		t.Error("provider meeting created for another applicant")
	}
}
