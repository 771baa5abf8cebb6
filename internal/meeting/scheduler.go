package meeting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiway-api/internal/model"
	"hiway-api/internal/zoom"
)

// ErrApplicantMismatch means applicant_id is not the job seeker of the application.
var ErrApplicantMismatch = errors.New("applicant does not match application")

// InterviewStatus is what an application moves to once its interview is booked.
const InterviewStatus = model.StatusInterviewed

type Provider interface {
	CreateMeeting(ctx context.Context, req zoom.MeetingRequest) (*zoom.Meeting, error)
}

type Store interface {
	ApplicationForEmployer(ctx context.Context, employerID, applicationID string) (*model.Application, error)
	CreateMeeting(ctx context.Context, m *model.Meeting) error
	SetApplicationStatus(ctx context.Context, employerID, applicationID string, s model.Status) error
}

type Notifier interface {
	QueueInvitation(ctx context.Context, m *model.Meeting, to, applicantName, position string) error
	ScheduleReminders(ctx context.Context, m *model.Meeting, now time.Time) (int, error)
}

type Scheduler struct {
	provider Provider
	store    Store
	notify   Notifier
	now      func() time.Time
}

func NewScheduler(p Provider, s Store, n Notifier) *Scheduler {
	return &Scheduler{provider: p, store: s, notify: n, now: time.Now}
}

// Outcome reports the meeting plus which follow-ups went through. Follow-ups
// are best effort: a false here means the failure was logged, not retried.
type Outcome struct {
	Meeting                  *model.Meeting
	ApplicationStatusUpdated bool
	InvitationQueued         bool
	RemindersScheduled       int
}

// Schedule validates req, creates the provider meeting and persists it. Nothing
// is created when validation fails or the application is not the employer's.
func (s *Scheduler) Schedule(ctx context.Context, employerID string, req Request) (*Outcome, error) {
	now := s.now()
	if res := Validate(req, now); !res.IsValid {
		return nil, &ValidationError{Errors: res.Errors}
	}
	if bad := MalformedIDs(req); len(bad) > 0 {
		return nil, &ValidationError{Errors: idErrors(bad)}
	}
	start, _ := ParseStart(req.StartTime)

	app, err := s.store.ApplicationForEmployer(ctx, employerID, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(app.JobSeekerID, strings.TrimSpace(req.ApplicantID)) {
		return nil, ErrApplicantMismatch
	}

	zm, err := s.provider.CreateMeeting(ctx, zoom.MeetingRequest{
		Topic:     req.Topic,
		StartTime: start,
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		Agenda:    req.Agenda,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider meeting: %w", err)
	}

	m := &model.Meeting{
		ID:            uuid.New().String(),
		MeetingID:     zm.ID,
		Topic:         zm.Topic,
		StartTime:     zm.StartTime,
		Duration:      zm.Duration,
		Timezone:      zm.Timezone,
		JoinURL:       zm.JoinURL,
		Password:      zm.Password,
		Agenda:        zm.Agenda,
		ApplicantID:   req.ApplicantID,
		ApplicationID: req.ApplicationID,
		EmployerID:    employerID,
		Status:        model.MeetingScheduled,
		CreatedAt:     now,
	}
	// provider echoes may be sparse
	if m.Topic == "" {
		m.Topic = req.Topic
	}
	if m.StartTime.IsZero() {
		m.StartTime = start
	}
	if m.Duration == 0 {
		m.Duration = req.Duration
	}
	if m.Timezone == "" {
		m.Timezone = req.Timezone
	}
	if m.Agenda == "" {
		m.Agenda = req.Agenda
	}

	if err := s.store.CreateMeeting(ctx, m); err != nil {
		// the provider meeting already exists at this point
		log.Printf("persist meeting %s for application %s: %v", zm.ID, req.ApplicationID, err)
		return nil, fmt.Errorf("save meeting: %w", err)
	}

	out := &Outcome{Meeting: m}

	if err := s.store.SetApplicationStatus(ctx, employerID, req.ApplicationID, InterviewStatus); err != nil {
		log.Printf("meeting %s: update application %s status: %v", m.ID, req.ApplicationID, err)
	} else {
		out.ApplicationStatusUpdated = true
	}

	if s.notify == nil {
		return out, nil
	}
	if err := s.notify.QueueInvitation(ctx, m, req.ApplicantEmail, req.ApplicantName, req.Position); err != nil {
		log.Printf("meeting %s: queue invitation: %v", m.ID, err)
	} else {
		out.InvitationQueued = true
	}
	n, err := s.notify.ScheduleReminders(ctx, m, now)
	if err != nil {
		log.Printf("meeting %s: schedule reminders: %v", m.ID, err)
	}
	out.RemindersScheduled = n

	return out, nil
}

func idErrors(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f+" must be a valid id")
	}
	return out
}
