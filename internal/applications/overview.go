package applications

import (
	"context"
	"fmt"
	"time"

	"hiway-api/internal/model"
)

const upcomingOnDashboard = 5

type MeetingLister interface {
	ScheduledMeetings(ctx context.Context, employerID string, from time.Time, limit int) ([]model.ScheduledMeeting, error)
}

type StatusCounter interface {
	StatusCounts(ctx context.Context, employerID string) (map[model.Status]int, error)
}

// Event is a scheduled interview as the calendar shows it.
type Event struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Date      time.Time           `json:"date"`
	Time      string              `json:"time"`
	Duration  int                 `json:"duration"`
	Applicant string              `json:"applicant"`
	Position  string              `json:"position"`
	Meeting   model.Meeting       `json:"meeting"`
	Status    model.MeetingStatus `json:"status"`
}

func ToEvent(sm model.ScheduledMeeting) Event {
	applicant, position := sm.ApplicantName, sm.Position
	if applicant == "" {
		applicant = UnknownApplicant
	}
	if position == "" {
		position = UnknownPosition
	}
	return Event{
		ID:        sm.ID,
		Title:     sm.Topic,
		Date:      sm.StartTime,
		Time:      sm.StartTime.Format("3:04 PM"),
		Duration:  sm.Duration,
		Applicant: applicant,
		Position:  position,
		Meeting:   sm.Meeting,
		Status:    sm.Status,
	}
}

type Dashboard struct {
	counts   StatusCounter
	meetings MeetingLister
	now      func() time.Time
}

func NewDashboard(c StatusCounter, m MeetingLister) *Dashboard {
	return &Dashboard{counts: c, meetings: m, now: time.Now}
}

// Events lists every scheduled meeting of the employer, earliest first.
func (d *Dashboard) Events(ctx context.Context, employerID string) ([]Event, error) {
	ms, err := d.meetings.ScheduledMeetings(ctx, employerID, time.Time{}, 0)
	if err != nil {
		return nil, fmt.Errorf("scheduled meetings: %w", err)
	}
	out := make([]Event, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToEvent(m))
	}
	return out, nil
}

type Overview struct {
	TotalApplications int                  `json:"total_applications"`
	ByStatus          map[model.Status]int `json:"by_status"`
	Upcoming          []Event              `json:"upcoming_interviews"`
}

func (d *Dashboard) Overview(ctx context.Context, employerID string) (*Overview, error) {
	counts, err := d.counts.StatusCounts(ctx, employerID)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	ov := &Overview{ByStatus: make(map[model.Status]int, len(model.Statuses)), Upcoming: []Event{}}
	for _, st := range model.Statuses {
		ov.ByStatus[st] = counts[st]
	}
	for _, n := range counts {
		ov.TotalApplications += n
	}

	ms, err := d.meetings.ScheduledMeetings(ctx, employerID, d.now(), upcomingOnDashboard)
	if err != nil {
		return nil, fmt.Errorf("upcoming meetings: %w", err)
	}
	for _, m := range ms {
		ov.Upcoming = append(ov.Upcoming, ToEvent(m))
	}
	return ov, nil
}
