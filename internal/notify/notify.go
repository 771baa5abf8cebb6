// Package notify writes applicant emails and interview reminders to the
// outbox tables. Delivery happens elsewhere; rows are optionally mirrored to
// the message broker so a worker can pick them up without polling.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"hiway-api/internal/model"
	"hiway-api/internal/queue"
	"hiway-api/internal/templates"
)

type Outbox interface {
	EnqueueEmail(ctx context.Context, j *model.EmailJob) error
	CreateReminders(ctx context.Context, rs []model.Reminder) error
}

type Employers interface {
	EmployerByAuthUser(ctx context.Context, authUserID string) (*model.Employer, error)
}

type Publisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

var reminderOffsets = []struct {
	typ    model.ReminderType
	before time.Duration
}{
	{model.Reminder24h, 24 * time.Hour},
	{model.Reminder1h, time.Hour},
	{model.Reminder15m, 15 * time.Minute},
}

type Notifier struct {
	out       Outbox
	employers Employers
	pub       Publisher // nil without a broker
}

func New(out Outbox, employers Employers, pub Publisher) *Notifier {
	return &Notifier{out: out, employers: employers, pub: pub}
}

// QueueEmail stores a pending email and returns the stored row.
func (n *Notifier) QueueEmail(ctx context.Context, to, subject, body, templateType, meetingID string) (*model.EmailJob, error) {
	if to == "" {
		return nil, errors.New("recipient is required")
	}
	j := &model.EmailJob{
		ID:           uuid.New().String(),
		ToEmail:      to,
		Subject:      subject,
		Body:         body,
		TemplateType: templateType,
		MeetingID:    meetingID,
		Status:       model.EmailPending,
	}
	if err := n.out.EnqueueEmail(ctx, j); err != nil {
		return nil, fmt.Errorf("enqueue email: %w", err)
	}
	n.publish(ctx, queue.EmailQueue, j)
	return j, nil
}

// QueueInvitation queues the interview invitation for a freshly booked meeting.
func (n *Notifier) QueueInvitation(ctx context.Context, m *model.Meeting, to, applicantName, position string) error {
	var e *model.Employer
	if n.employers != nil {
		var err error
		if e, err = n.employers.EmployerByAuthUser(ctx, m.EmployerID); err != nil {
			log.Printf("invitation for meeting %s: employer lookup: %v", m.ID, err)
		}
	}

	vars := Vars(e, applicantName, position)
	start := m.StartTime.In(location(m.Timezone))
	vars["interview_date"] = start.Format("Monday, January 2, 2006")
	vars["interview_time"] = start.Format("3:04 PM MST")
	vars["zoom_link"] = m.JoinURL

	r, err := templates.Render(templates.InterviewInvitation, vars)
	if err != nil {
		return err
	}
	_, err = n.QueueEmail(ctx, to, r.Subject, r.Message, templates.InterviewInvitation, m.ID)
	return err
}

// Vars are the template values every applicant email can draw on.
func Vars(e *model.Employer, applicantName, position string) map[string]string {
	v := map[string]string{
		"applicant_name": applicantName,
		"position":       position,
	}
	if e != nil {
		v["employer_name"] = e.Name
		v["company_name"] = e.Company
		v["contact_phone"] = e.CompanyPhoneNumber
		v["contact_email"] = e.CompanyEmail
	}
	return v
}

// Reminders returns the reminder rows for m that are still ahead of now.
func Reminders(m *model.Meeting, now time.Time) []model.Reminder {
	var out []model.Reminder
	for _, o := range reminderOffsets {
		at := m.StartTime.Add(-o.before)
		if !at.After(now) {
			continue
		}
		out = append(out, model.Reminder{
			ID:            uuid.New().String(),
			MeetingID:     m.ID,
			ReminderType:  o.typ,
			ScheduledTime: at,
			Status:        string(model.EmailPending),
		})
	}
	return out
}

// ScheduleReminders only records the rows; nothing in this process fires them.
func (n *Notifier) ScheduleReminders(ctx context.Context, m *model.Meeting, now time.Time) (int, error) {
	rs := Reminders(m, now)
	if len(rs) == 0 {
		return 0, nil
	}
	if err := n.out.CreateReminders(ctx, rs); err != nil {
		return 0, fmt.Errorf("create reminders: %w", err)
	}
	for i := range rs {
		log.Printf("reminder %s for meeting %s due at %s", rs[i].ReminderType, m.ID, rs[i].ScheduledTime.Format(time.RFC3339))
		n.publish(ctx, queue.ReminderQueue, &rs[i])
	}
	return len(rs), nil
}

func (n *Notifier) publish(ctx context.Context, q string, v any) {
	if n.pub == nil {
		return
	}
	if err := n.pub.Publish(ctx, q, v); err != nil {
		log.Printf("publish to %s: %v", q, err)
	}
}

func location(tz string) *time.Location {
	if loc, err := time.LoadLocation(tz); err == nil && tz != "" {
		return loc
	}
	return time.UTC
}
