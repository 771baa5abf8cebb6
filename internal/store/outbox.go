package store

import (
	"context"

	"hiway-api/internal/model"
)

func (s *Store) EnqueueEmail(ctx context.Context, j *model.EmailJob) error {
	var meetingID *string
	if j.MeetingID != "" {
		meetingID = &j.MeetingID
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO email_queue (id, to_email, subject, body, template_type, meeting_id, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at`,
		j.ID, j.ToEmail, j.Subject, j.Body, j.TemplateType, meetingID, j.Status,
	).Scan(&j.CreatedAt)
}

// CreateReminders inserts all rows or none.
func (s *Store) CreateReminders(ctx context.Context, rs []model.Reminder) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, r := range rs {
		_, err = tx.Exec(ctx,
			`INSERT INTO meeting_reminders (id, meeting_id, reminder_type, scheduled_time, status)
			 VALUES ($1,$2,$3,$4,$5)`,
			r.ID, r.MeetingID, r.ReminderType, r.ScheduledTime, r.Status,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
