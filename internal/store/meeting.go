package store

import (
	"context"
	"time"

	"hiway-api/internal/model"
)

func (s *Store) CreateMeeting(ctx context.Context, m *model.Meeting) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO zoom_meetings
		   (id, meeting_id, topic, start_time, duration, timezone, join_url, password, agenda,
		    applicant_id, application_id, employer_id, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		m.ID, m.MeetingID, m.Topic, m.StartTime, m.Duration, m.Timezone, m.JoinURL, m.Password,
		m.Agenda, m.ApplicantID, m.ApplicationID, m.EmployerID, m.Status, m.CreatedAt,
	)
	return err
}

// ScheduledMeetings lists scheduled meetings starting at or after from, soonest
// first. A non-positive limit returns them all.
func (s *Store) ScheduledMeetings(ctx context.Context, employerID string, from time.Time, limit int) ([]model.ScheduledMeeting, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.meeting_id, m.topic, m.start_time, m.duration, m.timezone, m.join_url,
		        COALESCE(m.password, ''), COALESCE(m.agenda, ''),
		        COALESCE(m.applicant_id::text, ''), COALESCE(m.application_id::text, ''),
		        m.employer_id, m.status, m.created_at, m.updated_at,
		        COALESCE(js.full_name, ''), COALESCE(p.title, '')
		 FROM zoom_meetings m
		 LEFT JOIN job_seeker js ON js.job_seeker_id = m.applicant_id
		 LEFT JOIN job_application a ON a.application_id = m.application_id
		 LEFT JOIN job_post p ON p.job_post_id = a.job_post_id
		 WHERE m.employer_id = $1 AND m.status = 'scheduled' AND m.start_time >= $2
		 ORDER BY m.start_time
		 LIMIT $3`, employerID, from, lim,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduledMeeting
	for rows.Next() {
		var sm model.ScheduledMeeting
		m := &sm.Meeting
		if err := rows.Scan(&m.ID, &m.MeetingID, &m.Topic, &m.StartTime, &m.Duration, &m.Timezone,
			&m.JoinURL, &m.Password, &m.Agenda, &m.ApplicantID, &m.ApplicationID, &m.EmployerID,
			&m.Status, &m.CreatedAt, &m.UpdatedAt, &sm.ApplicantName, &sm.Position); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
