package model

import "time"

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

type Meeting struct {
	ID            string        `json:"id"`
	MeetingID     string        `json:"meeting_id"`
	Topic         string        `json:"topic"`
	StartTime     time.Time     `json:"start_time"`
	Duration      int           `json:"duration"`
	Timezone      string        `json:"timezone"`
	JoinURL       string        `json:"join_url"`
	Password      string        `json:"password,omitempty"`
	Agenda        string        `json:"agenda,omitempty"`
	ApplicantID   string        `json:"applicant_id"`
	ApplicationID string        `json:"application_id"`
	EmployerID    string        `json:"employer_id"`
	Status        MeetingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
}

// ScheduledMeeting is a meeting joined with the applicant and posting it is for.
type ScheduledMeeting struct {
	Meeting
	ApplicantName string
	Position      string
}
