package model

import (
	"encoding/json"
	"time"
)

type Application struct {
	ApplicationID   string    `json:"application_id"`
	JobPostID       string    `json:"job_post_id"`
	JobSeekerID     string    `json:"job_seeker_id"`
	EmployerID      string    `json:"employer_id"`
	MatchConfidence float64   `json:"match_confidence"`
	Status          Status    `json:"status"`
	StatusChangedAt time.Time `json:"status_changed_at"`
	Source          string    `json:"source"`
	ResumeURL       string    `json:"resume_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplicationRow is an application joined with its posting and candidate.
// Joined columns are nil when the related row is missing.
type ApplicationRow struct {
	Application
	PostTitle   *string
	PostCompany *string
	SeekerName  *string
	SeekerEmail *string
	SeekerPhone *string
	Skills      json.RawMessage
	Experience  json.RawMessage
}

type ApplicationFilter struct {
	EmployerID string
	Status     string // empty means any
	Limit      int
	Offset     int
}

// ApplicationUpdate carries the fields an employer may change. A non-nil
// Status also refreshes status_changed_at.
type ApplicationUpdate struct {
	Status    *Status
	Source    *string
	ResumeURL *string
}

type Applicant struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Avatar            string  `json:"avatar"`
	Experience        string  `json:"experience"`
	YearsOfExperience float64 `json:"years_of_experience"`
}

// ApplicationView is the display model returned by the listing API.
type ApplicationView struct {
	ApplicationID   string        `json:"application_id"`
	JobPostID       string        `json:"job_post_id"`
	JobSeekerID     string        `json:"job_seeker_id"`
	EmployerID      string        `json:"employer_id"`
	Position        string        `json:"position"`
	Company         string        `json:"company"`
	Status          Status        `json:"status"`
	StatusDisplay   StatusDisplay `json:"status_display"`
	AppliedDate     time.Time     `json:"appliedDate"`
	ResumeURL       string        `json:"resume_url"`
	MatchConfidence float64       `json:"match_confidence"`
	Applicant       Applicant     `json:"applicant"`
	Skills          []string      `json:"skills"`
	CoverLetter     string        `json:"coverLetter"`
}
