package model

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

type User struct {
	ID               string
	Email            string
	PasswordHash     string
	Name             string
	Provider         string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) Confirmed() bool { return u.EmailConfirmedAt != nil }

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string // cleared when the user's sessions are revoked
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Employer is keyed by AuthUserID everywhere outside the employer table itself;
// applications and meetings reference the identity, not EmployerID.
type Employer struct {
	EmployerID           string    `json:"employer_id"`
	AuthUserID           string    `json:"auth_user_id"`
	Role                 string    `json:"role"`
	Name                 string    `json:"name"`
	Company              string    `json:"company"`
	CompanyEmail         string    `json:"company_email"`
	CompanyPosition      string    `json:"company_position"`
	CompanyPhoneNumber   string    `json:"company_phone_number"`
	DTIOrSECRegistration string    `json:"dti_or_sec_registration"`
	BarangayClearance    string    `json:"barangay_clearance"`
	BusinessPermit       string    `json:"business_permit"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProfileUpdate is what the profile form may change.
type ProfileUpdate struct {
	Name                 string
	Company              string
	CompanyEmail         string
	CompanyPosition      string
	CompanyPhoneNumber   string
	DTIOrSECRegistration string
	BarangayClearance    string
	BusinessPermit       string
}

type JobSeeker struct {
	JobSeekerID            string    `json:"job_seeker_id"`
	FullName               string    `json:"full_name"`
	Email                  string    `json:"email"`
	Phone                  string    `json:"phone"`
	Address                string    `json:"address"`
	Skills                 []any     `json:"skills"`
	Experience             []any     `json:"experience"`
	Education              []any     `json:"education"`
	LicensesCertifications []any     `json:"licenses_certifications"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// EmailJob is one row of the outbound email outbox.
type EmailJob struct {
	ID           string      `json:"id"`
	ToEmail      string      `json:"to_email"`
	Subject      string      `json:"subject"`
	Body         string      `json:"body"`
	TemplateType string      `json:"template_type"`
	MeetingID    string      `json:"meeting_id,omitempty"`
	Status       EmailStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

type ReminderType string

const (
	Reminder24h ReminderType = "24h"
	Reminder1h  ReminderType = "1h"
	Reminder15m ReminderType = "15m"
)

type Reminder struct {
	ID            string       `json:"id"`
	MeetingID     string       `json:"meeting_id"`
	ReminderType  ReminderType `json:"reminder_type"`
	ScheduledTime time.Time    `json:"scheduled_time"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}
