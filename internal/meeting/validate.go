// Package meeting validates interview scheduling requests and turns valid ones
// into provider meetings that are persisted against an application.
package meeting

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinDuration     = 15
	MaxDuration     = 480
	DefaultDuration = 60
	DefaultTimezone = "UTC"
)

// Request is the body of a create-meeting call. StartTime is kept as the raw
// string so a malformed value surfaces as a validation error.
type Request struct {
	ApplicantID    string `json:"applicant_id"`
	ApplicationID  string `json:"application_id"`
	Topic          string `json:"topic"`
	Position       string `json:"position"`
	StartTime      string `json:"start_time"`
	Duration       int    `json:"duration"`
	Timezone       string `json:"timezone"`
	Agenda         string `json:"agenda"`
	ApplicantEmail string `json:"applicant_email"`
	ApplicantName  string `json:"applicant_name"`
}

type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid meeting request: " + strings.Join(e.Errors, "; ")
}

var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseStart accepts RFC 3339 and the zone-less forms browsers send from
// datetime-local inputs; the latter are read in UTC.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range startLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised start time %q", s)
}

// Validate reports every violated constraint, not just the first.
func Validate(req Request, now time.Time) Result {
	var errs []string

	if strings.TrimSpace(req.Topic) == "" && strings.TrimSpace(req.Position) == "" {
		errs = append(errs, "Meeting topic or position is required")
	}

	if strings.TrimSpace(req.StartTime) == "" {
		errs = append(errs, "Start time is required")
	} else if start, err := ParseStart(req.StartTime); err != nil {
		errs = append(errs, "Start time must be a valid date")
	} else if !start.After(now) {
		errs = append(errs, "Start time must be in the future")
	}

	if req.Duration < MinDuration || req.Duration > MaxDuration {
		errs = append(errs, fmt.Sprintf("Duration must be between %d and %d minutes", MinDuration, MaxDuration))
	}
	if strings.TrimSpace(req.ApplicantEmail) == "" {
		errs = append(errs, "Applicant email is required")
	}
	if strings.TrimSpace(req.ApplicantName) == "" {
		errs = append(errs, "Applicant name is required")
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// MissingFields lists the body fields the create-meeting route insists on
// before defaults are applied.
func MissingFields(req Request) []string {
	var out []string
	for _, f := range []struct {
		name, val string
	}{
		{"applicant_id", req.ApplicantID},
		{"application_id", req.ApplicationID},
		{"start_time", req.StartTime},
		{"applicant_email", req.ApplicantEmail},
		{"applicant_name", req.ApplicantName},
		{"position", req.Position},
	} {
		if strings.TrimSpace(f.val) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// MalformedIDs lists the id fields that are present but not UUIDs.
func MalformedIDs(req Request) []string {
	var out []string
	for _, f := range []struct {
		name, val string
	}{
		{"applicant_id", req.ApplicantID},
		{"application_id", req.ApplicationID},
	} {
		if v := strings.TrimSpace(f.val); v != "" {
			if _, err := uuid.Parse(v); err != nil {
				out = append(out, f.name)
			}
		}
	}
	return out
}

// WithDefaults fills duration, timezone, topic and agenda when absent.
func WithDefaults(req Request) Request {
	if req.Duration == 0 {
		req.Duration = DefaultDuration
	}
	if req.Timezone == "" {
		req.Timezone = DefaultTimezone
	}
	if req.Topic == "" {
		req.Topic = fmt.Sprintf("%s Interview - %s", req.Position, req.ApplicantName)
	}
	if req.Agenda == "" {
		req.Agenda = fmt.Sprintf("Interview for %s position with %s", req.Position, req.ApplicantName)
	}
	return req
}
