package model

import "fmt"

// Status is the application lifecycle vocabulary. Transition legality is not
// enforced; any member may follow any other.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusWithdrawn   Status = "withdrawn"
	StatusShortlisted Status = "shortlisted"
	StatusInterviewed Status = "interviewed"
	StatusOffered     Status = "offered"
	StatusRejected    Status = "rejected"
	StatusHired       Status = "hired"
)

var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusWithdrawn,
	StatusShortlisted,
	StatusInterviewed,
	StatusOffered,
	StatusRejected,
	StatusHired,
}

// StatusDisplay is presentation only.
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var displays = map[Status]StatusDisplay{
	StatusDraft:       {"Draft", "gray", "clock"},
	StatusSubmitted:   {"Submitted", "yellow", "clock"},
	StatusWithdrawn:   {"Withdrawn", "orange", "x-circle"},
	StatusShortlisted: {"Shortlisted", "blue", "check-circle"},
	StatusInterviewed: {"Interviewed", "purple", "calendar"},
	StatusOffered:     {"Offered", "green", "check-circle"},
	StatusRejected:    {"Rejected", "red", "x-circle"},
	StatusHired:       {"Hired", "emerald", "check-circle"},
}

func (s Status) Valid() bool {
	_, ok := displays[s]
	return ok
}

func (s Status) Display() StatusDisplay {
	if d, ok := displays[s]; ok {
		return d
	}
	return StatusDisplay{Label: "Unknown", Color: "gray", Icon: "clock"}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}
