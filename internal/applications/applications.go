// Package applications is the employer-facing read and update layer over job
// applications: one query/transform path shared by listing, export and the
// dashboard.
package applications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"hiway-api/internal/model"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100

	UnknownPosition  = "Unknown Position"
	UnknownCompany   = "Unknown Company"
	UnknownApplicant = "Unknown Applicant"
	DefaultAvatar    = "/avatars/default.jpg"
	CoverLetterStub  = "Cover letter content would be stored separately"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrMissingID     = errors.New("application id is required")
)

type Store interface {
	ListApplications(ctx context.Context, f model.ApplicationFilter) ([]model.ApplicationRow, error)
	CountApplications(ctx context.Context, f model.ApplicationFilter) (int, error)
	UpdateApplication(ctx context.Context, employerID, id string, u model.ApplicationUpdate) (*model.Application, error)
}

// Linker turns a stored resume reference into something a browser can open.
type Linker interface {
	Link(ctx context.Context, ref string) (string, error)
}

type Service struct {
	store Store
	links Linker
}

func NewService(st Store, l Linker) *Service {
	return &Service{store: st, links: l}
}

type Page struct {
	Applications []model.ApplicationView `json:"applications"`
	Total        int                     `json:"total"`
	Offset       int                     `json:"offset"`
	Limit        int                     `json:"limit"`
}

// ParsePage reads limit/offset query values. Malformed values fall back to the
// defaults and limit is clamped to [1, MaxLimit].
func ParsePage(limit, offset string) (int, int) {
	l, err := strconv.Atoi(limit)
	if err != nil {
		l = DefaultLimit
	}
	l = max(1, min(l, MaxLimit))

	o, err := strconv.Atoi(offset)
	if err != nil || o < 0 {
		o = 0
	}
	return l, o
}

// StatusFilter maps the "all" sentinel and blanks to no filter.
func StatusFilter(s string) string {
	s = strings.TrimSpace(s)
	if s == "all" {
		return ""
	}
	return s
}

func (s *Service) List(ctx context.Context, f model.ApplicationFilter) (*Page, error) {
	rows, err := s.store.ListApplications(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	total, err := s.store.CountApplications(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	return &Page{
		Applications: s.views(ctx, rows),
		Total:        total,
		Offset:       f.Offset,
		Limit:        f.Limit,
	}, nil
}

// All returns every matching application, unpaginated.
func (s *Service) All(ctx context.Context, employerID, status string) ([]model.ApplicationView, error) {
	rows, err := s.store.ListApplications(ctx, model.ApplicationFilter{EmployerID: employerID, Status: StatusFilter(status)})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return s.views(ctx, rows), nil
}

func (s *Service) views(ctx context.Context, rows []model.ApplicationRow) []model.ApplicationView {
	out := make([]model.ApplicationView, 0, len(rows))
	for _, r := range rows {
		v := Transform(r)
		v.ResumeURL = s.resumeLink(ctx, v.ResumeURL)
		out = append(out, v)
	}
	return out
}

func (s *Service) resumeLink(ctx context.Context, ref string) string {
	if ref == "" || s.links == nil {
		return ref
	}
	u, err := s.links.Link(ctx, ref)
	if err != nil {
		log.Printf("resume link %q: %v", ref, err)
		return ref
	}
	return u
}

// Transform builds the display model for one joined row.
func Transform(r model.ApplicationRow) model.ApplicationView {
	years := YearsOfExperience(r.Experience)
	return model.ApplicationView{
		ApplicationID:   r.ApplicationID,
		JobPostID:       r.JobPostID,
		JobSeekerID:     r.JobSeekerID,
		EmployerID:      r.EmployerID,
		Position:        or(r.PostTitle, UnknownPosition),
		Company:         or(r.PostCompany, UnknownCompany),
		Status:          r.Status,
		StatusDisplay:   r.Status.Display(),
		AppliedDate:     r.CreatedAt,
		ResumeURL:       r.ResumeURL,
		MatchConfidence: r.MatchConfidence,
		Applicant: model.Applicant{
			Name:              or(r.SeekerName, UnknownApplicant),
			Email:             or(r.SeekerEmail, ""),
			Phone:             or(r.SeekerPhone, ""),
			Avatar:            DefaultAvatar,
			Experience:        strconv.FormatFloat(years, 'f', -1, 64) + " years",
			YearsOfExperience: years,
		},
		Skills:      Skills(r.Skills),
		CoverLetter: CoverLetterStub,
	}
}

func or(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}

// YearsOfExperience sums the numeric "years" (or "years_of_experience") field
// of every experience entry. Numbers may arrive as JSON strings; anything else
// counts as zero.
func YearsOfExperience(raw json.RawMessage) float64 {
	var entries []map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return 0
	}
	var total float64
	for _, e := range entries {
		for _, k := range []string{"years", "years_of_experience"} {
			if v, ok := e[k]; ok {
				total += number(v)
				break
			}
		}
	}
	return total
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Skills flattens a skills array of strings or {"name": ...} objects.
func Skills(raw json.RawMessage) []string {
	out := []string{}
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if name, ok := v["name"].(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}
