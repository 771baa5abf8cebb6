package profile

import (
	"context"
	"errors"
	"log"
	"strings"

	"hiway-api/internal/model"
)

type Finder interface {
	EmployerByAuthUser(ctx context.Context, authUserID string) (*model.Employer, error)
}

type Checker struct {
	finder Finder
}

func NewChecker(f Finder) *Checker {
	return &Checker{finder: f}
}

// Check loads the employer for authUserID. A missing record is (nil, false, nil).
func (c *Checker) Check(ctx context.Context, authUserID string) (*model.Employer, bool, error) {
	e, err := c.finder.EmployerByAuthUser(ctx, authUserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, Complete(e), nil
}

// IsComplete never fails: lookup errors and missing records count as incomplete.
func (c *Checker) IsComplete(ctx context.Context, authUserID string) bool {
	_, ok, err := c.Check(ctx, authUserID)
	if err != nil {
		log.Printf("profile check %s: %v", authUserID, err)
		return false
	}
	return ok
}

func Complete(e *model.Employer) bool {
	return e != nil && len(Missing(e)) == 0
}

// Missing names the required fields that are blank.
func Missing(e *model.Employer) []string {
	var out []string
	req := []struct {
		name string
		val  string
	}{
		{"name", e.Name},
		{"company", e.Company},
		{"company_email", e.CompanyEmail},
		{"company_position", e.CompanyPosition},
		{"company_phone_number", e.CompanyPhoneNumber},
	}
	for _, f := range req {
		if strings.TrimSpace(f.val) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// ValidateUpdate applies the same rule to a submitted profile form.
func ValidateUpdate(u model.ProfileUpdate) error {
	e := &model.Employer{
		Name:               u.Name,
		Company:            u.Company,
		CompanyEmail:       u.CompanyEmail,
		CompanyPosition:    u.CompanyPosition,
		CompanyPhoneNumber: u.CompanyPhoneNumber,
	}
	if len(Missing(e)) > 0 {
		return ErrIncomplete
	}
	return nil
}

var ErrIncomplete = errors.New("required profile fields missing")
