package store

import (
	"context"
	"encoding/json"
	"log"

	"hiway-api/internal/model"
)

func (s *Store) JobSeekerByID(ctx context.Context, id string) (*model.JobSeeker, error) {
	js := &model.JobSeeker{}
	var skills, exp, edu, lic []byte
	err := s.pool.QueryRow(ctx,
		`SELECT job_seeker_id, full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''),
		        skills, experience, education, licenses_certifications, created_at, updated_at
		 FROM job_seeker WHERE job_seeker_id = $1`, id,
	).Scan(&js.JobSeekerID, &js.FullName, &js.Email, &js.Phone, &js.Address,
		&skills, &exp, &edu, &lic, &js.CreatedAt, &js.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}

	js.Skills = jsonArray(skills)
	js.Experience = jsonArray(exp)
	js.Education = jsonArray(edu)
	js.LicensesCertifications = jsonArray(lic)
	return js, nil
}

// jsonArray turns a nullable jsonb column into a non-nil slice. Values that
// are not arrays are logged and come back empty.
func jsonArray(b []byte) []any {
	var out []any
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			log.Printf("decode jsonb array %.64q: %v", b, err)
			out = nil
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}
