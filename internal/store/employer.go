package store

import (
	"context"

	"hiway-api/internal/model"
)

const employerCols = `employer_id, auth_user_id, role, name, company, company_email, company_position,
	company_phone_number, dti_or_sec_registration, barangay_clearance, business_permit,
	created_at, updated_at`

func scanEmployer(row interface{ Scan(...any) error }) (*model.Employer, error) {
	e := &model.Employer{}
	err := row.Scan(&e.EmployerID, &e.AuthUserID, &e.Role, &e.Name, &e.Company, &e.CompanyEmail,
		&e.CompanyPosition, &e.CompanyPhoneNumber, &e.DTIOrSECRegistration, &e.BarangayClearance,
		&e.BusinessPermit, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func (s *Store) EmployerByAuthUser(ctx context.Context, authUserID string) (*model.Employer, error) {
	return scanEmployer(s.pool.QueryRow(ctx,
		`SELECT `+employerCols+` FROM employer WHERE auth_user_id = $1`, authUserID))
}

// CreateEmployer is idempotent per identity; an existing record is returned as is.
func (s *Store) CreateEmployer(ctx context.Context, e *model.Employer) (*model.Employer, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO employer (employer_id, auth_user_id, role, name, company_email)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (auth_user_id) DO NOTHING`,
		e.EmployerID, e.AuthUserID, e.Role, e.Name, e.CompanyEmail,
	)
	if err != nil {
		return nil, err
	}
	return s.EmployerByAuthUser(ctx, e.AuthUserID)
}

func (s *Store) UpdateEmployerProfile(ctx context.Context, authUserID string, u model.ProfileUpdate) (*model.Employer, error) {
	return scanEmployer(s.pool.QueryRow(ctx,
		`UPDATE employer SET
		   name = $2, company = $3, company_email = $4, company_position = $5,
		   company_phone_number = $6, dti_or_sec_registration = $7,
		   barangay_clearance = $8, business_permit = $9, updated_at = now()
		 WHERE auth_user_id = $1
		 RETURNING `+employerCols,
		authUserID, u.Name, u.Company, u.CompanyEmail, u.CompanyPosition, u.CompanyPhoneNumber,
		u.DTIOrSECRegistration, u.BarangayClearance, u.BusinessPermit,
	))
}
