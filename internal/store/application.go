package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hiway-api/internal/model"
)

// appCols reads the nullable foreign keys as empty strings once their rows are gone.
const appCols = `a.application_id, COALESCE(a.job_post_id::text, ''), COALESCE(a.job_seeker_id::text, ''), a.employer_id,
	COALESCE(a.match_confidence, 0), a.status, a.status_changed_at,
	COALESCE(a.source, ''), COALESCE(a.resume_url, ''), a.created_at, a.updated_at`

func scanApp(row interface{ Scan(...any) error }, extra ...any) (*model.Application, error) {
	a := &model.Application{}
	dst := append([]any{&a.ApplicationID, &a.JobPostID, &a.JobSeekerID, &a.EmployerID,
		&a.MatchConfidence, &a.Status, &a.StatusChangedAt, &a.Source, &a.ResumeURL,
		&a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := row.Scan(dst...); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// appWhere builds the shared filter so list and count never disagree.
func appWhere(f model.ApplicationFilter) (string, []any) {
	q := ` WHERE a.employer_id = $1`
	args := []any{f.EmployerID}
	if f.Status != "" {
		q += ` AND a.status = $2`
		args = append(args, f.Status)
	}
	return q, args
}

const rowSelect = `SELECT ` + appCols + `,
	        p.title, p.company, js.full_name, js.email, js.phone, js.skills, js.experience
	      FROM job_application a
	      LEFT JOIN job_post p ON p.job_post_id = a.job_post_id
	      LEFT JOIN job_seeker js ON js.job_seeker_id = a.job_seeker_id`

func scanRow(row interface{ Scan(...any) error }) (*model.ApplicationRow, error) {
	var r model.ApplicationRow
	var skills, exp []byte
	a, err := scanApp(row, &r.PostTitle, &r.PostCompany, &r.SeekerName, &r.SeekerEmail,
		&r.SeekerPhone, &skills, &exp)
	if err != nil {
		return nil, err
	}
	r.Application = *a
	r.Skills, r.Experience = skills, exp
	return &r, nil
}

func (s *Store) ListApplications(ctx context.Context, f model.ApplicationFilter) ([]model.ApplicationRow, error) {
	where, args := appWhere(f)
	q := rowSelect + where + ` ORDER BY a.created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		q += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ApplicationRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) CountApplications(ctx context.Context, f model.ApplicationFilter) (int, error) {
	where, args := appWhere(f)
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM job_application a`+where, args...).Scan(&n)
	return n, err
}

// ApplicationDetail is one joined application row owned by employerID.
func (s *Store) ApplicationDetail(ctx context.Context, employerID, id string) (*model.ApplicationRow, error) {
	return scanRow(s.pool.QueryRow(ctx,
		rowSelect+` WHERE a.application_id = $1 AND a.employer_id = $2`, id, employerID))
}

func (s *Store) ApplicationForEmployer(ctx context.Context, employerID, id string) (*model.Application, error) {
	return scanApp(s.pool.QueryRow(ctx,
		`SELECT `+appCols+` FROM job_application a
		 WHERE a.application_id = $1 AND a.employer_id = $2`, id, employerID))
}

// UpdateApplication writes only the fields set in u. A status change moves
// status_changed_at in the same statement.
func (s *Store) UpdateApplication(ctx context.Context, employerID, id string, u model.ApplicationUpdate) (*model.Application, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, employerID}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Status != nil {
		add("status", *u.Status)
		sets = append(sets, "status_changed_at = now()")
	}
	if u.Source != nil {
		add("source", *u.Source)
	}
	if u.ResumeURL != nil {
		add("resume_url", *u.ResumeURL)
	}

	return scanApp(s.pool.QueryRow(ctx,
		`UPDATE job_application a SET `+strings.Join(sets, ", ")+`
		 WHERE a.application_id = $1 AND a.employer_id = $2
		 RETURNING `+appCols, args...))
}

func (s *Store) SetApplicationStatus(ctx context.Context, employerID, id string, st model.Status) error {
	_, err := s.UpdateApplication(ctx, employerID, id, model.ApplicationUpdate{Status: &st})
	return err
}

func (s *Store) StatusCounts(ctx context.Context, employerID string) (map[model.Status]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, count(*) FROM job_application WHERE employer_id = $1 GROUP BY status`,
		employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Status]int)
	for rows.Next() {
		var st model.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

// HasApplied reports whether the job seeker has any application with this employer.
func (s *Store) HasApplied(ctx context.Context, employerID, jobSeekerID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_application WHERE employer_id = $1 AND job_seeker_id = $2)`,
		employerID, jobSeekerID).Scan(&ok)
	return ok, err
}

// CreateApplication is used by seeding and tests; applications normally
// arrive from the job seeker side.
func (s *Store) CreateApplication(ctx context.Context, a *model.Application) error {
	if a.StatusChangedAt.IsZero() {
		a.StatusChangedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_application
		   (application_id, job_post_id, job_seeker_id, employer_id, match_confidence,
		    status, status_changed_at, source, resume_url)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ApplicationID, a.JobPostID, a.JobSeekerID, a.EmployerID, a.MatchConfidence,
		a.Status, a.StatusChangedAt, a.Source, a.ResumeURL,
	)
	return translate(err)
}
