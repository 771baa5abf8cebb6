package store

import (
	"context"
	"time"

	"hiway-api/internal/model"
)

const userCols = `id, email, COALESCE(password_hash, ''), name, provider, email_confirmed_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Provider,
		&u.EmailConfirmedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	var hash *string
	if u.PasswordHash != "" {
		hash = &u.PasswordHash
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, provider, email_confirmed_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Email, hash, u.Name, u.Provider, u.EmailConfirmedAt,
	)
	return translate(err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (s *Store) ConfirmEmail(ctx context.Context, userID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email_confirmed_at = COALESCE(email_confirmed_at, $2), updated_at = now()
		 WHERE id = $1`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
