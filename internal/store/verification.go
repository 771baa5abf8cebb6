package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateVerification(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO email_verifications (id, user_id, code_hash, expires_at) VALUES ($1,$2,$3,$4)`,
		uuid.New().String(), userID, codeHash, expiresAt,
	)
	return err
}

// ConsumeVerification marks an unused, unexpired code as used and confirms the
// owner's email. Returns the owner's id.
func (s *Store) ConsumeVerification(ctx context.Context, codeHash string, now time.Time) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var userID string
	err = tx.QueryRow(ctx,
		`UPDATE email_verifications SET used_at = $2
		 WHERE code_hash = $1 AND used_at IS NULL AND expires_at > $2
		 RETURNING user_id`, codeHash, now,
	).Scan(&userID)
	if err != nil {
		return "", translate(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET email_confirmed_at = COALESCE(email_confirmed_at, $2), updated_at = now()
		 WHERE id = $1`, userID, now)
	if err != nil {
		return "", err
	}

	return userID, tx.Commit(ctx)
}
