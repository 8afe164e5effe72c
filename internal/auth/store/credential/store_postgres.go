// Package credential persists per-account authentication material.
package credential

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// PostgresStore persists credentials in PostgreSQL. Credentials live on the
// users table; this store only ever reads and mutates the auth columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const credentialColumns = `id, email, password_hash, coalesce(mfa_secret, ''), mfa_enabled, role, org_id, first_name, last_name`

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM users WHERE email = $1`, email)
	return scanCredential(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, userID uuid.UUID) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM users WHERE id = $1`, userID)
	return scanCredential(row)
}

// SaveMFASecret stores freshly generated key material. It never clears an
// existing secret; rotation is out of scope for this core.
func (s *PostgresStore) SaveMFASecret(ctx context.Context, userID uuid.UUID, secret string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = $2 WHERE id = $1`, userID, secret)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save mfa secret")
	}
	return requireRowAffected(res, "user")
}

// EnableMFA flips the enabled flag after the first successful verification.
func (s *PostgresStore) EnableMFA(ctx context.Context, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = TRUE WHERE id = $1 AND mfa_secret IS NOT NULL`, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "enable mfa")
	}
	return requireRowAffected(res, "user")
}

// UpdatePasswordHash replaces the stored hash (forgot-password flow).
func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update password hash")
	}
	return requireRowAffected(res, "user")
}

func scanCredential(row *sql.Row) (*models.Credential, error) {
	var c models.Credential
	err := row.Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.MFASecret,
		&c.MFAEnabled, &c.Role, &c.OrgID, &c.FirstName, &c.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan credential")
	}
	return &c, nil
}

func requireRowAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "rows affected")
	}
	if n == 0 {
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	}
	return nil
}
