// Package user holds the directory view of accounts: profile data the
// rest of the system reads, as opposed to the credential store the auth
// flow owns. Both map onto the same users table.
package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	OrgID     uuid.UUID `json:"orgId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}

type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]User, error)
	Create(ctx context.Context, u User, passwordHash string) error
}

const userColumns = `id, email, first_name, last_name, role, org_id, created_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE org_id = $1 ORDER BY last_name, first_name`, orgID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing users")
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing users")
	}
	return users, nil
}

func (s *PostgresStore) Create(ctx context.Context, u User, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, org_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, passwordHash, u.FirstName, u.LastName, u.Role, u.OrgID)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "creating user")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.OrgID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "scanning user")
	}
	return &u, nil
}
