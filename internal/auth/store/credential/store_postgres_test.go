package credential

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func credentialRows(id, orgID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "mfa_secret", "mfa_enabled",
		"role", "org_id", "first_name", "last_name",
	}).AddRow(id, "fm@acme.example", "$2a$10$hash", "JBSWY3DPEHPK3PXP", true,
		"Finance Manager", orgID, "Pat", "Finley")
}

func TestFindByEmail(t *testing.T) {
	store, mock := newMock(t)
	userID, orgID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("fm@acme.example").
		WillReturnRows(credentialRows(userID, orgID))

	c, err := store.FindByEmail(context.Background(), "fm@acme.example")
	require.NoError(t, err)
	assert.Equal(t, userID, c.UserID)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", c.MFASecret)
	assert.True(t, c.MFAEnabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("ghost@acme.example").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindByEmail(context.Background(), "ghost@acme.example")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSaveMFASecret(t *testing.T) {
	store, mock := newMock(t)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET mfa_secret = \$2 WHERE id = \$1`).
		WithArgs(userID, "NEWSECRET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveMFASecret(context.Background(), userID, "NEWSECRET"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnableMFARequiresSecretOnFile(t *testing.T) {
	store, mock := newMock(t)
	userID := uuid.New()

	// The guard clause in SQL means a user without a secret matches no rows.
	mock.ExpectExec(`UPDATE users SET mfa_enabled = TRUE WHERE id = \$1 AND mfa_secret IS NOT NULL`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.EnableMFA(context.Background(), userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpdatePasswordHash(t *testing.T) {
	store, mock := newMock(t)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET password_hash = \$2 WHERE id = \$1`).
		WithArgs(userID, "$2a$10$newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpdatePasswordHash(context.Background(), userID, "$2a$10$newhash"))
}
