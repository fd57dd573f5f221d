package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var userCols = []string{"id", "username", "pwd_hash", "salt", "created_at"}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		PwdHash:  []byte("h"),
		Salt:     []byte("s"),
	}
	now := time.Now()

	insert := regexp.QuoteMeta(`INSERT INTO users (id, username, pwd_hash, salt) VALUES ($1, $2, $3, $4) RETURNING created_at`)

	mock.ExpectQuery(insert).
		WithArgs(u.ID, u.Username, u.PwdHash, u.Salt).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	require.NoError(t, r.Create(ctx, u))
	require.Equal(t, now, u.CreatedAt)

	mock.ExpectQuery(insert).
		WithArgs(u.ID, u.Username, u.PwdHash, u.Salt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	sel := regexp.QuoteMeta(`SELECT id, username, pwd_hash, salt, created_at FROM users WHERE id=$1`)

	mock.ExpectQuery(sel).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id, "alice", []byte("h"), []byte("s"), time.Now()))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "alice", u.Username)

	mock.ExpectQuery(sel).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	sel := regexp.QuoteMeta(`SELECT id, username, pwd_hash, salt, created_at FROM users WHERE username=$1`)

	mock.ExpectQuery(sel).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id, "bob", []byte("h"), []byte("s"), time.Now()))
	u, err := r.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	mock.ExpectQuery(sel).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
