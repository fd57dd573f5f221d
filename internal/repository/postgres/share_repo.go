package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
	"github.com/vx6Fid/envelopr/internal/repository"
)

// ShareRepo implements ShareRepository using PostgreSQL.
type ShareRepo struct{ db *DB }

// NewShareRepo constructs a share grant repository.
func NewShareRepo(db *DB) *ShareRepo { return &ShareRepo{db: db} }

var _ repository.ShareRepository = (*ShareRepo)(nil)

// Grant inserts the (file, user) pair unless it already exists.
func (r *ShareRepo) Grant(ctx context.Context, fileID, actorID, userID uuid.UUID, guard repository.GuardFunc) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		f, granted, err := lockFile(ctx, tx, fileID, actorID)
		if err != nil {
			return err
		}
		if err := guard(f, granted); err != nil {
			return err
		}
		const ins = `
INSERT INTO share_grants (file_id, user_id) VALUES ($1, $2)
ON CONFLICT (file_id, user_id) DO NOTHING`
		_, err = tx.Exec(ctx, ins, fileID, userID)
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		return err
	})
}

// Revoke deletes the (file, user) pair if present.
func (r *ShareRepo) Revoke(ctx context.Context, fileID, actorID, userID uuid.UUID, guard repository.GuardFunc) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		f, granted, err := lockFile(ctx, tx, fileID, actorID)
		if err != nil {
			return err
		}
		if err := guard(f, granted); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM share_grants WHERE file_id=$1 AND user_id=$2`, fileID, userID)
		return err
	})
}

// Grantees lists users holding a grant on fileID.
func (r *ShareRepo) Grantees(ctx context.Context, fileID uuid.UUID) ([]model.User, error) {
	const q = `
SELECT u.id, u.username, u.created_at
FROM share_grants g
JOIN users u ON u.id = g.user_id
WHERE g.file_id = $1
ORDER BY u.username ASC`
	rows, err := r.db.Pool.Query(ctx, q, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err = rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
