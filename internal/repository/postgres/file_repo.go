package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
	"github.com/vx6Fid/envelopr/internal/repository"
)

// selectFileWithGrant loads one file plus whether $2 holds a grant on it.
const selectFileWithGrant = `
SELECT f.id, f.owner_id, f.name, f.content, f.is_public, f.created_at, f.updated_at,
       EXISTS (SELECT 1 FROM share_grants g WHERE g.file_id = f.id AND g.user_id = $2)
FROM files f WHERE f.id = $1`

// FileRepo implements FileRepository using PostgreSQL.
type FileRepo struct{ db *DB }

// NewFileRepo constructs a file repository.
func NewFileRepo(db *DB) *FileRepo { return &FileRepo{db: db} }

var _ repository.FileRepository = (*FileRepo)(nil)

// Create inserts a new file row.
func (r *FileRepo) Create(ctx context.Context, f *model.File) error {
	const q = `
INSERT INTO files (id, owner_id, name, content, is_public)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, f.ID, f.OwnerID, f.Name, f.Content, f.IsPublic).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("owner: %w", errs.ErrNotFound)
	case isUniqueViolation(err):
		return errs.ErrAlreadyExists
	}
	return err
}

// Get returns a file and the grant state of userID.
func (r *FileRepo) Get(ctx context.Context, id, userID uuid.UUID) (*model.File, bool, error) {
	return scanFileWithGrant(r.db.Pool.QueryRow(ctx, selectFileWithGrant, id, userID))
}

// ListOwned returns file metadata owned by ownerID.
func (r *FileRepo) ListOwned(ctx context.Context, ownerID uuid.UUID, order model.ListOrder) ([]model.File, error) {
	q := `
SELECT f.id, f.owner_id, f.name, f.is_public, f.created_at, f.updated_at
FROM files f
WHERE f.owner_id = $1
ORDER BY ` + orderClause(order)
	return r.listMeta(ctx, q, ownerID)
}

// ListGranted returns file metadata shared with userID.
func (r *FileRepo) ListGranted(ctx context.Context, userID uuid.UUID, order model.ListOrder) ([]model.File, error) {
	q := `
SELECT f.id, f.owner_id, f.name, f.is_public, f.created_at, f.updated_at
FROM files f
JOIN share_grants g ON g.file_id = f.id
WHERE g.user_id = $1
ORDER BY ` + orderClause(order)
	return r.listMeta(ctx, q, userID)
}

func (r *FileRepo) listMeta(ctx context.Context, q string, arg uuid.UUID) ([]model.File, error) {
	rows, err := r.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.File{}
	for rows.Next() {
		var f model.File
		if err = rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.IsPublic, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Mutate applies fn to the row-locked file and persists the result.
func (r *FileRepo) Mutate(ctx context.Context, id, userID uuid.UUID, fn repository.MutateFunc) (*model.File, error) {
	var out *model.File
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		f, granted, err := lockFile(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if err := fn(f, granted); err != nil {
			return err
		}
		const upd = `UPDATE files SET name=$2, content=$3, is_public=$4, updated_at=now() WHERE id=$1 RETURNING updated_at`
		if err := tx.QueryRow(ctx, upd, f.ID, f.Name, f.Content, f.IsPublic).Scan(&f.UpdatedAt); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the file and its grants in one transaction.
func (r *FileRepo) Delete(ctx context.Context, id, userID uuid.UUID, guard repository.GuardFunc) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		f, granted, err := lockFile(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if err := guard(f, granted); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM share_grants WHERE file_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM files WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

// lockFile loads a file FOR UPDATE together with userID's grant state.
func lockFile(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*model.File, bool, error) {
	return scanFileWithGrant(tx.QueryRow(ctx, selectFileWithGrant+` FOR UPDATE OF f`, id, userID))
}

func scanFileWithGrant(row pgx.Row) (*model.File, bool, error) {
	var (
		f       model.File
		granted bool
	)
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Content, &f.IsPublic, &f.CreatedAt, &f.UpdatedAt, &granted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, errs.ErrNotFound
		}
		return nil, false, err
	}
	return &f, granted, nil
}

// orderClause maps a ListOrder onto a fixed set of ORDER BY clauses.
func orderClause(o model.ListOrder) string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	switch o.By {
	case model.SortByName:
		return "f.name " + dir + ", f.id " + dir
	default:
		return "f.created_at " + dir + ", f.id " + dir
	}
}
