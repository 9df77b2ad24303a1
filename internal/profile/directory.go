// Package profile checks candidate profiles against the platform's
// mentorados table. The table belongs to another service and is only read.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by Require when the profile does not exist.
var ErrNotFound = errors.New("profile not found")

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Directory looks profiles up by id. *pgxpool.Pool satisfies querier.
type Directory struct {
	db querier
}

// NewDirectory returns a Directory over db.
func NewDirectory(db querier) *Directory {
	return &Directory{db: db}
}

// Exists reports whether a mentorado with the given id exists.
func (d *Directory) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := d.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM mentorados WHERE id::text = $1)`,
		id,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("profile.Exists: %w", err)
	}
	return ok, nil
}

// Require is Exists that turns a missing profile into ErrNotFound.
func (d *Directory) Require(ctx context.Context, id string) error {
	ok, err := d.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
