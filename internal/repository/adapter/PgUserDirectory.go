package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
)

// ErrUserNotFound is returned when no active user matches the id.
var ErrUserNotFound = errors.New("user not found")

// PgUserDirectory resolves identities against the accounts table managed by
// the main platform backend.
type PgUserDirectory struct {
	pool *pgxpool.Pool
}

func NewPgUserDirectory(pool *pgxpool.Pool) *PgUserDirectory {
	return &PgUserDirectory{pool: pool}
}

var _ auth.UserDirectory = (*PgUserDirectory)(nil)

func (d *PgUserDirectory) FindByID(ctx context.Context, id int64) (auth.Identity, error) {
	if d == nil || d.pool == nil {
		return auth.Anonymous, errors.New("PgUserDirectory: nil pool")
	}
	var ident auth.Identity
	err := d.pool.QueryRow(ctx, `
		SELECT id, full_name, email, role
		FROM accounts_customuser
		WHERE id = $1 AND is_active
	`, id).Scan(&ident.ID, &ident.FullName, &ident.Email, &ident.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Anonymous, ErrUserNotFound
	}
	if err != nil {
		return auth.Anonymous, err
	}
	return ident, nil
}
