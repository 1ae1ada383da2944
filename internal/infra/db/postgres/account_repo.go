// File: internal/infra/db/postgres/account_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-companion-chat/internal/domain"
	"ai-companion-chat/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo backs the username-claim flow. There are no passwords; a row
// only reserves the name so two people cannot chat as the same identity.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, username string) error {
	const q = `INSERT INTO accounts (username, created_at) VALUES ($1, NOW());`
	if _, err := r.pool.Exec(ctx, q, username); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("account create: %w", err)
	}
	return nil
}

func (r *AccountRepo) Exists(ctx context.Context, username string) (bool, error) {
	const q = `SELECT 1 FROM accounts WHERE username = $1;`
	var one int
	if err := r.pool.QueryRow(ctx, q, username).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("account lookup: %w", err)
	}
	return true, nil
}
