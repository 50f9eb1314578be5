package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	domainErrors "github.com/MrGreenNV/bank-rest-test/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// AccountRepository implements account.Repository using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

type scanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, account_seq, account_number, account_name, balance, pin_digest, version, status, created_at, updated_at`

// scanAccount scans an account from any source implementing the scanner interface.
func (r *AccountRepository) scanAccount(s scanner) (*account.Account, error) {
	a := &account.Account{}
	var status string
	err := s.Scan(&a.ID, &a.Seq, &a.Number, &a.Name, &a.Balance, &a.PinDigest, &a.Version, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Status = account.Status(status)
	return a, nil
}

// Create inserts a new account. The display number derives from the
// store-assigned sequence and is written back in the same call, so callers
// should run Create inside a transaction.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	var seq int64
	err := r.db(ctx).QueryRow(ctx,
		`INSERT INTO accounts (id, account_name, balance, pin_digest, version, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING account_seq`,
		a.ID, a.Name, a.Balance, a.PinDigest, a.Version, string(a.Status), a.CreatedAt, a.UpdatedAt,
	).Scan(&seq)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainErrors.ErrDuplicateName
		}
		return fmt.Errorf("insert account: %w", err)
	}

	a.AssignNumber(seq)
	if _, err := r.db(ctx).Exec(ctx,
		`UPDATE accounts SET account_number = $1 WHERE id = $2`, a.Number, a.ID,
	); err != nil {
		return fmt.Errorf("assign account number: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.scanAccount(r.db(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// GetByName retrieves an account by its name. Deactivation frees a name for
// reuse, so an active and a soft-deleted account may share one; the active
// row wins, with the newest deleted row as fallback.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*account.Account, error) {
	return r.scanAccount(r.db(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_name = $1
		 ORDER BY (status = 'active') DESC, created_at DESC LIMIT 1`, name))
}

// ExistsActiveByName reports whether an active account already holds the name.
func (r *AccountRepository) ExistsActiveByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_name = $1 AND status = 'active')`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by name: %w", err)
	}
	return exists, nil
}

// List retrieves accounts ordered by their sequence, soft-deleted included.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_seq`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update updates an account with optimistic locking.
func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE accounts SET account_name = $1, balance = $2, version = $3, status = $4, updated_at = $5
		 WHERE id = $6 AND version = $7`,
		a.Name, a.Balance, a.Version, string(a.Status), a.UpdatedAt, a.ID, a.Version-1,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainErrors.ErrDuplicateName
		}
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOptimisticLockFailed
	}
	return nil
}

// Delete permanently removes the account record.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrAccountNotFound
	}
	return nil
}

// Lock acquires a row-level lock on the account (SELECT FOR UPDATE).
func (r *AccountRepository) Lock(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.scanAccount(r.db(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
}
