package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskledger/taskledger/internal/shared"
)

// Repository defines persistence operations for the credential store.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	// FindByIDAndActiveToken returns the account only when token is present
	// in its token list under scope and has not expired. This is the
	// liveness half of token checking.
	FindByIDAndActiveToken(ctx context.Context, id int64, token, scope string) (*Account, error)
	Insert(ctx context.Context, email, passwordHash string) (*Account, error)
	AppendToken(ctx context.Context, accountID int64, tok AuthToken) error
	// RemoveToken deletes by exact token value. Removing a token that is not
	// present is a no-op.
	RemoveToken(ctx context.Context, accountID int64, token string) error
	ListTokens(ctx context.Context, accountID int64) ([]AuthToken, error)
	// DeleteExpiredTokens prunes token rows whose expiry has passed and
	// reports how many were removed.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	if err := row.Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("accounts: scan account: %w", err)
	}
	return &acc, nil
}

// FindByEmail fetches an account by its login email. Lookup is exact:
// uniqueness is case-sensitive as stored.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByID fetches an account by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// FindByIDAndActiveToken fetches the account only if the exact token is
// still attached under the given scope and unexpired.
func (r *PGRepository) FindByIDAndActiveToken(ctx context.Context, id int64, token, scope string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT a.id, a.email, a.password_hash, a.created_at, a.updated_at
		FROM accounts a
		JOIN account_tokens t ON t.account_id = a.id
		WHERE a.id = $1 AND t.token = $2 AND t.scope = $3 AND t.expires_at > now()`,
		id, token, scope)
	return scanAccount(row)
}

// Insert creates a new account row. A unique violation on email maps to
// shared.ErrDuplicateEmail.
func (r *PGRepository) Insert(ctx context.Context, email, passwordHash string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING `+accountColumns,
		email, passwordHash)
	acc, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, err
	}
	return acc, nil
}

// AppendToken attaches a freshly issued token to the account.
func (r *PGRepository) AppendToken(ctx context.Context, accountID int64, tok AuthToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO account_tokens (account_id, scope, token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		accountID, tok.Scope, tok.Token, tok.IssuedAt.UTC(), tok.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("accounts: append token: %w", err)
	}
	return nil
}

// RemoveToken deletes the token row by exact value match.
func (r *PGRepository) RemoveToken(ctx context.Context, accountID int64, token string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM account_tokens WHERE account_id = $1 AND token = $2`,
		accountID, token)
	if err != nil {
		return fmt.Errorf("accounts: remove token: %w", err)
	}
	return nil
}

// ListTokens returns the account's tokens in issuance order.
func (r *PGRepository) ListTokens(ctx context.Context, accountID int64) ([]AuthToken, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT scope, token, issued_at, expires_at
		FROM account_tokens WHERE account_id = $1 ORDER BY id`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("accounts: list tokens: %w", err)
	}
	defer rows.Close()
	var tokens []AuthToken
	for rows.Next() {
		var tok AuthToken
		if err := rows.Scan(&tok.Scope, &tok.Token, &tok.IssuedAt, &tok.ExpiresAt); err != nil {
			return nil, fmt.Errorf("accounts: scan token: %w", err)
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("accounts: list tokens: %w", err)
	}
	return tokens, nil
}

// DeleteExpiredTokens removes token rows past their expiry.
func (r *PGRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM account_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("accounts: delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
