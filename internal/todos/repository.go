package todos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskledger/taskledger/internal/shared"
)

// Repository defines persistence operations for to-do items. Every lookup is
// owner scoped: an item belonging to another account behaves as absent.
type Repository interface {
	Insert(ctx context.Context, ownerID int64, text string) (*Todo, error)
	List(ctx context.Context, ownerID int64) ([]Todo, error)
	Find(ctx context.Context, ownerID, id int64) (*Todo, error)
	Update(ctx context.Context, todo *Todo) (*Todo, error)
	Delete(ctx context.Context, ownerID, id int64) (*Todo, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const todoColumns = `id, owner_id, text, completed, completed_at, created_at, updated_at`

func scanTodo(row pgx.Row) (*Todo, error) {
	var todo Todo
	if err := row.Scan(&todo.ID, &todo.OwnerID, &todo.Text, &todo.Completed, &todo.CompletedAt, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("todos: scan: %w", err)
	}
	return &todo, nil
}

// Insert creates a new to-do item for the owner.
func (r *PGRepository) Insert(ctx context.Context, ownerID int64, text string) (*Todo, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO todos (owner_id, text, completed, created_at, updated_at)
		VALUES ($1, $2, false, now(), now())
		RETURNING `+todoColumns,
		ownerID, text)
	return scanTodo(row)
}

// List returns the owner's items in creation order.
func (r *PGRepository) List(ctx context.Context, ownerID int64) ([]Todo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("todos: list: %w", err)
	}
	defer rows.Close()
	var items []Todo
	for rows.Next() {
		var todo Todo
		if err := rows.Scan(&todo.ID, &todo.OwnerID, &todo.Text, &todo.Completed, &todo.CompletedAt, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("todos: scan: %w", err)
		}
		items = append(items, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("todos: list: %w", err)
	}
	return items, nil
}

// Find fetches one item by id within the owner's scope.
func (r *PGRepository) Find(ctx context.Context, ownerID, id int64) (*Todo, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 AND id = $2`, ownerID, id)
	return scanTodo(row)
}

// Update persists the item's mutable fields.
func (r *PGRepository) Update(ctx context.Context, todo *Todo) (*Todo, error) {
	var completedAt *time.Time
	if todo.CompletedAt != nil {
		t := todo.CompletedAt.UTC()
		completedAt = &t
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE todos SET text = $3, completed = $4, completed_at = $5, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+todoColumns,
		todo.OwnerID, todo.ID, todo.Text, todo.Completed, completedAt)
	return scanTodo(row)
}

// Delete removes the item and returns its final state.
func (r *PGRepository) Delete(ctx context.Context, ownerID, id int64) (*Todo, error) {
	row := r.pool.QueryRow(ctx,
		`DELETE FROM todos WHERE owner_id = $1 AND id = $2 RETURNING `+todoColumns,
		ownerID, id)
	return scanTodo(row)
}

var _ Repository = (*PGRepository)(nil)
