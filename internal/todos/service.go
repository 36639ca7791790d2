package todos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskledger/taskledger/internal/shared"
)

// Service handles to-do business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create adds a new item for the owner.
func (s *Service) Create(ctx context.Context, ownerID int64, text string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("todos: empty text: %w", shared.ErrValidation)
	}
	return s.repo.Insert(ctx, ownerID, text)
}

// List returns all of the owner's items.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Todo, error) {
	return s.repo.List(ctx, ownerID)
}

// Get fetches one of the owner's items.
func (s *Service) Get(ctx context.Context, ownerID, id int64) (*Todo, error) {
	return s.repo.Find(ctx, ownerID, id)
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Text      *string
	Completed *bool
}

// Update applies a patch. Marking an item completed stamps completedAt with
// the current time; marking it not completed clears the stamp.
func (s *Service) Update(ctx context.Context, ownerID, id int64, patch Patch) (*Todo, error) {
	todo, err := s.repo.Find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, fmt.Errorf("todos: empty text: %w", shared.ErrValidation)
		}
		todo.Text = text
	}
	if patch.Completed != nil {
		if *patch.Completed {
			now := s.now().UTC()
			todo.Completed = true
			todo.CompletedAt = &now
		} else {
			todo.Completed = false
			todo.CompletedAt = nil
		}
	}

	return s.repo.Update(ctx, todo)
}

// Delete removes one of the owner's items and returns it.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) (*Todo, error) {
	return s.repo.Delete(ctx, ownerID, id)
}
