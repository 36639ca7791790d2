package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskledger/taskledger/internal/accounts"
)

// TokensPruneJob removes expired token rows from the credential store.
// Expired tokens are already rejected by verification; pruning keeps the
// token table from growing without bound.
type TokensPruneJob struct {
	repo   accounts.Repository
	logger *slog.Logger
}

// NewTokensPruneJob constructs the job.
func NewTokensPruneJob(repo accounts.Repository, logger *slog.Logger) *TokensPruneJob {
	return &TokensPruneJob{repo: repo, logger: logger}
}

// Handle processes a TaskTokensPrune task.
func (j *TokensPruneJob) Handle(ctx context.Context, _ *asynq.Task) error {
	removed, err := j.repo.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		if j.logger != nil {
			j.logger.Error("prune expired tokens", slog.Any("error", err))
		}
		return err
	}
	if j.logger != nil {
		j.logger.Info("pruned expired tokens", slog.Int64("removed", removed))
	}
	return nil
}
