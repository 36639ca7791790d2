package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTokensPrune is the task type for pruning expired session tokens.
	TaskTokensPrune = "tokens:prune"
)

// NewTokensPruneTask constructs an Asynq task. The task carries no payload;
// the handler prunes everything past its expiry at execution time.
func NewTokensPruneTask() *asynq.Task {
	return asynq.NewTask(TaskTokensPrune, nil)
}
