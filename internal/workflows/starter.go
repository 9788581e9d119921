package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// Starter implements ports.MediaWorkflowStarter on a Temporal client.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter that schedules work on taskQueue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartAttach starts MediaAttachWorkflow. The workflow id is derived from the
// object key, so attaching the same upload twice joins the running workflow.
func (s *Starter) StartAttach(ctx context.Context, req domain.AttachRequest) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:        "media-attach:" + req.Key,
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, MediaAttachWorkflow, req)
	if err != nil {
		return "", fmt.Errorf("execute workflow: %w", err)
	}
	return run.GetRunID(), nil
}
