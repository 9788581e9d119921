package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// MediaAttachResult is returned by a successful attach.
type MediaAttachResult struct {
	URL   string `json:"url"`
	Bytes int64  `json:"bytes"`
}

// MediaAttachWorkflow verifies an uploaded object and attaches it to a city
// or POI. If verification or the attach fails, the object is deleted
// (saga compensation).
func MediaAttachWorkflow(ctx workflow.Context, req domain.AttachRequest) (*MediaAttachResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting media attach workflow", "key", req.Key, "target", req.Target)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Verify the object landed on the media host
	var size int64
	if err := workflow.ExecuteActivity(ctx, VerifyUploadActivity, req.Key).Get(ctx, &size); err != nil {
		logger.Warn("upload verification failed, discarding", "error", err)
		discard(ctx, req.Key)
		return nil, err
	}

	// Step 2: Attach the public URL to the target
	var url string
	if err := workflow.ExecuteActivity(ctx, AttachPictureActivity, req).Get(ctx, &url); err != nil {
		logger.Warn("attach failed, compensating", "error", err)
		discard(ctx, req.Key)
		return nil, err
	}

	logger.Info("Media attached", "url", url)
	return &MediaAttachResult{URL: url, Bytes: size}, nil
}

func discard(ctx workflow.Context, key string) {
	if err := workflow.ExecuteActivity(ctx, DiscardUploadActivity, key).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Error("discard upload failed", "key", key, "error", err)
	}
}
