package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/usecases"
)

// Activity names, registered from MediaActivities' methods.
const (
	VerifyUploadActivity  = "VerifyUpload"
	AttachPictureActivity = "AttachPicture"
	DiscardUploadActivity = "DiscardUpload"
)

const errTypeRejected = "UploadRejected"

// MediaActivities holds the activity implementations for the media attach workflow.
type MediaActivities struct {
	Media *usecases.MediaService
}

// VerifyUpload confirms the object exists and respects the size limit.
func (a *MediaActivities) VerifyUpload(ctx context.Context, key string) (int64, error) {
	size, err := a.Media.Verify(ctx, key)
	if err != nil {
		return 0, nonRetryable(err)
	}
	activity.GetLogger(ctx).Info("upload verified", "key", key, "bytes", size)
	return size, nil
}

// AttachPicture links the uploaded object to its city or POI.
func (a *MediaActivities) AttachPicture(ctx context.Context, req domain.AttachRequest) (string, error) {
	url, err := a.Media.AttachPicture(ctx, req)
	if err != nil {
		return "", nonRetryable(fmt.Errorf("attach %s to %s %s: %w", req.Key, req.Target, req.TargetID, err))
	}
	return url, nil
}

// DiscardUpload deletes the object (saga compensation).
func (a *MediaActivities) DiscardUpload(ctx context.Context, key string) error {
	return a.Media.Discard(ctx, key)
}

// nonRetryable stops Temporal from retrying failures caused by the upload
// itself. Infrastructure errors stay retryable.
func nonRetryable(err error) error {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeRejected, err)
	}
	return err
}
