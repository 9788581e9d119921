package usecases

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

const uploadPrefix = "uploads/"

// allowedUploads maps accepted file extensions to their content types.
var allowedUploads = map[string][]string{
	".jpg":     {"image/jpeg"},
	".jpeg":    {"image/jpeg"},
	".png":     {"image/png"},
	".webp":    {"image/webp"},
	".geojson": {"application/geo+json", "application/json"},
}

// PresignRequest describes a file a client wants to upload.
type PresignRequest struct {
	FileName    string
	ContentType string
	Size        int64
}

// MediaService issues upload slots on the media host and attaches uploaded
// pictures to cities and POIs.
type MediaService struct {
	storage  ports.MediaStorage
	starter  ports.MediaWorkflowStarter
	cities   ports.CityRepository
	pois     ports.PoiRepository
	maxBytes int64
	ttl      time.Duration
	now      func() time.Time
}

// NewMediaService creates a new MediaService. storage and starter may be nil
// when the media host or workflow engine is not configured.
func NewMediaService(storage ports.MediaStorage, starter ports.MediaWorkflowStarter, cities ports.CityRepository, pois ports.PoiRepository, maxBytes int64, ttl time.Duration) *MediaService {
	return &MediaService{
		storage:  storage,
		starter:  starter,
		cities:   cities,
		pois:     pois,
		maxBytes: maxBytes,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Presign validates the file and returns a presigned PUT slot for it.
func (s *MediaService) Presign(ctx context.Context, req PresignRequest) (*domain.UploadTicket, error) {
	if s.storage == nil {
		return nil, domain.ErrUnavailable
	}

	ext := strings.ToLower(path.Ext(req.FileName))
	types, ok := allowedUploads[ext]
	if !ok {
		return nil, fmt.Errorf("%w: file type %q is not accepted (jpg, jpeg, png, webp, geojson)", domain.ErrInvalidInput, ext)
	}
	if !slices.Contains(types, req.ContentType) {
		return nil, fmt.Errorf("%w: content type %q does not match %s", domain.ErrInvalidInput, req.ContentType, ext)
	}
	if req.Size <= 0 || req.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: size must be between 1 and %d bytes", domain.ErrInvalidInput, s.maxBytes)
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s%s/%s%s", uploadPrefix, now.Format("2006/01"), uuid.NewString(), ext)

	url, err := s.storage.PresignPut(ctx, key, req.ContentType, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	metrics.UploadsPresigned.WithLabelValues(strings.TrimPrefix(ext, ".")).Inc()
	return &domain.UploadTicket{
		Key:       key,
		UploadURL: url,
		FileURL:   s.storage.PublicURL(key),
		ExpiresAt: now.Add(s.ttl),
		MaxBytes:  s.maxBytes,
	}, nil
}

// Attach checks the target exists and starts the attach workflow.
func (s *MediaService) Attach(ctx context.Context, req domain.AttachRequest) (string, error) {
	if s.starter == nil {
		return "", domain.ErrUnavailable
	}
	if !strings.HasPrefix(req.Key, uploadPrefix) || strings.Contains(req.Key, "..") {
		return "", fmt.Errorf("%w: key must be an upload key", domain.ErrInvalidInput)
	}
	if _, err := uuid.Parse(req.TargetID); err != nil {
		return "", domain.ErrNotFound
	}

	switch req.Target {
	case domain.MediaTargetCity:
		if _, err := s.cities.GetByID(ctx, req.TargetID); err != nil {
			return "", err
		}
	case domain.MediaTargetPoi:
		if _, err := s.pois.GetByID(ctx, req.TargetID); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: target must be city or poi", domain.ErrInvalidInput)
	}

	runID, err := s.starter.StartAttach(ctx, req)
	if err != nil {
		return "", fmt.Errorf("start attach workflow: %w", err)
	}
	return runID, nil
}

// Verify confirms the object was uploaded and is within the size limit.
func (s *MediaService) Verify(ctx context.Context, key string) (int64, error) {
	if s.storage == nil {
		return 0, domain.ErrUnavailable
	}
	size, err := s.storage.Head(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("head %s: %w", key, err)
	}
	if size > s.maxBytes {
		return size, fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrInvalidInput, key, size, s.maxBytes)
	}
	return size, nil
}

// AttachPicture links the public URL of an uploaded object to its target.
func (s *MediaService) AttachPicture(ctx context.Context, req domain.AttachRequest) (string, error) {
	if s.storage == nil {
		return "", domain.ErrUnavailable
	}
	url := s.storage.PublicURL(req.Key)

	var err error
	switch req.Target {
	case domain.MediaTargetCity:
		err = s.cities.AddPicture(ctx, req.TargetID, url)
	case domain.MediaTargetPoi:
		err = s.pois.SetImage(ctx, req.TargetID, url)
	default:
		err = fmt.Errorf("%w: unknown target %q", domain.ErrInvalidInput, req.Target)
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

// Discard deletes an uploaded object.
func (s *MediaService) Discard(ctx context.Context, key string) error {
	if s.storage == nil {
		return domain.ErrUnavailable
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	logging.FromContext(ctx).Info("upload discarded", "key", key)
	return nil
}
