package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

// FlagService resolves country flag images.
type FlagService struct {
	directory ports.FlagDirectory
	cache     ports.CacheService
	ttl       int
}

// NewFlagService creates a new FlagService. cache may be nil.
func NewFlagService(directory ports.FlagDirectory, cache ports.CacheService, ttlSeconds int) *FlagService {
	return &FlagService{directory: directory, cache: cache, ttl: ttlSeconds}
}

// FlagURL returns the flag image URL for a country name.
func (s *FlagService) FlagURL(ctx context.Context, countryName string) (string, error) {
	name := strings.TrimSpace(countryName)
	if name == "" {
		return "", fmt.Errorf("%w: country name is required", domain.ErrInvalidInput)
	}

	key := "flags:" + strings.ToLower(name)
	url, err := readThrough(ctx, s.cache, "flag", key, s.ttl, func() (string, error) {
		return s.directory.FlagURL(ctx, name)
	})
	switch {
	case err == nil:
		metrics.FlagLookups.WithLabelValues("ok").Inc()
		return url, nil
	case errors.Is(err, domain.ErrNotFound):
		metrics.FlagLookups.WithLabelValues("not_found").Inc()
		return "", err
	default:
		metrics.FlagLookups.WithLabelValues("error").Inc()
		return "", fmt.Errorf("resolve flag for %s: %w", name, err)
	}
}
