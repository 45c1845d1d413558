package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
)

// ImageJanitor deletes stored images that no catalog row references. Only
// images older than minAge are considered, so uploads whose create is still
// in flight are left alone.
type ImageJanitor struct {
	index    repositories.ImageIndex
	images   storage.ImageStore
	minAge   time.Duration
	now      func() time.Time
	log      logger.Logger
	counters counters
}

func NewImageJanitor(d Deps) *ImageJanitor {
	return &ImageJanitor{
		index:    d.Index,
		images:   d.Images,
		minAge:   d.JanitorMinAge,
		now:      time.Now,
		log:      d.Logger,
		counters: d.counters,
	}
}

// Sweep runs one pass and returns the number of images deleted. A failed
// delete is logged and the pass continues.
func (j *ImageJanitor) Sweep(ctx context.Context) (int, error) {
	objects, err := j.images.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}
	referenced, err := j.index.ReferencedImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("referenced images: %w", err)
	}

	cutoff := j.now().Add(-j.minAge)
	deleted := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok || obj.LastModified.After(cutoff) {
			continue
		}
		if err := j.images.Delete(ctx, obj.Key); err != nil {
			j.log.WarnContext(ctx, "janitor: delete failed", "image", obj.Key, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		j.counters.imagesCleaned(ctx, deleted)
		j.log.InfoContext(ctx, "janitor: orphaned images deleted", "count", deleted, "driver", j.images.Driver())
	}
	return deleted, nil
}

// Run sweeps every interval until ctx is cancelled.
func (j *ImageJanitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.InfoContext(ctx, "janitor: shutting down")
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.log.ErrorContext(ctx, "janitor: sweep failed", "error", err)
			}
		}
	}
}
