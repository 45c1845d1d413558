package services

import (
	"context"

	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
)

// guardImage runs fn and deletes imageRef from store unless fn succeeds. The
// delete also runs when fn panics, and happens at most once. A failed delete
// is logged, never returned; the janitor sweeps what is left behind.
func guardImage[T any](ctx context.Context, store storage.ImageStore, log logger.Logger, imageRef string, fn func() (T, error)) (T, error) {
	keep := false
	defer func() {
		if keep || imageRef == "" || store == nil {
			return
		}
		if err := store.Delete(context.WithoutCancel(ctx), imageRef); err != nil {
			log.WarnContext(ctx, "failed to delete uploaded image", "image", imageRef, "error", err)
			return
		}
		log.DebugContext(ctx, "uploaded image discarded", "image", imageRef)
	}()

	result, err := fn()
	if err != nil {
		return result, err
	}
	keep = true
	return result, nil
}
