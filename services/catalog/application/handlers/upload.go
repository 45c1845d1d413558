package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ghuser/catalog/pkg/storage"
)

// imageField is the multipart field carrying the uploaded image.
const imageField = "image"

// saveImage writes the uploaded image to the object store and returns its
// key, or "" when the request carried no image. Call after parseForm.
func (b base) saveImage(r *http.Request) (string, error) {
	file, _, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	up, err := storage.PrepareUpload(file, b.now())
	if err != nil {
		return "", err
	}
	if _, err := b.images.Put(r.Context(), up.Key, up.Body, up.ContentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return up.Key, nil
}
