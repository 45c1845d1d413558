package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/storage"
)

// ImageHandler serves stored images by key.
type ImageHandler struct {
	base
}

// NewImageHandler returns an ImageHandler.
func NewImageHandler(d Deps) *ImageHandler {
	return &ImageHandler{base: newBase(d)}
}

// Serve streams the image stored under {filename}.
//
//	@Summary	Get image
//	@Tags		images
//	@Produce	octet-stream
//	@Param		filename	path	string	true	"Image key returned in the image field"
//	@Success	200
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/{filename} [get]
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "filename")
	if err := storage.ValidateKey(key); err != nil {
		httpx.JSONError(w, http.StatusNotFound, storage.ErrNotFound.Error())
		return
	}

	obj, body, err := h.images.Get(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, storage.ErrNotFound.Error())
		return
	}
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if !obj.LastModified.IsZero() {
		w.Header().Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil && h.log != nil {
		h.log.WarnContext(r.Context(), "image stream interrupted", "key", key, "error", err)
	}
}
