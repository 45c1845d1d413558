// Package handlers maps catalog HTTP requests onto the application services.
package handlers

import (
	"net/http"
	"time"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// Deps are the collaborators shared by every catalog handler.
type Deps struct {
	Services       *appsvcs.Services
	Images         storage.ImageStore
	Errors         *errhttp.Responder
	Logger         logger.Logger
	MaxUploadBytes int64
}

type base struct {
	svc       *appsvcs.Services
	images    storage.ImageStore
	errs      *errhttp.Responder
	log       logger.Logger
	maxUpload int64
	now       func() time.Time
}

func newBase(d Deps) base {
	errs := d.Errors
	if errs == nil {
		errs = errhttp.New(false, d.Logger)
	}
	return base{
		svc:       d.Services,
		images:    d.Images,
		errs:      errs,
		log:       d.Logger,
		maxUpload: d.MaxUploadBytes,
		now:       time.Now,
	}
}

// SearchMissResponse is returned by GET /item/search when nothing matches.
type SearchMissResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"No items found."`
	Items   []any  `json:"items"`
} // @name SearchMissResponse

// list writes v with 200, rendering a nil slice as [].
func list[T any](w http.ResponseWriter, v []T) {
	if v == nil {
		v = []T{}
	}
	httpx.JSON(w, http.StatusOK, v)
}
