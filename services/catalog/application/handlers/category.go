package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// CategoryHandler serves /category.
type CategoryHandler struct {
	base
}

// NewCategoryHandler returns a CategoryHandler.
func NewCategoryHandler(d Deps) *CategoryHandler {
	return &CategoryHandler{base: newBase(d)}
}

// Create adds a category.
//
//	@Summary		Create category
//	@Description	Creates a category from a multipart form. Tax fields default to not applicable.
//	@Tags			categories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image				formData	file	true	"Category image"
//	@Param			name				formData	string	true	"Name"
//	@Param			description			formData	string	true	"Description"
//	@Param			taxApplicability	formData	string	false	"\"true\" enables tax"
//	@Param			tax					formData	number	false	"Tax amount"
//	@Param			taxType				formData	string	false	"Percentage or Fixed"
//	@Success		201					{object}	models.Category
//	@Failure		400					{object}	httpx.ErrorBody
//	@Failure		409					{object}	httpx.ErrorBody
//	@Failure		413					{object}	httpx.ErrorBody
//	@Router			/category/create [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	release, err := parseForm(w, r, h.maxUpload)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer release()

	tax, err := formTax(r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	in := appsvcs.CategoryInput{
		Name:        formString(r, "name"),
		Description: formString(r, "description"),
		TaxInput:    tax,
	}

	imageRef, err := h.saveImage(r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	c, err := h.svc.Category.Create(r.Context(), in, imageRef)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Edit applies a partial update.
//
//	@Summary		Edit category
//	@Tags			categories
//	@Accept			multipart/form-data,application/x-www-form-urlencoded
//	@Produce		json
//	@Param			id					path		string	true	"Category ID"
//	@Param			name				formData	string	false	"Name"
//	@Param			description			formData	string	false	"Description"
//	@Param			taxApplicability	formData	string	false	"\"true\" enables tax"
//	@Param			tax					formData	number	false	"Tax amount"
//	@Param			taxType				formData	string	false	"Percentage or Fixed"
//	@Success		200					{object}	models.Category
//	@Failure		400					{object}	httpx.ErrorBody
//	@Failure		404					{object}	httpx.ErrorBody
//	@Failure		409					{object}	httpx.ErrorBody
//	@Router			/category/{id} [put]
func (h *CategoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	release, err := parseForm(w, r, h.maxUpload)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer release()

	p, err := formPatch(r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	c, err := h.svc.Category.Edit(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// GetAll lists every category.
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Success	200	{array}	models.Category
//	@Router		/category/ [get]
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.Category.GetAll(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	list[*models.Category](w, cs)
}

// Get looks a category up by id or by slug-encoded name.
//
//	@Summary	Get category
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"ID or name, dashes for spaces"
//	@Success	200			{object}	models.Category
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/category/{id} [get]
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Category.GetByIdentifier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
