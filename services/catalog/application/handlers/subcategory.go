package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// SubcategoryHandler serves /subcategory.
type SubcategoryHandler struct {
	base
}

// NewSubcategoryHandler returns a SubcategoryHandler.
func NewSubcategoryHandler(d Deps) *SubcategoryHandler {
	return &SubcategoryHandler{base: newBase(d)}
}

// Create adds a subcategory under the category named in the form.
//
//	@Summary		Create subcategory
//	@Description	Tax fields not supplied are inherited from the parent category.
//	@Tags			subcategories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image				formData	file	true	"Subcategory image"
//	@Param			category			formData	string	true	"Parent category name"
//	@Param			name				formData	string	true	"Name"
//	@Param			description			formData	string	true	"Description"
//	@Param			taxApplicability	formData	string	false	"\"true\" enables tax"
//	@Param			tax					formData	number	false	"Tax amount"
//	@Param			taxType				formData	string	false	"Percentage or Fixed"
//	@Success		201					{object}	models.Subcategory
//	@Failure		400					{object}	httpx.ErrorBody
//	@Failure		404					{object}	httpx.ErrorBody
//	@Failure		409					{object}	httpx.ErrorBody
//	@Router			/subcategory/create [post]
func (h *SubcategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	in := appsvcs.SubcategoryInput{
		Category:    formString(r, "category"),
		Name:        formString(r, "name"),
		Description: formString(r, "description"),
		TaxInput:    tax,
	}

	imageRef, err := h.saveImage(r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	s, err := h.svc.Subcategory.Create(r.Context(), in, imageRef)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

// Edit applies a partial update. The parent category cannot change.
//
//	@Summary	Edit subcategory
//	@Tags		subcategories
//	@Accept		multipart/form-data,application/x-www-form-urlencoded
//	@Produce	json
//	@Param		id					path		string	true	"Subcategory ID"
//	@Param		name				formData	string	false	"Name"
//	@Param		description			formData	string	false	"Description"
//	@Param		taxApplicability	formData	string	false	"\"true\" enables tax"
//	@Param		tax					formData	number	false	"Tax amount"
//	@Param		taxType				formData	string	false	"Percentage or Fixed"
//	@Success	200					{object}	models.Subcategory
//	@Failure	400					{object}	httpx.ErrorBody
//	@Failure	404					{object}	httpx.ErrorBody
//	@Failure	409					{object}	httpx.ErrorBody
//	@Router		/subcategory/{id} [put]
func (h *SubcategoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
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
	s, err := h.svc.Subcategory.Edit(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

// GetAll lists every subcategory.
//
//	@Summary	List subcategories
//	@Tags		subcategories
//	@Produce	json
//	@Success	200	{array}	models.Subcategory
//	@Router		/subcategory/ [get]
func (h *SubcategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ss, err := h.svc.Subcategory.GetAll(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	list[*models.Subcategory](w, ss)
}

// Get looks a subcategory up by id or by slug-encoded name.
//
//	@Summary	Get subcategory
//	@Tags		subcategories
//	@Produce	json
//	@Param		id	path		string	true	"ID or name, dashes for spaces"
//	@Success	200			{object}	models.Subcategory
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/subcategory/{id} [get]
func (h *SubcategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Subcategory.GetByIdentifier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

// ByCategory lists the subcategories of one category in creation order.
//
//	@Summary	List subcategories of a category
//	@Tags		subcategories
//	@Produce	json
//	@Param		categoryID	path	string	true	"Category ID"
//	@Success	200			{array}	models.Subcategory
//	@Failure	400			{object}	httpx.ErrorBody
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/subcategory/category/{categoryID} [get]
func (h *SubcategoryHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	ss, err := h.svc.Subcategory.GetByCategory(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	list[*models.Subcategory](w, ss)
}
