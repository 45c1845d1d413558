package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// ItemHandler serves /item.
type ItemHandler struct {
	base
}

// NewItemHandler returns an ItemHandler.
func NewItemHandler(d Deps) *ItemHandler {
	return &ItemHandler{base: newBase(d)}
}

// Create adds an item, optionally linked to a category and one of its subcategories.
//
//	@Summary		Create item
//	@Description	totalAmount is baseAmount minus discount and must be positive. Tax fields default from the most specific parent.
//	@Tags			items
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image				formData	file	true	"Item image"
//	@Param			name				formData	string	true	"Name"
//	@Param			description			formData	string	true	"Description"
//	@Param			baseAmount			formData	number	true	"Base amount"
//	@Param			discount			formData	number	true	"Discount"
//	@Param			category			formData	string	false	"Parent category name"
//	@Param			subcategory			formData	string	false	"Parent subcategory name, requires category"
//	@Param			taxApplicability	formData	string	false	"\"true\" enables tax"
//	@Param			tax					formData	number	false	"Tax amount"
//	@Param			taxType				formData	string	false	"Percentage or Fixed"
//	@Success		201					{object}	models.Item
//	@Failure		400					{object}	httpx.ErrorBody
//	@Failure		404					{object}	httpx.ErrorBody
//	@Failure		409					{object}	httpx.ErrorBody
//	@Router			/item/create [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	release, err := parseForm(w, r, h.maxUpload)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	defer release()

	in, err := itemInput(r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	imageRef, err := h.saveImage(r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	it, err := h.svc.Item.Create(r.Context(), in, imageRef)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, it)
}

func itemInput(r *http.Request) (appsvcs.ItemInput, error) {
	baseAmount, err := formDecimal(r, "baseAmount")
	if err != nil {
		return appsvcs.ItemInput{}, err
	}
	discount, err := formDecimal(r, "discount")
	if err != nil {
		return appsvcs.ItemInput{}, err
	}
	tax, err := formTax(r)
	if err != nil {
		return appsvcs.ItemInput{}, err
	}
	return appsvcs.ItemInput{
		Name:        formString(r, "name"),
		Description: formString(r, "description"),
		BaseAmount:  baseAmount,
		Discount:    discount,
		Category:    formString(r, "category"),
		Subcategory: formString(r, "subcategory"),
		TaxInput:    tax,
	}, nil
}

// Edit applies a partial update. Amounts and parents cannot change.
//
//	@Summary	Edit item
//	@Tags		items
//	@Accept		multipart/form-data,application/x-www-form-urlencoded
//	@Produce	json
//	@Param		id					path		string	true	"Item ID"
//	@Param		name				formData	string	false	"Name"
//	@Param		description			formData	string	false	"Description"
//	@Param		taxApplicability	formData	string	false	"\"true\" enables tax"
//	@Param		tax					formData	number	false	"Tax amount"
//	@Param		taxType				formData	string	false	"Percentage or Fixed"
//	@Success	200					{object}	models.Item
//	@Failure	400					{object}	httpx.ErrorBody
//	@Failure	404					{object}	httpx.ErrorBody
//	@Failure	409					{object}	httpx.ErrorBody
//	@Router		/item/{id} [put]
func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
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
	it, err := h.svc.Item.Edit(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

// GetAll lists every item.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Success	200	{array}	models.Item
//	@Router		/item/ [get]
func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Item.GetAll(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	list[*models.Item](w, items)
}

// Get looks an item up by id or by slug-encoded name.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"ID or name, dashes for spaces"
//	@Success	200			{object}	models.Item
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/item/{id} [get]
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.svc.Item.GetByIdentifier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

// ByCategory lists the items linked to a category.
//
//	@Summary	List items of a category
//	@Tags		items
//	@Produce	json
//	@Param		categoryID	path	string	true	"Category ID"
//	@Success	200			{array}	models.Item
//	@Failure	400			{object}	httpx.ErrorBody
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/item/category/{categoryID} [get]
func (h *ItemHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Item.GetByCategory(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	list[*models.Item](w, items)
}

// BySubcategory lists the items of a subcategory in creation order.
//
//	@Summary	List items of a subcategory
//	@Tags		items
//	@Produce	json
//	@Param		subcategoryID	path	string	true	"Subcategory ID"
//	@Success	200				{array}	models.Item
//	@Failure	400				{object}	httpx.ErrorBody
//	@Failure	404				{object}	httpx.ErrorBody
//	@Router		/item/subcategory/{subcategoryID} [get]
func (h *ItemHandler) BySubcategory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Item.GetBySubcategory(r.Context(), chi.URLParam(r, "subcategoryID"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	list[*models.Item](w, items)
}

// Search matches item names containing the slug-decoded fragment.
//
//	@Summary	Search items by name
//	@Tags		items
//	@Produce	json
//	@Param		name	query		string	false	"Name fragment, dashes for spaces"
//	@Success	200		{array}		models.Item
//	@Failure	404		{object}	SearchMissResponse
//	@Router		/item/search [get]
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Item.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if len(items) == 0 {
		httpx.JSON(w, http.StatusNotFound, SearchMissResponse{Message: "No items found.", Items: []any{}})
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
