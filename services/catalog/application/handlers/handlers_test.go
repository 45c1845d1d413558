package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	"github.com/ghuser/catalog/services/catalog/application/api"
	"github.com/ghuser/catalog/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/memory"
)

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type env struct {
	t      *testing.T
	router http.Handler
	store  *memory.Store
	images *storage.MemoryStore
}

func newEnv(t *testing.T, maxUpload int64) *env {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	store := memory.NewStore()
	images := storage.NewMemoryStore()
	svcs := appsvcs.NewServices(appsvcs.Deps{
		Tx:            store,
		Categories:    store.Categories(),
		Subcategories: store.Subcategories(),
		Items:         store.Items(),
		Index:         store,
		Images:        images,
		Logger:        log,
		JanitorMinAge: time.Hour,
	})

	r := chi.NewRouter()
	api.Mount(r, handlers.Deps{
		Services:       svcs,
		Images:         images,
		Errors:         errhttp.New(false, log),
		Logger:         log,
		MaxUploadBytes: maxUpload,
	})
	return &env{t: t, router: r, store: store, images: images}
}

// multipartForm encodes fields, plus an image part when withImage is set.
func multipartForm(t *testing.T, fields map[string]string, withImage bool) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *env) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) create(path string, fields map[string]string) map[string]any {
	e.t.Helper()
	body, ct := multipartForm(e.t, fields, true)
	rec := e.do(http.MethodPost, path, body, ct)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObject(e.t, rec)
}

func (e *env) storedImages() int {
	e.t.Helper()
	objs, err := e.images.List(context.Background())
	require.NoError(e.t, err)
	return len(objs)
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l), rec.Body.String())
	return l
}

func TestCategoryCreate(t *testing.T) {
	e := newEnv(t, 0)

	got := e.create("/category/create", map[string]string{
		"name":        "running SHOES",
		"description": "For running",
	})

	assert.Equal(t, "Running shoes", got["name"])
	assert.Equal(t, false, got["taxApplicability"])
	assert.NotContains(t, got, "tax")
	key, _ := got["image"].(string)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.True(t, e.images.Has(key))
}

func TestCategoryCreate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		withImage bool
		status    int
		message   string
	}{
		{
			name:    "missing image",
			fields:  map[string]string{"name": "Shoes", "description": "d"},
			status:  http.StatusBadRequest,
			message: "image is required",
		},
		{
			name:      "missing description",
			fields:    map[string]string{"name": "Shoes"},
			withImage: true,
			status:    http.StatusBadRequest,
			message:   "description required",
		},
		{
			name:      "non-numeric tax",
			fields:    map[string]string{"name": "Shoes", "description": "d", "taxApplicability": "true", "tax": "ten"},
			withImage: true,
			status:    http.StatusBadRequest,
			message:   "tax must be a number",
		},
		{
			name:      "unknown tax type",
			fields:    map[string]string{"name": "Shoes", "description": "d", "taxApplicability": "true", "taxType": "Compound"},
			withImage: true,
			status:    http.StatusBadRequest,
			message:   "taxType must be one of Percentage, Fixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, 0)
			body, ct := multipartForm(t, tt.fields, tt.withImage)
			rec := e.do(http.MethodPost, "/category/create", body, ct)

			assert.Equal(t, tt.status, rec.Code)
			got := decodeObject(t, rec)
			assert.Equal(t, false, got["success"])
			assert.Equal(t, tt.message, got["message"])
			assert.Zero(t, e.storedImages(), "rejected create must not leave an image behind")
		})
	}
}

func TestCategoryCreate_ConflictRemovesUpload(t *testing.T) {
	e := newEnv(t, 0)
	e.create("/category/create", map[string]string{"name": "Shoes", "description": "d"})

	body, ct := multipartForm(t, map[string]string{"name": "SHOES", "description": "d"}, true)
	rec := e.do(http.MethodPost, "/category/create", body, ct)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "category already exists", decodeObject(t, rec)["message"])
	assert.Equal(t, 1, e.storedImages())
}

func TestCreate_BodyTooLarge(t *testing.T) {
	e := newEnv(t, 32)
	body, ct := multipartForm(t, map[string]string{"name": "Shoes", "description": "d"}, true)
	rec := e.do(http.MethodPost, "/category/create", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, e.storedImages())
}

func TestCategoryLookups(t *testing.T) {
	e := newEnv(t, 0)
	c := e.create("/category/create", map[string]string{"name": "Running shoes", "description": "d"})
	id := c["id"].(string)

	rec := e.do(http.MethodGet, "/category/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Running shoes", decodeObject(t, rec)["name"])

	rec = e.do(http.MethodGet, "/category/running-SHOES", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeObject(t, rec)["id"])

	rec = e.do(http.MethodGet, "/category/sandals", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodGet, "/category/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func TestCategoryGetAll_EmptyIsArray(t *testing.T) {
	e := newEnv(t, 0)
	rec := e.do(http.MethodGet, "/category/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCategoryEdit(t *testing.T) {
	e := newEnv(t, 0)
	c := e.create("/category/create", map[string]string{
		"name": "Shoes", "description": "d", "taxApplicability": "true", "tax": "5", "taxType": "fixed",
	})
	id := c["id"].(string)
	assert.Equal(t, "Fixed", c["taxType"])

	t.Run("url-encoded", func(t *testing.T) {
		form := url.Values{"name": {"BOOTS"}}
		rec := e.do(http.MethodPut, "/category/"+id, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Boots", decodeObject(t, rec)["name"])
	})

	t.Run("multipart disabling tax", func(t *testing.T) {
		body, ct := multipartForm(t, map[string]string{"taxApplicability": "no"}, false)
		rec := e.do(http.MethodPut, "/category/"+id, body, ct)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeObject(t, rec)
		assert.Equal(t, false, got["taxApplicability"])
		assert.NotContains(t, got, "tax")
		assert.NotContains(t, got, "taxType")
	})

	t.Run("empty patch", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/category/"+id, strings.NewReader(""), "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		form := url.Values{"name": {"x"}}
		rec := e.do(http.MethodPut, "/category/not-an-id", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHierarchy(t *testing.T) {
	e := newEnv(t, 0)
	cat := e.create("/category/create", map[string]string{
		"name": "Shoes", "description": "d", "taxApplicability": "true", "tax": "12.5",
	})
	catID := cat["id"].(string)

	sub := e.create("/subcategory/create", map[string]string{
		"category": "shoes", "name": "Running", "description": "d",
	})
	subID := sub["id"].(string)
	assert.Equal(t, catID, sub["category"])
	assert.Equal(t, true, sub["taxApplicability"])
	assert.InDelta(t, 12.5, sub["tax"], 1e-9)

	item := e.create("/item/create", map[string]string{
		"name": "trail runner", "description": "d", "baseAmount": "100", "discount": "0",
		"category": "Shoes", "subcategory": "running",
	})
	assert.Equal(t, "Trail runner", item["name"])
	assert.InDelta(t, 100, item["totalAmount"], 1e-9)
	assert.Equal(t, catID, item["category"])
	assert.Equal(t, subID, item["subcategory"])

	t.Run("subcategories of category", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/subcategory/category/"+catID, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		l := decodeList(t, rec)
		require.Len(t, l, 1)
		assert.Equal(t, subID, l[0]["id"])
	})

	t.Run("items of category and subcategory", func(t *testing.T) {
		for _, path := range []string{"/item/category/" + catID, "/item/subcategory/" + subID} {
			rec := e.do(http.MethodGet, path, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, path)
			assert.Len(t, decodeList(t, rec), 1, path)
		}
	})

	t.Run("malformed and unknown parent ids", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/item/category/xyz", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = e.do(http.MethodGet, "/subcategory/category/00000000-0000-0000-0000-000000000000", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("search", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/item/search?name=trail-RUN", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeList(t, rec), 1)

		rec = e.do(http.MethodGet, "/item/search?name=sandal", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"No items found.","items":[]}`, rec.Body.String())
	})
}

func TestItemCreate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		status int
	}{
		{"missing discount", map[string]string{"name": "X", "description": "d", "baseAmount": "10"}, http.StatusBadRequest},
		{"non-numeric amount", map[string]string{"name": "X", "description": "d", "baseAmount": "ten", "discount": "0"}, http.StatusBadRequest},
		{"total not positive", map[string]string{"name": "X", "description": "d", "baseAmount": "10", "discount": "10"}, http.StatusBadRequest},
		{"subcategory without category", map[string]string{"name": "X", "description": "d", "baseAmount": "10", "discount": "1", "subcategory": "Running"}, http.StatusBadRequest},
		{"unknown category", map[string]string{"name": "X", "description": "d", "baseAmount": "10", "discount": "1", "category": "Nope"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, 0)
			body, ct := multipartForm(t, tt.fields, true)
			rec := e.do(http.MethodPost, "/item/create", body, ct)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Zero(t, e.storedImages())
		})
	}
}

func TestImageServe(t *testing.T) {
	e := newEnv(t, 0)
	c := e.create("/category/create", map[string]string{"name": "Shoes", "description": "d"})
	key := c["image"].(string)

	rec := e.do(http.MethodGet, "/"+key, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = e.do(http.MethodGet, "/missing.png", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
