package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain"
)

// parseForm reads a multipart or url-encoded body into r.PostForm, capping
// its size at limit bytes when limit is positive. The returned func releases
// multipart temp files.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) (func(), error) {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	release := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	if err != nil {
		release()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, err
		}
		return func() {}, domain.NewValidationError("malformed form body: %v", err)
	}
	return release, nil
}

// formValue returns the first value of key and whether the field was sent.
func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func formString(r *http.Request, key string) string {
	v, _ := formValue(r, key)
	return v
}

func formStringPtr(r *http.Request, key string) *string {
	v, ok := formValue(r, key)
	if !ok {
		return nil
	}
	return &v
}

// formBool is true only for the literal "true".
func formBool(r *http.Request, key string) *bool {
	v, ok := formValue(r, key)
	if !ok {
		return nil
	}
	b := v == "true"
	return &b
}

// maxNumberLength caps numeric form fields before parsing.
const maxNumberLength = 32

// formDecimal treats a blank value like an absent one.
func formDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	v, ok := formValue(r, key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return nil, nil
	}
	if len(v) > maxNumberLength {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("%s is too long", key),
			Fields: map[string]string{key: "Too long"},
		}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("%s must be a number", key),
			Fields: map[string]string{key: "Must be a number"},
		}
	}
	return &d, nil
}

func formTax(r *http.Request) (appsvcs.TaxInput, error) {
	tax, err := formDecimal(r, "tax")
	if err != nil {
		return appsvcs.TaxInput{}, err
	}
	return appsvcs.TaxInput{
		Applicability: formBool(r, "taxApplicability"),
		Tax:           tax,
		TaxType:       formStringPtr(r, "taxType"),
	}, nil
}

func formPatch(r *http.Request) (appsvcs.Patch, error) {
	tax, err := formTax(r)
	if err != nil {
		return appsvcs.Patch{}, err
	}
	return appsvcs.Patch{
		Name:        formStringPtr(r, "name"),
		Description: formStringPtr(r, "description"),
		TaxInput:    tax,
	}, nil
}
