package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/services/catalog/domain"
)

func formRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	release, err := parseForm(httptest.NewRecorder(), r, 0)
	require.NoError(t, err)
	t.Cleanup(release)
	return r
}

func TestFormBool(t *testing.T) {
	r := formRequest(t, url.Values{"on": {"true"}, "off": {"TRUE"}, "blank": {""}})

	require.NotNil(t, formBool(r, "on"))
	assert.True(t, *formBool(r, "on"))
	assert.False(t, *formBool(r, "off"))
	assert.False(t, *formBool(r, "blank"))
	assert.Nil(t, formBool(r, "absent"))
}

func TestFormDecimal(t *testing.T) {
	r := formRequest(t, url.Values{"zero": {"0"}, "frac": {" 12.50 "}, "blank": {" "}, "word": {"ten"}, "long": {"1" + strings.Repeat("0", 40)}})

	d, err := formDecimal(r, "zero")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.True(t, d.IsZero())

	d, err = formDecimal(r, "frac")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	d, err = formDecimal(r, "blank")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = formDecimal(r, "absent")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = formDecimal(r, "word")
	require.ErrorIs(t, err, domain.ErrValidation)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Must be a number", ve.Fields["word"])

	_, err = formDecimal(r, "long")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Too long", ve.Fields["long"])
}

func TestFormPatch(t *testing.T) {
	r := formRequest(t, url.Values{"description": {"new"}, "taxType": {"fixed"}})

	p, err := formPatch(r)
	require.NoError(t, err)
	assert.Nil(t, p.Name)
	require.NotNil(t, p.Description)
	assert.Equal(t, "new", *p.Description)
	require.NotNil(t, p.TaxType)
	assert.Equal(t, "fixed", *p.TaxType)
	assert.Nil(t, p.Applicability)
	assert.False(t, p.Empty())
}

func TestParseForm_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("--x\r\n"))
	r.Header.Set("Content-Type", "multipart/form-data")
	_, err := parseForm(httptest.NewRecorder(), r, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
