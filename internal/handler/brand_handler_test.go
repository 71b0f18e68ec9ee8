package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divisadero-api/internal/model"
	"divisadero-api/internal/store"
)

type fakeReadStore struct {
	profiles []model.Profile
	brands   []model.Brand
	bySlug   map[string]*model.Brand
	err      error
}

func (f *fakeReadStore) ListProfiles() ([]model.Profile, error) {
	return f.profiles, f.err
}

func (f *fakeReadStore) ListBrands() ([]model.Brand, error) {
	return f.brands, f.err
}

func (f *fakeReadStore) GetBrandBySlug(slug string) (*model.Brand, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.bySlug[slug]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetBrandNotFoundReturns200Envelope(t *testing.T) {
	h := New(nil, nil, &fakeReadStore{bySlug: map[string]*model.Brand{}}, nil, nil, true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/brands/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/brands/:slug")
	c.SetParamNames("slug")
	c.SetParamValues("missing")

	require.NoError(t, h.GetBrand(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Brand not found", body["error"])
}

func TestGetBrandFound(t *testing.T) {
	brand := &model.Brand{ID: 1, Slug: "acme", Name: "Acme"}
	h := New(nil, nil, &fakeReadStore{bySlug: map[string]*model.Brand{"acme": brand}}, nil, nil, true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/brands/acme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/brands/:slug")
	c.SetParamNames("slug")
	c.SetParamValues("acme")

	require.NoError(t, h.GetBrand(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
}

func TestListBrandsErrorKeepsEnvelope(t *testing.T) {
	h := New(nil, nil, &fakeReadStore{err: errors.New("boom")}, nil, nil, true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/brands", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.ListBrands(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
}

func TestListProfiles(t *testing.T) {
	h := New(nil, nil, &fakeReadStore{profiles: []model.Profile{{ID: "u1"}, {ID: "u2"}}}, nil, nil, true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.ListProfiles(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(2), body["count"])
}
