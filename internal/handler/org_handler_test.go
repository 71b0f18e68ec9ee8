package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divisadero-api/internal/model"
	"divisadero-api/internal/store"
	"divisadero-api/pkg/jwtutil"
)

type fakeAdminStore struct {
	orgs     map[int64]*model.Org
	profiles map[string]*model.Profile
	members  int64
	count    int64
}

func (f *fakeAdminStore) GetOrgByID(id int64) (*model.Org, error) {
	if org, ok := f.orgs[id]; ok {
		return org, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeAdminStore) CountOrgMembers(orgID int64) (int64, error) {
	return f.members, nil
}

func (f *fakeAdminStore) GetProfile(id string) (*model.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeAdminStore) CountProfiles() (int64, error) {
	return f.count, nil
}

type fakeAuthorizer struct {
	allowed  bool
	orgID    *int64
	lastSlug string
}

func (f *fakeAuthorizer) Authorize(user *jwtutil.User, orgSlug string, requireSuperuser bool) (bool, *int64) {
	f.lastSlug = orgSlug
	return f.allowed, f.orgID
}

func authedContext(e *echo.Echo, method, target string, user *jwtutil.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set("user", user)
	}
	return c, rec
}

func TestOrgMeRequiresAuthentication(t *testing.T) {
	h := New(nil, &fakeAdminStore{}, nil, &fakeAuthorizer{}, nil, true)

	c, rec := authedContext(echo.New(), http.MethodGet, "/org/me", nil)
	require.NoError(t, h.OrgMe(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrgMeProvisionsDefaultOrg(t *testing.T) {
	orgID := int64(1)
	auth := &fakeAuthorizer{allowed: true, orgID: &orgID}
	admin := &fakeAdminStore{
		orgs:     map[int64]*model.Org{1: {OrgID: 1, OrgSlug: DefaultOrgSlug}},
		profiles: map[string]*model.Profile{"u1": {ID: "u1", OrgID: &orgID, IsActivated: true}},
		members:  3,
	}
	h := New(nil, admin, nil, auth, nil, true)

	user := &jwtutil.User{ID: "u1", Metadata: map[string]interface{}{}}
	c, rec := authedContext(echo.New(), http.MethodGet, "/org/me", user)
	require.NoError(t, h.OrgMe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultOrgSlug, auth.lastSlug)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, false, body["is_superuser"])

	org, ok := body["org"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, DefaultOrgSlug, org["org_slug"])
	assert.Equal(t, float64(3), org["user_count"])
}

func TestOrgMeProfileOrgWins(t *testing.T) {
	defaultID := int64(1)
	homeID := int64(7)
	auth := &fakeAuthorizer{allowed: true, orgID: &defaultID}
	admin := &fakeAdminStore{
		orgs: map[int64]*model.Org{
			1: {OrgID: 1, OrgSlug: DefaultOrgSlug},
			7: {OrgID: 7, OrgSlug: "acme"},
		},
		profiles: map[string]*model.Profile{"u1": {ID: "u1", OrgID: &homeID, IsSuperuser: true}},
	}
	h := New(nil, admin, nil, auth, nil, true)

	user := &jwtutil.User{ID: "u1", Metadata: map[string]interface{}{}}
	c, rec := authedContext(echo.New(), http.MethodGet, "/org/me", user)
	require.NoError(t, h.OrgMe(c))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["is_superuser"])
	org := body["org"].(map[string]interface{})
	assert.Equal(t, "acme", org["org_slug"])
}

func TestOrgMeDeniedKeepsEnvelope(t *testing.T) {
	h := New(nil, &fakeAdminStore{}, nil, &fakeAuthorizer{allowed: false}, nil, true)

	user := &jwtutil.User{ID: "u1", Metadata: map[string]interface{}{}}
	c, rec := authedContext(echo.New(), http.MethodGet, "/org/me", user)
	require.NoError(t, h.OrgMe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
}
