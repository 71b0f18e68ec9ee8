package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"divisadero-api/internal/model"
	"divisadero-api/pkg/database"
	"divisadero-api/pkg/jwtutil"
)

// DefaultOrgSlug is the organization provisioned for users whose token
// carries no organization hints.
const DefaultOrgSlug = "default-org"

// AdminStore is the elevated-handle data access the handlers need.
type AdminStore interface {
	GetOrgByID(id int64) (*model.Org, error)
	CountOrgMembers(orgID int64) (int64, error)
	GetProfile(id string) (*model.Profile, error)
	CountProfiles() (int64, error)
}

// ReadStore serves the passthrough read endpoints on the restricted handle,
// so row-level security applies to them.
type ReadStore interface {
	ListProfiles() ([]model.Profile, error)
	ListBrands() ([]model.Brand, error)
	GetBrandBySlug(slug string) (*model.Brand, error)
}

// Authorizer is the permission/provisioning resolver surface.
type Authorizer interface {
	Authorize(user *jwtutil.User, orgSlug string, requireSuperuser bool) (bool, *int64)
}

// InviteService is the invitation workflow surface.
type InviteService interface {
	Invite(orgSlug, email string, inviter *jwtutil.User) (string, error)
	AcceptInvite(user *jwtutil.User) (int64, string, error)
}

// Handler holds the injected collaborators for all endpoints.
type Handler struct {
	db              *database.DB
	admin           AdminStore
	reads           ReadStore
	auth            Authorizer
	invites         InviteService
	adminConfigured bool
}

func New(db *database.DB, admin AdminStore, reads ReadStore, auth Authorizer, invites InviteService, adminConfigured bool) *Handler {
	return &Handler{
		db:              db,
		admin:           admin,
		reads:           reads,
		auth:            auth,
		invites:         invites,
		adminConfigured: adminConfigured,
	}
}

// Validator adapts go-playground/validator to echo's Validator interface.
// Validation failures surface as 422 responses.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
