package invite

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"divisadero-api/internal/model"
	"divisadero-api/internal/store"
	"divisadero-api/pkg/apperr"
	"divisadero-api/pkg/authadmin"
	"divisadero-api/pkg/jwtutil"
	"divisadero-api/prometheus"
)

// AdminAPI is the identity provider surface the workflow needs.
type AdminAPI interface {
	CreateUser(params authadmin.CreateUserParams) (*authadmin.AdminUser, error)
	GenerateLink(linkType, email, redirectTo string) (string, error)
}

// Mailer sends the fallback invitation email.
type Mailer interface {
	Enabled() bool
	Send(to, subject, html string) error
}

// Authorizer decides whether the inviter may act on the organization.
type Authorizer interface {
	Authorize(user *jwtutil.User, orgSlug string, requireSuperuser bool) (bool, *int64)
}

// Store is the subset of the data access layer the workflow needs.
type Store interface {
	GetOrgBySlug(slug string) (*model.Org, error)
	GetOrgByID(id int64) (*model.Org, error)
	GetProfile(id string) (*model.Profile, error)
	CreateProfile(profile *model.Profile) error
	UpdateProfileMembership(id string, orgID int64, activated bool) error
}

// Service orchestrates onboarding a new user into an organization: the
// provider's admin API first, the transactional email API as a fallback.
type Service struct {
	auth        Authorizer
	admin       AdminAPI
	mail        Mailer
	store       Store
	frontendURL string
	log         *zap.Logger
}

func NewService(auth Authorizer, admin AdminAPI, mail Mailer, s Store, frontendURL string, log *zap.Logger) *Service {
	return &Service{
		auth:        auth,
		admin:       admin,
		mail:        mail,
		store:       s,
		frontendURL: frontendURL,
		log:         log,
	}
}

// Invite onboards email into the organization identified by orgSlug on
// behalf of inviter and returns the invited user's id.
func (s *Service) Invite(orgSlug, email string, inviter *jwtutil.User) (string, error) {
	log := s.log.With(zap.String("org_slug", orgSlug), zap.String("email", email))

	allowed, orgID := s.auth.Authorize(inviter, orgSlug, false)
	if !allowed {
		return "", apperr.New(apperr.Authorization, "you do not have permission to invite users to this organization")
	}
	if orgID == nil {
		return "", apperr.New(apperr.NotFound, "organization not found")
	}

	redirectTo := s.frontendURL + "/accept-invite"
	hints := map[string]interface{}{
		"org_slug":       orgSlug,
		"org_id":         *orgID,
		"pending_invite": true,
	}

	user, err := s.admin.CreateUser(authadmin.CreateUserParams{
		Email:        email,
		UserMetadata: hints,
		AppMetadata:  hints,
		RedirectTo:   redirectTo,
	})
	if err != nil {
		prometheus.RecordInvite("failed")
		return "", err
	}

	if user.EmailDispatched() {
		log.Info("Provider already dispatched invitation email", zap.String("user_id", user.ID))
		prometheus.RecordInvite("provider_email")
	} else {
		if err := s.sendFallbackInvite(orgSlug, email, redirectTo, log); err != nil {
			return "", err
		}
	}

	// The invitee's profile is provisional until they accept. Upsert
	// failures are logged but never fail the invitation.
	if err := s.upsertProfile(user.ID, *orgID, false); err != nil {
		log.Error("Failed to upsert invited profile",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	return user.ID, nil
}

func (s *Service) sendFallbackInvite(orgSlug, email, redirectTo string, log *zap.Logger) error {
	link, err := s.admin.GenerateLink("invite", email, redirectTo)
	if err != nil {
		prometheus.RecordInvite("failed")
		return err
	}

	if !s.mail.Enabled() {
		log.Info("Email API key not configured, invite link not emailed",
			zap.String("invite_link", link))
		prometheus.RecordInvite("link_only")
		return nil
	}

	subject := fmt.Sprintf("You've been invited to join %s", orgSlug)
	if err := s.mail.Send(email, subject, inviteEmailHTML(orgSlug, link)); err != nil {
		// The profile upsert and the returned user id still stand.
		log.Error("Failed to send invitation email", zap.Error(err))
	}
	prometheus.RecordInvite("fallback_email")
	return nil
}

// AcceptInvite reconciles the caller's profile from the organization hints
// carried in their token metadata.
func (s *Service) AcceptInvite(user *jwtutil.User) (int64, string, error) {
	orgSlug, _ := user.Metadata["org_slug"].(string)

	var orgID int64
	switch v := user.Metadata["org_id"].(type) {
	case float64:
		orgID = int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			orgID = n
		}
	}

	if orgID == 0 && orgSlug != "" {
		if org, err := s.store.GetOrgBySlug(orgSlug); err == nil {
			orgID = org.OrgID
		}
	}
	if orgID == 0 {
		return 0, "", apperr.New(apperr.Validation, "no organization could be determined from the invitation")
	}

	if orgSlug == "" {
		if org, err := s.store.GetOrgByID(orgID); err == nil {
			orgSlug = org.OrgSlug
		}
	}

	if err := s.upsertProfile(user.ID, orgID, true); err != nil {
		return 0, "", apperr.Wrap(apperr.Upstream, "failed to update profile", err)
	}

	s.log.Info("Invitation accepted",
		zap.String("user_id", user.ID),
		zap.Int64("org_id", orgID),
		zap.String("org_slug", orgSlug))

	return orgID, orgSlug, nil
}

func (s *Service) upsertProfile(id string, orgID int64, activated bool) error {
	_, err := s.store.GetProfile(id)
	if errors.Is(err, store.ErrNotFound) {
		return s.store.CreateProfile(&model.Profile{
			ID:          id,
			OrgID:       &orgID,
			IsActivated: activated,
			IsSuperuser: false,
		})
	}
	if err != nil {
		return err
	}
	return s.store.UpdateProfileMembership(id, orgID, activated)
}

func inviteEmailHTML(orgSlug, link string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You've been invited to join %s</h2>
  <p>Click the button below to accept the invitation and set up your account.</p>
  <p><a href="%s" style="display: inline-block; padding: 12px 24px; background: #1a73e8; color: #fff; text-decoration: none; border-radius: 4px;">Accept invitation</a></p>
  <p>If the button doesn't work, copy this link into your browser:</p>
  <p><a href="%s">%s</a></p>
</div>`, orgSlug, link, link, link)
}
