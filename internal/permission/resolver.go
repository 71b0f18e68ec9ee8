package permission

import (
	"errors"

	"go.uber.org/zap"

	"divisadero-api/internal/model"
	"divisadero-api/internal/store"
	"divisadero-api/pkg/jwtutil"
	"divisadero-api/prometheus"
)

// Store is the subset of the data access layer the resolver needs.
type Store interface {
	GetOrgBySlug(slug string) (*model.Org, error)
	CreateOrg(org *model.Org) error
	GetProfile(id string) (*model.Profile, error)
	CreateProfile(profile *model.Profile) error
	SetProfileOrg(id string, orgID int64) error
}

// Resolver decides whether a user may act on an organization, lazily
// creating the organization and the user's profile as needed.
type Resolver struct {
	store Store
	log   *zap.Logger

	// strictOrgMatch turns the tolerated organization mismatch into a deny.
	// Off by default to keep the permissive development-mode semantics.
	strictOrgMatch bool
}

func NewResolver(s Store, strictOrgMatch bool, log *zap.Logger) *Resolver {
	return &Resolver{store: s, strictOrgMatch: strictOrgMatch, log: log}
}

// Authorize checks whether user may act on the organization identified by
// orgSlug. A never-seen slug creates the organization; a never-seen user is
// granted access and bound to it. With requireSuperuser the decision rests
// on the superuser flag alone and the org id is withheld.
//
// Data access failures never propagate: they resolve to (false, nil),
// except for the org assignment update which grants regardless.
func (r *Resolver) Authorize(user *jwtutil.User, orgSlug string, requireSuperuser bool) (bool, *int64) {
	log := r.log.With(zap.String("user_id", user.ID), zap.String("org_slug", orgSlug))

	var orgID int64
	org, err := r.store.GetOrgBySlug(orgSlug)
	switch {
	case err == nil:
		orgID = org.OrgID
	case errors.Is(err, store.ErrNotFound):
		newOrg := &model.Org{OrgSlug: orgSlug}
		if err := r.store.CreateOrg(newOrg); err != nil {
			log.Error("Failed to create organization", zap.Error(err))
			prometheus.RecordPermissionCheck("error")
			return false, nil
		}
		orgID = newOrg.OrgID
		log.Info("Created organization", zap.Int64("org_id", orgID))
	default:
		log.Error("Failed to query organization", zap.Error(err))
		prometheus.RecordPermissionCheck("error")
		return false, nil
	}

	profile, err := r.store.GetProfile(user.ID)
	if errors.Is(err, store.ErrNotFound) {
		// First sight of this user: create a profile bound to the queried
		// organization and grant access.
		newProfile := &model.Profile{
			ID:          user.ID,
			OrgID:       &orgID,
			IsActivated: true,
			IsSuperuser: false,
		}
		if err := r.store.CreateProfile(newProfile); err != nil {
			log.Error("Failed to create profile", zap.Error(err))
			prometheus.RecordPermissionCheck("error")
			return false, nil
		}
		log.Info("Created profile", zap.Int64("org_id", orgID))
		prometheus.RecordPermissionCheck("granted")
		return true, &orgID
	}
	if err != nil {
		log.Error("Failed to query profile", zap.Error(err))
		prometheus.RecordPermissionCheck("error")
		return false, nil
	}

	if requireSuperuser {
		// Org id is withheld on this branch.
		if profile.IsSuperuser {
			prometheus.RecordPermissionCheck("granted")
		} else {
			prometheus.RecordPermissionCheck("denied")
		}
		return profile.IsSuperuser, nil
	}

	if profile.IsSuperuser {
		prometheus.RecordPermissionCheck("granted")
		return true, &orgID
	}

	if profile.OrgID == nil {
		// Unbound user: assign them to the queried organization. The grant
		// stands even when the update fails.
		if err := r.store.SetProfileOrg(user.ID, orgID); err != nil {
			log.Warn("Failed to assign organization to profile", zap.Error(err))
		} else {
			log.Info("Assigned organization to profile", zap.Int64("org_id", orgID))
		}
		prometheus.RecordPermissionCheck("granted")
		return true, &orgID
	}

	if *profile.OrgID == orgID {
		prometheus.RecordPermissionCheck("granted")
		return true, &orgID
	}

	if r.strictOrgMatch {
		log.Warn("Organization mismatch denied",
			zap.Int64("profile_org_id", *profile.OrgID),
			zap.Int64("requested_org_id", orgID))
		prometheus.RecordPermissionCheck("denied")
		return false, nil
	}

	log.Warn("Organization mismatch tolerated",
		zap.Int64("profile_org_id", *profile.OrgID),
		zap.Int64("requested_org_id", orgID))
	prometheus.RecordPermissionCheck("granted")
	return true, &orgID
}
