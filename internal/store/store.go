package store

import (
	"errors"

	"gorm.io/gorm"

	"divisadero-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store wraps the elevated store handle with the org/profile/brand accessors
// used by the resolver and the invite workflow.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetOrgBySlug looks an organization up by its unique slug.
func (s *Store) GetOrgBySlug(slug string) (*model.Org, error) {
	var org model.Org
	if err := s.db.Where("org_slug = ?", slug).First(&org).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

// GetOrgByID looks an organization up by its assigned id.
func (s *Store) GetOrgByID(id int64) (*model.Org, error) {
	var org model.Org
	if err := s.db.Where("org_id = ?", id).First(&org).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

// CreateOrg inserts a new organization row; the store assigns the id.
func (s *Store) CreateOrg(org *model.Org) error {
	return s.db.Create(org).Error
}

// CountOrgMembers counts the profiles bound to an organization.
func (s *Store) CountOrgMembers(orgID int64) (int64, error) {
	var count int64
	if err := s.db.Model(&model.Profile{}).Where("org_id = ?", orgID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetProfile fetches the profile for a user id.
func (s *Store) GetProfile(id string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// CreateProfile inserts a new profile row.
func (s *Store) CreateProfile(profile *model.Profile) error {
	return s.db.Create(profile).Error
}

// SetProfileOrg updates only a profile's organization binding.
func (s *Store) SetProfileOrg(id string, orgID int64) error {
	return s.db.Model(&model.Profile{}).Where("id = ?", id).
		Update("org_id", orgID).Error
}

// UpdateProfileMembership rebinds a profile to an organization and sets its
// activation flag. Used by the invite and accept flows.
func (s *Store) UpdateProfileMembership(id string, orgID int64, activated bool) error {
	return s.db.Model(&model.Profile{}).Where("id = ?", id).
		Updates(map[string]interface{}{"org_id": orgID, "is_activated": activated}).Error
}

// ListProfiles returns all profiles visible to the handle.
func (s *Store) ListProfiles() ([]model.Profile, error) {
	var profiles []model.Profile
	if err := s.db.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// CountProfiles counts all profiles visible to the handle.
func (s *Store) CountProfiles() (int64, error) {
	var count int64
	if err := s.db.Model(&model.Profile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListBrands returns all brands.
func (s *Store) ListBrands() ([]model.Brand, error) {
	var brands []model.Brand
	if err := s.db.Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// GetBrandBySlug looks a brand up by its slug.
func (s *Store) GetBrandBySlug(slug string) (*model.Brand, error) {
	var brand model.Brand
	if err := s.db.Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, translate(err)
	}
	return &brand, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
