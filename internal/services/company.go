package services

import (
	"context"
	"strings"

	"github.com/juju/errors"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/validation"
)

// CompanyInput holds the editable company profile fields.
type CompanyInput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	GSTIN    string `json:"gstin"`
	LogoPath string `json:"logo_path"`
}

// CompanyService reads and writes the single company profile row.
type CompanyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

// Get returns the profile, or an unsaved default when none exists yet.
func (s *CompanyService) Get(ctx context.Context) (*models.Company, error) {
	var c models.Company
	err := s.db.WithContext(ctx).Order("id").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Company{Name: models.DefaultCompanyName}, nil
	}
	if err != nil {
		return nil, persistence("loading company", err)
	}
	return &c, nil
}

// Update saves the profile, creating the row when missing. Admin only.
func (s *CompanyService) Update(ctx context.Context, in CompanyInput) (*models.Company, error) {
	if _, err := requireAdmin(ctx, "editing company settings"); err != nil {
		return nil, err
	}
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Address = strings.TrimSpace(in.Address)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Email = strings.TrimSpace(in.Email)
	c.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	c.LogoPath = strings.TrimSpace(in.LogoPath)
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, persistence("saving company", err)
	}
	return c, nil
}
