package db

import (
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default records created on first start.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@seize.com"
)

// Seed installs the default admin account and company profile. Existing
// rows are left alone so it is safe to call on every start.
func Seed(conn *gorm.DB) error {
	var admin models.User
	err := conn.Where("username = ?", DefaultAdminUsername).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, herr := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
		if herr != nil {
			return errors.Annotate(herr, "hashing default admin password")
		}
		admin = models.User{
			Username: DefaultAdminUsername,
			Password: string(hash),
			Role:     models.RoleAdmin,
			Email:    DefaultAdminEmail,
		}
		if err := conn.Create(&admin).Error; err != nil {
			return errors.Annotate(err, "creating default admin")
		}
		logger.Infof("seeded default admin user %q", DefaultAdminUsername)
	case err != nil:
		return errors.Annotate(err, "looking up admin user")
	}

	var count int64
	if err := conn.Model(&models.Company{}).Count(&count).Error; err != nil {
		return errors.Annotate(err, "counting company rows")
	}
	if count == 0 {
		if err := conn.Create(&models.Company{Name: models.DefaultCompanyName}).Error; err != nil {
			return errors.Annotate(err, "creating company profile")
		}
		logger.Infof("seeded company profile %q", models.DefaultCompanyName)
	}
	return nil
}
