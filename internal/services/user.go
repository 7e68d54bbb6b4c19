package services

import (
	"context"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/auth"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/validation"
)

// UserInput describes a new operator account.
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// UserService checks credentials and manages operator accounts.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate returns the user when username and password match. Unknown
// users and wrong passwords give the same Unauthorized error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Unauthorizedf("invalid username or password")
	}
	if err != nil {
		return nil, persistence("loading user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		logger.Infof("failed login for %q", u.Username)
		return nil, errors.Unauthorizedf("invalid username or password")
	}
	return &u, nil
}

// Actor resolves a session user id into an actor.
func (s *UserService) Actor(ctx context.Context, id uint) (auth.Actor, bool) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Errorf("resolving session user %d: %v", id, err)
		}
		return auth.Actor{}, false
	}
	return auth.Actor{UserID: u.ID, Username: u.Username, Role: u.Role}, true
}

// Create adds an account with a bcrypt hashed password. Admin only.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if _, err := requireAdmin(ctx, "adding a user"); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	v := make(validation.Violations)
	validation.Required("username", in.Username, v)
	validation.Required("password", in.Password, v)
	validation.OneOf("role", in.Role, models.Roles, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, persistence("checking username", err)
	}
	if count > 0 {
		return nil, validation.Violations{"username": "already_exists"}.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Annotate(err, "hashing password")
	}
	u := models.User{Username: username, Password: string(hash), Role: in.Role, Email: strings.TrimSpace(in.Email)}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, persistence("inserting user", err)
	}
	logger.Infof("user %q created with role %s", u.Username, u.Role)
	return &u, nil
}

// List returns every account ordered by username.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, persistence("listing users", err)
	}
	return users, nil
}
