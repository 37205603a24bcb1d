package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionInvalid     = errors.New("session is no longer valid")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	passwords *security.PasswordManager
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, passwords *security.PasswordManager, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		passwords: passwords,
		log:       log,
		now:       time.Now,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
// Unknown users, inactive users and wrong passwords all return ErrInvalidCredentials
// after the same amount of bcrypt work.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.passwords.CompareDummy(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.passwords.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Authenticate resolves the principal behind a session. The session is only honoured
// while the user exists, is active and has not changed password since login.
func (s *AuthService) Authenticate(userID, passwordVersion uint64) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	if !user.IsActive || user.PasswordVersion != passwordVersion {
		return nil, ErrSessionInvalid
	}

	return user, nil
}
