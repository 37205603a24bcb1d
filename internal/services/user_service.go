package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

const (
	msgUsernameTaken   = "A user with that username already exists."
	msgUsernameInvalid = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgEmailInvalid    = "Enter a valid email address."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = validator.New()

// UserService manages user accounts. Callers are expected to have checked the superuser gate.
type UserService struct {
	userRepo  repository.UserRepository
	passwords *security.PasswordManager
	now       func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, passwords *security.PasswordManager) *UserService {
	return &UserService{
		userRepo:  userRepo,
		passwords: passwords,
		now:       time.Now,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

// UpdateUserInput represents a partial update. Unset fields are left alone.
type UpdateUserInput struct {
	Username    utils.Optional[string]
	Email       utils.Optional[string]
	Password    utils.Optional[string]
	IsStaff     utils.Optional[bool]
	IsSuperuser utils.Optional[bool]
	IsActive    utils.Optional[bool]
}

// ListUsers returns users newest first
func (s *UserService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUser validates input and stores a new active user
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	fields := apierrors.FieldErrors{}

	username := strings.TrimSpace(input.Username)
	if _, err := s.checkUsername(fields, username, 0); err != nil {
		return nil, err
	}
	checkEmail(fields, input.Email)

	if input.Password == "" {
		fields.Add("password", msgRequired)
	} else if problems := s.passwords.Validate(input.Password, map[string]string{
		"username": username,
		"email":    input.Email,
	}); len(problems) > 0 {
		fields["password"] = problems
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Username:          username,
		Email:             input.Email,
		PasswordHash:      hash,
		IsStaff:           input.IsStaff || input.IsSuperuser,
		IsSuperuser:       input.IsSuperuser,
		IsActive:          true,
		PasswordChangedAt: &now,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.FieldErrors{"username": {msgUsernameTaken}}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUser applies a partial update. A new password is re-hashed and ends existing sessions.
func (s *UserService) UpdateUser(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	fields := apierrors.FieldErrors{}

	if input.Username.Set {
		username := strings.TrimSpace(input.Username.Value)
		if input.Username.Null {
			fields.Add("username", msgNull)
		} else {
			ok, err := s.checkUsername(fields, username, user.ID)
			if err != nil {
				return nil, err
			}
			if ok {
				user.Username = username
			}
		}
	}
	if input.Email.Set {
		if input.Email.Null {
			fields.Add("email", msgNull)
		} else if checkEmail(fields, input.Email.Value) {
			user.Email = input.Email.Value
		}
	}
	if input.IsStaff.Present() {
		user.IsStaff = input.IsStaff.Value
	}
	if input.IsSuperuser.Present() {
		user.IsSuperuser = input.IsSuperuser.Value
	}
	if input.IsActive.Present() {
		user.IsActive = input.IsActive.Value
	}

	if input.Password.Set {
		if !input.Password.Present() || input.Password.Value == "" {
			fields.Add("password", msgBlank)
		} else if problems := s.passwords.Validate(input.Password.Value, map[string]string{
			"username": user.Username,
			"email":    user.Email,
		}); len(problems) > 0 {
			fields["password"] = problems
		}
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	if input.Password.Present() {
		hash, err := s.passwords.Hash(input.Password.Value)
		if err != nil {
			return nil, err
		}
		now := s.now()
		user.PasswordHash = hash
		user.PasswordVersion++
		user.PasswordChangedAt = &now
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.FieldErrors{"username": {msgUsernameTaken}}
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user with their projects and assigned tasks
func (s *UserService) DeleteUser(id uint64) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// checkUsername records username problems and reports whether it is acceptable
func (s *UserService) checkUsername(fields apierrors.FieldErrors, username string, excludeID uint64) (bool, error) {
	switch {
	case username == "":
		fields.Add("username", msgRequired)
		return false, nil
	case utf8.RuneCountInString(username) > constants.MaxUsernameLength:
		fields.Add("username", msgMaxLength(constants.MaxUsernameLength))
		return false, nil
	case !usernamePattern.MatchString(username):
		fields.Add("username", msgUsernameInvalid)
		return false, nil
	}

	taken, err := s.userRepo.UsernameTaken(username, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		fields.Add("username", msgUsernameTaken)
		return false, nil
	}
	return true, nil
}

func checkEmail(fields apierrors.FieldErrors, email string) bool {
	if email == "" {
		fields.Add("email", msgRequired)
		return false
	}
	if err := validate.Var(email, "email"); err != nil {
		fields.Add("email", msgEmailInvalid)
		return false
	}
	return true
}
