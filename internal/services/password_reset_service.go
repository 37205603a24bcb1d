package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"gorm.io/gorm"
)

// ErrInvalidResetLink is the single error for every rejected reset confirmation,
// so callers cannot tell a tampered token from an expired or used one.
var ErrInvalidResetLink = errors.New("invalid or expired reset link")

// PasswordResetConfig holds the values that shape the reset email
type PasswordResetConfig struct {
	FrontendURL string
	SiteName    string
}

// PasswordResetService issues and redeems password reset tokens
type PasswordResetService struct {
	userRepo  repository.UserRepository
	tokens    *security.ResetTokenManager
	passwords *security.PasswordManager
	mailer    mail.Mailer
	cfg       PasswordResetConfig
	log       logrus.FieldLogger
	now       func() time.Time
	pending   sync.WaitGroup
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	userRepo repository.UserRepository,
	tokens *security.ResetTokenManager,
	passwords *security.PasswordManager,
	mailer mail.Mailer,
	cfg PasswordResetConfig,
	log logrus.FieldLogger,
) *PasswordResetService {
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &PasswordResetService{
		userRepo:  userRepo,
		tokens:    tokens,
		passwords: passwords,
		mailer:    mailer,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// ConfirmResetInput holds a reset confirmation
type ConfirmResetInput struct {
	UID         string
	Token       string
	NewPassword string
}

// RequestReset emails a reset link to every active user registered with email.
// Emails go out in the background so the response does not depend on whether any
// user matched; delivery failures are only logged.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	users, err := s.userRepo.FindActiveByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to find users by email: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	sendCtx := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		for i := range users {
			s.sendResetEmail(sendCtx, &users[i])
		}
	}()
	return nil
}

// Wait blocks until every reset email queued by RequestReset has been handled
func (s *PasswordResetService) Wait() {
	s.pending.Wait()
}

// ResetURL builds the frontend link that carries uid and token
func (s *PasswordResetService) ResetURL(uid, token string) string {
	return fmt.Sprintf("%s/password-reset-confirm/%s/%s", s.cfg.FrontendURL, uid, token)
}

func (s *PasswordResetService) sendResetEmail(ctx context.Context, user *models.User) {
	log := s.log.WithField("user_id", user.ID)

	token, err := s.tokens.Generate(user)
	if err != nil {
		log.WithError(err).Error("failed to generate password reset token")
		return
	}

	msg, err := mail.PasswordResetMessage(user.Email, mail.PasswordResetData{
		Username: user.Username,
		ResetURL: s.ResetURL(security.EncodeUID(user.ID), token),
		SiteName: s.cfg.SiteName,
	})
	if err != nil {
		log.WithError(err).Error("failed to render password reset email")
		return
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		log.WithError(err).Error("failed to send password reset email")
		return
	}
	log.Info("password reset email sent")
}

// ConfirmReset sets a new password when uid and token are valid.
// It returns ErrInvalidResetLink for any token problem and FieldErrors for a weak password.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, input ConfirmResetInput) error {
	id, err := security.DecodeUID(input.UID)
	if err != nil {
		return ErrInvalidResetLink
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetLink
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return ErrInvalidResetLink
	}

	version, err := s.tokens.Verify(input.Token, user)
	if err != nil {
		return ErrInvalidResetLink
	}

	if problems := s.passwords.Validate(input.NewPassword, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	}); len(problems) > 0 {
		return apierrors.FieldErrors{"new_password": problems}
	}

	hash, err := s.passwords.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	updated, err := s.userRepo.UpdatePasswordIfVersion(user.ID, version, hash, s.now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if !updated {
		// Another confirmation with the same token won the race
		return ErrInvalidResetLink
	}

	s.log.WithField("user_id", user.ID).Info("password reset completed")
	return nil
}
