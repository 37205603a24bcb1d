package security

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/project-management-api/internal/models"
)

// ResetTokenAudience is the aud claim every reset token carries.
const ResetTokenAudience = "password-reset"

// ErrInvalidResetToken covers every way a reset token can be rejected.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

type resetClaims struct {
	PasswordVersion uint64 `json:"pv"`
	jwt.RegisteredClaims
}

// ResetTokenManager issues and verifies stateless password reset tokens.
// A token names the user and the password version it was issued against,
// so changing the password invalidates it without any stored state.
type ResetTokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokenManager creates a ResetTokenManager signing with secret
func NewResetTokenManager(secret string, ttl time.Duration) *ResetTokenManager {
	return &ResetTokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a token for user
func (m *ResetTokenManager) Generate(user *models.User) (string, error) {
	now := m.now()
	claims := resetClaims{
		PasswordVersion: user.PasswordVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			Audience:  jwt.ClaimStrings{ResetTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// Verify checks that token was issued for user at its current password version and has not expired.
// It returns the password version the token was issued against.
func (m *ResetTokenManager) Verify(tokenString string, user *models.User) (uint64, error) {
	if tokenString == "" || user == nil {
		return 0, ErrInvalidResetToken
	}

	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidResetToken
	}

	if claims.Subject != strconv.FormatUint(user.ID, 10) {
		return 0, ErrInvalidResetToken
	}
	if !slices.Contains(claims.Audience, ResetTokenAudience) {
		return 0, ErrInvalidResetToken
	}
	if claims.PasswordVersion != user.PasswordVersion {
		return 0, ErrInvalidResetToken
	}

	return claims.PasswordVersion, nil
}
