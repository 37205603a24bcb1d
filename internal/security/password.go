// Package security hashes passwords, checks their strength and issues password reset tokens.
package security

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/yukikurage/project-management-api/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password does not match")

// maxSimilarity is the longest-common-substring ratio above which a password
// is considered too close to a user attribute.
const maxSimilarity = 0.7

// PasswordManager hashes and verifies passwords with bcrypt.
type PasswordManager struct {
	cost      int
	dummyHash []byte
}

// NewPasswordManager creates a PasswordManager. Costs outside bcrypt's range fall back to the default.
func NewPasswordManager(cost int) *PasswordManager {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		panic(fmt.Sprintf("security: failed to build dummy hash: %v", err))
	}
	return &PasswordManager{cost: cost, dummyHash: dummy}
}

// Hash returns the bcrypt hash of password.
func (m *PasswordManager) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare checks password against hash. It returns ErrPasswordMismatch on a wrong password.
func (m *PasswordManager) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// CompareDummy burns the same time as Compare for callers that have no user to check.
func (m *PasswordManager) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(m.dummyHash, []byte(password))
}

// Validate returns the strength problems of password, or nil when it is acceptable.
// attributes holds user fields (username, email) the password must not resemble.
func (m *PasswordManager) Validate(password string, attributes map[string]string) []string {
	var problems []string

	if len([]rune(password)) < constants.MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", constants.MinPasswordLength))
	}

	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	if _, common := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; common {
		problems = append(problems, "This password is too common.")
	}

	if field, similar := similarAttribute(password, attributes); similar {
		problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", field))
	}

	return problems
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func similarAttribute(password string, attributes map[string]string) (string, bool) {
	lowered := strings.ToLower(password)
	for _, field := range []string{"username", "email"} {
		value := strings.ToLower(attributes[field])
		if value == "" {
			continue
		}
		candidates := []string{value}
		if field == "email" {
			if local, _, ok := strings.Cut(value, "@"); ok && local != "" {
				candidates = append(candidates, local)
			}
		}
		for _, candidate := range candidates {
			if similarity(lowered, candidate) >= maxSimilarity {
				return field, true
			}
		}
	}
	return "", false
}

// similarity is 2*LCS/(len(a)+len(b)) where LCS is the longest common substring.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	longest := 0
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > longest {
					longest = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	return 2 * float64(longest) / float64(len(ra)+len(rb))
}

var commonPasswords = toSet(
	"password", "password1", "password12", "password123", "passw0rd", "p@ssw0rd",
	"12345678", "123456789", "1234567890", "87654321", "11111111", "00000000",
	"qwerty", "qwerty123", "qwertyuiop", "asdfghjkl", "zxcvbnm", "1q2w3e4r",
	"iloveyou", "sunshine", "princess", "football", "baseball", "basketball",
	"welcome", "welcome1", "letmein", "trustno1", "starwars", "whatever",
	"superman", "batman", "dragon", "monkey", "shadow", "master", "michael",
	"jennifer", "jordan23", "liverpool", "chelsea", "computer", "internet",
	"abc12345", "abcd1234", "admin123", "administrator", "changeme", "secret123",
	"letmein1", "hello123", "freedom", "mustang", "access14", "charlie1",
)

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
