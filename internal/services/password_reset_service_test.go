package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/security"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"github.com/yukikurage/project-management-api/internal/utils"
)

func newPasswordResetService(env *testEnv) *PasswordResetService {
	return NewPasswordResetService(env.userRepo, env.tokens, env.passwords, env.mailer, PasswordResetConfig{
		FrontendURL: "http://frontend.test/",
		SiteName:    "Projects",
	}, env.log)
}

// resetLinkParts extracts uid and token from the link in the last email sent
func resetLinkParts(t *testing.T, env *testEnv) (string, string) {
	t.Helper()
	msgs := env.mailer.messages()
	require.NotEmpty(t, msgs)

	const prefix = "http://frontend.test/password-reset-confirm/"
	text := msgs[len(msgs)-1].Text
	start := strings.Index(text, prefix)
	require.GreaterOrEqual(t, start, 0, "reset link not found in %q", text)

	link := strings.Fields(text[start+len(prefix):])[0]
	parts := strings.SplitN(link, "/", 2)
	require.Len(t, parts, 2)
	return parts[0], parts[1]
}

func TestPasswordReset_RequestSendsOneEmailPerMatch(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	alice := testutil.CreateUser(t, env.db, "alice")

	require.NoError(t, svc.RequestReset(context.Background(), "ALICE@example.com"))
	svc.Wait()

	msgs := env.mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, alice.Email, msgs[0].To)
	assert.Contains(t, msgs[0].Text, "http://frontend.test/password-reset-confirm/"+security.EncodeUID(alice.ID)+"/")
}

func TestPasswordReset_RequestUnknownEmailSendsNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	testutil.CreateUser(t, env.db, "alice")

	require.NoError(t, svc.RequestReset(context.Background(), "nobody@example.com"))
	svc.Wait()
	assert.Empty(t, env.mailer.messages())
}

func TestPasswordReset_RequestSkipsInactiveAndCoversDuplicates(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	testutil.CreateUser(t, env.db, "first", testutil.WithEmail("shared@example.com"))
	testutil.CreateUser(t, env.db, "second", testutil.WithEmail("shared@example.com"))
	inactive := testutil.CreateUser(t, env.db, "third", testutil.WithEmail("shared@example.com"))
	require.NoError(t, env.db.Model(inactive).Update("is_active", false).Error)

	require.NoError(t, svc.RequestReset(context.Background(), "shared@example.com"))
	svc.Wait()
	assert.Len(t, env.mailer.messages(), 2)
}

func TestPasswordReset_MailFailureIsOnlyLogged(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("relay down")
	svc := newPasswordResetService(env)
	testutil.CreateUser(t, env.db, "alice")

	require.NoError(t, svc.RequestReset(context.Background(), "alice@example.com"))
	svc.Wait()

	entry := env.logHook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to send password reset email", entry.Message)
}

func TestPasswordReset_ConfirmFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	alice := testutil.CreateUser(t, env.db, "alice")

	require.NoError(t, svc.RequestReset(context.Background(), alice.Email))
	svc.Wait()
	uid, token := resetLinkParts(t, env)

	err := svc.ConfirmReset(context.Background(), ConfirmResetInput{UID: uid, Token: token, NewPassword: "correct-horse-battery"})
	require.NoError(t, err)

	reloaded, err := env.userRepo.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reloaded.PasswordVersion)
	assert.NoError(t, env.passwords.Compare(reloaded.PasswordHash, "correct-horse-battery"))

	// The same link cannot be used twice
	err = svc.ConfirmReset(context.Background(), ConfirmResetInput{UID: uid, Token: token, NewPassword: "another-long-phrase"})
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestPasswordReset_ConfirmRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")

	token, err := env.tokens.Generate(alice)
	require.NoError(t, err)
	uid := security.EncodeUID(alice.ID)

	cases := []struct {
		name  string
		input ConfirmResetInput
	}{
		{"malformed uid", ConfirmResetInput{UID: "***", Token: token, NewPassword: "correct-horse-battery"}},
		{"unknown user", ConfirmResetInput{UID: security.EncodeUID(9999), Token: token, NewPassword: "correct-horse-battery"}},
		{"token for another user", ConfirmResetInput{UID: security.EncodeUID(bob.ID), Token: token, NewPassword: "correct-horse-battery"}},
		{"tampered token", ConfirmResetInput{UID: uid, Token: token[:len(token)-10] + "AAAAAAAAAA", NewPassword: "correct-horse-battery"}},
		{"garbage token", ConfirmResetInput{UID: uid, Token: "garbage", NewPassword: "correct-horse-battery"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ConfirmReset(context.Background(), tc.input)
			assert.ErrorIs(t, err, ErrInvalidResetLink)
		})
	}

	// Nothing above may have changed the password
	reloaded, err := env.userRepo.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), reloaded.PasswordVersion)
}

func TestPasswordReset_ConfirmWeakPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	alice := testutil.CreateUser(t, env.db, "alice")

	token, err := env.tokens.Generate(alice)
	require.NoError(t, err)

	err = svc.ConfirmReset(context.Background(), ConfirmResetInput{
		UID:         security.EncodeUID(alice.ID),
		Token:       token,
		NewPassword: "123",
	})
	var fields apierrors.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.NotEmpty(t, fields["new_password"])

	// A rejected password leaves the token usable
	err = svc.ConfirmReset(context.Background(), ConfirmResetInput{
		UID:         security.EncodeUID(alice.ID),
		Token:       token,
		NewPassword: "correct-horse-battery",
	})
	assert.NoError(t, err)
}

func TestPasswordReset_ConfirmInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	alice := testutil.CreateUser(t, env.db, "alice")
	token, err := env.tokens.Generate(alice)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(alice).Update("is_active", false).Error)

	err = svc.ConfirmReset(context.Background(), ConfirmResetInput{
		UID:         security.EncodeUID(alice.ID),
		Token:       token,
		NewPassword: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestPasswordReset_PasswordChangeInvalidatesOutstandingToken(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	users := NewUserService(env.userRepo, env.passwords)
	alice := testutil.CreateUser(t, env.db, "alice")

	token, err := env.tokens.Generate(alice)
	require.NoError(t, err)

	_, err = users.UpdateUser(alice.ID, UpdateUserInput{Password: utils.Some("brand-new-phrase")})
	require.NoError(t, err)

	err = svc.ConfirmReset(context.Background(), ConfirmResetInput{
		UID:         security.EncodeUID(alice.ID),
		Token:       token,
		NewPassword: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestPasswordReset_ConcurrentConfirmSucceedsOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := newPasswordResetService(env)
	alice := testutil.CreateUser(t, env.db, "alice")
	token, err := env.tokens.Generate(alice)
	require.NoError(t, err)
	input := ConfirmResetInput{UID: security.EncodeUID(alice.ID), Token: token, NewPassword: "correct-horse-battery"}

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ConfirmReset(context.Background(), input)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidResetLink)
	}
	assert.Equal(t, 1, succeeded)

	reloaded, err := env.userRepo.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reloaded.PasswordVersion)
}

type gatedMailer struct {
	release chan struct{}
	inner   *fakeMailer
}

func (m *gatedMailer) Send(ctx context.Context, msg mail.Message) error {
	<-m.release
	return m.inner.Send(ctx, msg)
}

func TestPasswordReset_RequestDoesNotWaitForDelivery(t *testing.T) {
	env := newTestEnv(t)
	gate := &gatedMailer{release: make(chan struct{}), inner: env.mailer}
	svc := NewPasswordResetService(env.userRepo, env.tokens, env.passwords, gate, PasswordResetConfig{
		FrontendURL: "http://frontend.test",
	}, env.log)
	testutil.CreateUser(t, env.db, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
	cancel()
	assert.Empty(t, env.mailer.messages())

	close(gate.release)
	svc.Wait()
	assert.Len(t, env.mailer.messages(), 1)
}
