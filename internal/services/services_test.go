package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	passwords   *security.PasswordManager
	tokens      *security.ResetTokenManager
	log         *logrus.Logger
	logHook     *test.Hook
	createHook  *recordingHook
	mailer      *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	log, hook := test.NewNullLogger()

	return &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		projectRepo: repository.NewProjectRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
		passwords:   security.NewPasswordManager(bcrypt.MinCost),
		tokens:      security.NewResetTokenManager("test-secret", time.Hour),
		log:         log,
		logHook:     hook,
		createHook:  &recordingHook{},
		mailer:      &fakeMailer{},
	}
}

type recordingHook struct {
	projects []uint64
	tasks    []uint64
}

func (h *recordingHook) ProjectCreated(project *models.Project) {
	h.projects = append(h.projects, project.ID)
}

func (h *recordingHook) TaskCreated(task *models.Task) {
	h.tasks = append(h.tasks, task.ID)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}
