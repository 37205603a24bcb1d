package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type middlewareEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// setupMiddlewareEnv builds a router whose /login/:id route starts a session for any user id
func setupMiddlewareEnv(t *testing.T) *middlewareEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	log, _ := test.NewNullLogger()
	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, security.NewPasswordManager(bcrypt.MinCost), log)
	projectService := services.NewProjectService(repository.NewProjectRepository(db), nil)
	taskService := services.NewTaskService(repository.NewTaskRepository(db), repository.NewProjectRepository(db), userRepo, nil)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))

	r.GET("/login/:id", func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, user.ID)
		session.Set(constants.SessionKeyPasswordVersion, user.PasswordVersion)
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})

	authed := r.Group("/", RequireAuth(authService))
	authed.GET("/me", func(c *gin.Context) {
		user, _ := GetUser(c)
		c.String(http.StatusOK, user.Username)
	})
	authed.GET("/admin", RequireSuperuser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	authed.GET("/projects/:id", RequireProjectAccess(projectService), func(c *gin.Context) {
		project, _ := GetProject(c)
		c.String(http.StatusOK, project.Name)
	})
	authed.GET("/tasks/:id", RequireTaskAccess(taskService), func(c *gin.Context) {
		task, _ := GetTask(c)
		c.String(http.StatusOK, task.Name)
	})

	return &middlewareEnv{db: db, router: r}
}

func (env *middlewareEnv) login(t *testing.T, user *models.User) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/"+strconv.FormatUint(user.ID, 10), nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Result().Cookies()
}

func (env *middlewareEnv) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	env := setupMiddlewareEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")

	w := env.get("/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := env.login(t, alice)
	w = env.get("/me", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRequireAuth_PasswordChangeEndsSession(t *testing.T) {
	env := setupMiddlewareEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	cookies := env.login(t, alice)

	require.NoError(t, env.db.Model(alice).Update("password_version", 1).Error)

	w := env.get("/me", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	env := setupMiddlewareEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	cookies := env.login(t, alice)

	require.NoError(t, env.db.Delete(alice).Error)

	w := env.get("/me", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSuperuser(t *testing.T) {
	env := setupMiddlewareEnv(t)
	staff := testutil.CreateUser(t, env.db, "staff", testutil.Staff())
	root := testutil.CreateUser(t, env.db, "root", testutil.Superuser())

	w := env.get("/admin", env.login(t, staff))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	w = env.get("/admin", env.login(t, root))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireProjectAndTaskAccess(t *testing.T) {
	env := setupMiddlewareEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	project := testutil.CreateProject(t, env.db, "Launch", alice)
	task := testutil.CreateTask(t, env.db, "Write docs", project, nil)

	aliceCookies := env.login(t, alice)
	bobCookies := env.login(t, bob)

	projectPath := "/projects/" + strconv.FormatUint(project.ID, 10)
	taskPath := "/tasks/" + strconv.FormatUint(task.ID, 10)

	w := env.get(projectPath, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Launch", w.Body.String())

	w = env.get(taskPath, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Write docs", w.Body.String())

	assert.Equal(t, http.StatusNotFound, env.get(projectPath, bobCookies).Code)
	assert.Equal(t, http.StatusNotFound, env.get(taskPath, bobCookies).Code)
	assert.Equal(t, http.StatusNotFound, env.get("/projects/abc", aliceCookies).Code)
	assert.Equal(t, http.StatusNotFound, env.get("/tasks/999", aliceCookies).Code)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.NotEmpty(t, generated)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, generated, entry.Data["request_id"])
	assert.Equal(t, 200, entry.Data["status"])

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	const incoming = "3b241101-e2bb-4255-8caf-4136c566a962"
	req.Header.Set(constants.HeaderRequestID, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(constants.HeaderRequestID))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
