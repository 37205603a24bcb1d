package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// errorBody mirrors apierrors.ErrorResponse with the error left undecoded
type errorBody struct {
	Error json.RawMessage `json:"error"`
	Code  string          `json:"code"`
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

// createAuthContext builds a context as RequireAuth would leave it for user
func createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
	}
	return c, w
}

func decodeFieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "INVALID_INPUT", body.Code)

	fields := map[string][]string{}
	require.NoError(t, json.Unmarshal(body.Error, &fields))
	return fields
}
