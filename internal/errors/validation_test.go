package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Username string `json:"username" binding:"required,max=5"`
	Email    string `json:"email" binding:"required,email"`
}

func TestFromBindingError_UsesJSONNames(t *testing.T) {
	err := binding.Validator.ValidateStruct(&signupRequest{Username: "toolongname", Email: "nope"})
	require.Error(t, err)

	fields, ok := FromBindingError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Ensure this field has no more than 5 characters."}, fields["username"])
	assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
}

func TestFromBindingError_NotValidation(t *testing.T) {
	_, ok := FromBindingError(errors.New("unexpected EOF"))
	assert.False(t, ok)
}

func TestFieldErrors_ErrAndMessage(t *testing.T) {
	fields := FieldErrors{}
	assert.NoError(t, fields.Err())

	fields.Add("name", "This field is required.")
	fields.Add("end_date", "Bad date.")
	require.Error(t, fields.Err())
	assert.Equal(t, "validation failed: end_date: Bad date.; name: This field is required.", fields.Error())
}

func TestRespondBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("field errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var req signupRequest
		err := c.ShouldBindJSON(&req)
		RespondBindingError(c, err)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body struct {
			Error map[string][]string `json:"error"`
			Code  string              `json:"code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, ErrCodeInvalidInput, body.Code)
		assert.Contains(t, body.Error, "username")
		assert.Contains(t, body.Error, "email")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
		c.Request.Header.Set("Content-Type", "application/json")

		var req signupRequest
		err := c.ShouldBindJSON(&req)
		RespondBindingError(c, err)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Invalid request body", body.Error)
	})
}
