package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ctchen222/portfolio-tracker/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", apperr.Validation("missing required fields"), http.StatusBadRequest, `{"message":"missing required fields"}`},
		{"conflict", apperr.Conflict("taken"), http.StatusConflict, `{"message":"taken"}`},
		{"unauthenticated", apperr.Unauthenticated("token is missing"), http.StatusUnauthorized, `{"message":"token is missing"}`},
		{"unauthorized", apperr.Unauthorized("unauthorized access"), http.StatusForbidden, `{"message":"unauthorized access"}`},
		{"not found", apperr.NotFound("user not found"), http.StatusNotFound, `{"message":"user not found"}`},
		{"storage hides cause", apperr.Storage("failed to save position", errors.New("disk full")), http.StatusInternalServerError, `{"message":"failed to save position"}`},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, `{"message":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Error(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}

func TestMessageResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	MessageResponse(c, http.StatusCreated, "Stock added successfully")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Stock added successfully"}`, w.Body.String())
}
