package response

import (
	"log/slog"
	"net/http"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/apperr"

	"github.com/gin-gonic/gin"
)

// SuccessResponse returns a 200 JSON response with no type limitation
func SuccessResponse(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// CreatedResponse returns a 201 JSON response
func CreatedResponse(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

// MessageResponse returns a JSON {"message": ...} body with the given status
func MessageResponse(c *gin.Context, code int, message string) {
	c.JSON(code, models.MessageResponse{Message: message})
}

// ErrorResponse aborts the request with a {"message": ...} body
func ErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, models.MessageResponse{Message: message})
}

// Error renders err using the status of its kind. Server-side failures are
// logged with their cause and reported to the client without it.
func Error(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	_ = c.Error(err)
	ErrorResponse(c, code, apperr.Message(err))
}
