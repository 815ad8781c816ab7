package httpserver

import (
	"errors"
	"net/http"

	"backoffice/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorPayload struct {
	Type    string              `json:"type"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// abortWithError records err for errorMiddleware and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func badRequest(field, message string) error {
	return domain.NewValidationError(field, "invalid_request", message)
}

// errorMiddleware renders the last handler error as JSON unless a response was already written.
func errorMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}

		status, payload := mapError(last.Err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(last.Err))
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func mapError(err error) (int, errorPayload) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusUnprocessableEntity, errorPayload{Type: "invalid_state", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
