package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-Id"
	ctxRequestID    = "request_id"
	ctxOrganization = "organization"
)

// OrganizationResolver looks up the tenant named in the URL.
type OrganizationResolver interface {
	GetByKey(ctx context.Context, key string) (*domain.Organization, error)
}

// organizationMiddleware resolves :orgKey and binds the organization to the request context.
func organizationMiddleware(orgs OrganizationResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("orgKey"))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: errorPayload{
				Type:    "validation_error",
				Message: "organization key is required",
			}})
			return
		}

		org, err := orgs.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: errorPayload{
					Type:    "not_found",
					Message: "organization not found",
				}})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: errorPayload{
				Type:    "internal_error",
				Message: "failed to resolve organization",
			}})
			return
		}

		c.Set(ctxOrganization, org)
		c.Request = c.Request.WithContext(tenant.WithOrganizationID(c.Request.Context(), org.ID))
		c.Next()
	}
}

// requestLogger logs one line per request and propagates X-Request-Id.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if org, ok := c.Get(ctxOrganization); ok {
			o := org.(*domain.Organization)
			fields = append(fields, zap.String("organization", o.Key), zap.String("organization_id", o.ID))
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.String("error", last.Error()))
		}

		switch {
		case route == "/metrics" || route == "/healthz":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

// organizationID returns the id bound by organizationMiddleware.
func organizationID(c *gin.Context) string {
	id, _ := tenant.OrganizationID(c.Request.Context())
	return id
}
