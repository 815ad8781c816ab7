// Package tenant carries the active organization through a request context.
package tenant

import (
	"context"
	"strings"
)

type orgKey struct{}

// WithOrganizationID stores the organization id in the context.
func WithOrganizationID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgKey{}, strings.TrimSpace(orgID))
}

// OrganizationID returns the organization id from the context, if set.
func OrganizationID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(orgKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
