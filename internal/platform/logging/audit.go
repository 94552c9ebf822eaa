package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEvent records one mutation of a stored resource.
type AuditEvent struct {
	Action     string // "create", "update"
	Resource   string
	ResourceID string // empty when the store failed before assigning one
	Result     string
	Details    map[string]any
}

// Audit writes e at info level under the "audit." field namespace.
func Audit(ctx context.Context, e AuditEvent) {
	fields := []zap.Field{
		zap.String("audit.action", e.Action),
		zap.String("audit.resource_type", e.Resource),
		zap.String("audit.resource_id", e.ResourceID),
		zap.String("audit.result", e.Result),
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("audit.details", e.Details))
	}
	LoggerFromContext(ctx).Info("Audit event", fields...)
}
