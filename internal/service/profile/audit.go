package profile

import (
	"context"
	"errors"

	applog "github.com/janisto/profile-sync/internal/platform/logging"
)

const auditResource = "profile"

// audit records the outcome of a mutation. Failures carry only a category,
// never the raw error or profile data.
func audit(ctx context.Context, action, id string, err error) {
	e := applog.AuditEvent{
		Action:     action,
		Resource:   auditResource,
		ResourceID: id,
		Result:     applog.AuditSuccess,
	}
	if err != nil {
		e.Result = applog.AuditFailure
		e.Details = map[string]any{"error": categorizeError(err)}
	}
	applog.Audit(ctx, e)
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal_error"
	}
}
