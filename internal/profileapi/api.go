// Package profileapi is the HTTP client for the /profile REST resource.
package profileapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/janisto/profile-sync/internal/profile"
)

// Sentinel causes carried by Failure.
var (
	ErrNotFound  = errors.New("profile not found")
	ErrUpstream  = errors.New("profile api error")
	ErrTransport = errors.New("profile api unreachable")
	ErrDecode    = errors.New("profile api response malformed")
)

// Operation names a remote call for failure reporting.
type Operation string

const (
	OpList Operation = "list"
	OpGet  Operation = "get"
	OpSave Operation = "save"
)

// Fallback messages used when a failure carries no usable server text.
const (
	MsgListFailed = "Failed to fetch profiles"
	MsgGetFailed  = "Failed to fetch profile"
	MsgSaveFailed = "Failed to save profile"
)

// FallbackMessage returns the generic message for op.
func FallbackMessage(op Operation) string {
	switch op {
	case OpList:
		return MsgListFailed
	case OpGet:
		return MsgGetFailed
	default:
		return MsgSaveFailed
	}
}

// Failure is the normalized error payload of every remote call.
// Message is never empty.
type Failure struct {
	Op      Operation
	Status  int    // 0 when no response was received
	Body    []byte // server error body, verbatim
	Message string
	kind    error
	cause   error
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Status == 0 {
		return fmt.Sprintf("profile %s failed: %s", f.Op, f.Message)
	}
	return fmt.Sprintf("profile %s failed (status=%d): %s", f.Op, f.Status, f.Message)
}

// Unwrap exposes the sentinel kind and the underlying cause to errors.Is/As.
func (f *Failure) Unwrap() []error {
	if f == nil {
		return nil
	}
	errs := make([]error, 0, 2)
	if f.kind != nil {
		errs = append(errs, f.kind)
	}
	if f.cause != nil {
		errs = append(errs, f.cause)
	}
	return errs
}

// NewFailure builds a Failure for op, falling back to the operation message
// when message is blank. Used by API implementations other than Client.
func NewFailure(op Operation, kind error, message string, cause error) *Failure {
	if message == "" {
		message = FallbackMessage(op)
	}
	return &Failure{Op: op, Message: message, kind: kind, cause: cause}
}

// AsFailure converts any error into a Failure for op, preserving an existing one.
func AsFailure(op Operation, err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) && f != nil {
		return f
	}
	return NewFailure(op, ErrUpstream, "", err)
}

// SaveResult is the response of a create or update.
type SaveResult struct {
	Profile profile.Profile
	// Message is the optional human-readable text the server attached.
	Message string
}

// API is the remote profile resource. Every error returned is a *Failure.
type API interface {
	List(ctx context.Context) ([]profile.Profile, error)
	Get(ctx context.Context, id string) (*profile.Profile, error)
	Upsert(ctx context.Context, p profile.Profile, isEditing bool) (*SaveResult, error)
}
