package screen

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/janisto/profile-sync/internal/cache"
	"github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profile"
	"github.com/janisto/profile-sync/internal/profileapi"
	"github.com/janisto/profile-sync/internal/state"
	"github.com/janisto/profile-sync/internal/validation"
)

const (
	MsgCreated      = "Profile created successfully!"
	MsgUpdated      = "Profile updated successfully!"
	MsgSaveFallback = "Failed to save profile. Please try again."
)

var (
	// ErrInvalid is returned by Submit when the draft has violations. See Errors.
	ErrInvalid = errors.New("profile form has invalid fields")
	// ErrNotReady is returned by Submit in edit mode before the record has loaded.
	ErrNotReady = errors.New("profile form is still loading the record")
	// ErrSuperseded is returned when the save completion was discarded.
	ErrSuperseded = errors.New("profile save was superseded")
	// ErrUnknownField is returned by Change and Blur for fields the form does not have.
	ErrUnknownField = errors.New("unknown profile field")
)

var formFields = []string{validation.FieldName, validation.FieldEmail, validation.FieldAge}

// ProfileForm collects a draft for create or edit.
type ProfileForm struct {
	container *state.Container
	cache     *cache.ProfileCache
	logger    *zap.Logger
	isEditing bool
	id        string

	mu       sync.Mutex
	draft    profile.Profile
	touched  map[string]bool
	errors   validation.Violations
	loaded   bool
	requests []*state.Request
}

// NewProfileForm creates a form whose mode comes from the route query.
func NewProfileForm(container *state.Container, pc *cache.ProfileCache, query url.Values, logger *zap.Logger) *ProfileForm {
	if logger == nil {
		logger = logging.Logger()
	}
	isEditing, id := ParseFormQuery(query)
	return &ProfileForm{
		container: container,
		cache:     pc,
		logger:    logger,
		isEditing: isEditing,
		id:        id,
		touched:   make(map[string]bool),
		errors:    validation.Violations{},
		loaded:    !isEditing,
	}
}

// IsEditing reports whether the form updates an existing record.
func (f *ProfileForm) IsEditing() bool { return f.isEditing }

// ID is the record being edited, or "" in create mode.
func (f *ProfileForm) ID() string { return f.id }

// Mount loads the record in edit mode and fills the draft with it.
// A failed load is returned and leaves the form unable to submit.
func (f *ProfileForm) Mount(ctx context.Context) error {
	if !f.isEditing {
		return nil
	}
	req := f.container.FetchByID(ctx, f.id)
	f.track(req)
	res, err := req.Wait(ctx)
	if err != nil {
		return err
	}
	if res.Stale {
		return nil
	}
	if res.Err != nil {
		f.logger.Warn("failed to load profile for editing",
			zap.String("profileId", f.id),
			zap.Error(res.Err),
		)
		return res.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = *res.Profile
	f.loaded = true
	return nil
}

// CanSubmit is false in edit mode until the record has loaded.
func (f *ProfileForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Draft returns the current form values.
func (f *ProfileForm) Draft() profile.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Change sets field to value and revalidates it once the field has been touched.
func (f *ProfileForm) Change(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case validation.FieldName:
		f.draft.Name = value
	case validation.FieldEmail:
		f.draft.Email = value
	case validation.FieldAge:
		f.draft.Age = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if f.touched[field] {
		f.revalidate(field)
	}
	return nil
}

// Blur marks field as touched and revalidates it.
func (f *ProfileForm) Blur(field string) error {
	switch field {
	case validation.FieldName, validation.FieldEmail, validation.FieldAge:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[field] = true
	f.revalidate(field)
	return nil
}

// Errors returns the visible violations, keyed by field.
func (f *ProfileForm) Errors() validation.Violations {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

// revalidate refreshes the message for one field. Caller holds mu.
func (f *ProfileForm) revalidate(field string) {
	if msg := validation.ValidateField(f.draft, field); msg != "" {
		f.errors[field] = msg
		return
	}
	delete(f.errors, field)
}

// Submit validates every field and saves the draft. On success the submitted
// draft is written to the local cache and the notification navigates to the
// profile page. A remote failure is reported as an error notification with a
// nil error.
func (f *ProfileForm) Submit(ctx context.Context) (Notification, error) {
	f.mu.Lock()
	for _, field := range formFields {
		f.touched[field] = true
	}
	f.errors = validation.Validate(f.draft)
	if !f.errors.Empty() {
		f.mu.Unlock()
		return Notification{}, ErrInvalid
	}
	if !f.loaded {
		f.mu.Unlock()
		return Notification{}, ErrNotReady
	}
	draft := f.draft
	f.mu.Unlock()

	req := f.container.Save(ctx, draft, f.isEditing)
	f.track(req)
	res, err := req.Wait(ctx)
	if err != nil {
		return Notification{}, err
	}
	if res.Stale {
		return Notification{}, ErrSuperseded
	}
	if res.Err != nil {
		return Notification{Severity: SeverityError, Message: saveFailureText(res.Err)}, nil
	}

	if err := f.cache.Save(ctx, draft); err != nil {
		f.logger.Warn("failed to cache saved profile", zap.Error(err))
	}

	msg := res.Message
	if msg == "" {
		msg = MsgCreated
		if f.isEditing {
			msg = MsgUpdated
		}
	}
	return Notification{Severity: SeveritySuccess, Message: msg, Navigate: RouteProfile}, nil
}

// Close cancels the form's in-flight requests.
func (f *ProfileForm) Close() {
	f.mu.Lock()
	requests := f.requests
	f.requests = nil
	f.mu.Unlock()
	for _, r := range requests {
		r.Cancel()
	}
}

func (f *ProfileForm) track(r *state.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(pending(f.requests), r)
}

// saveFailureText prefers what the server said over the generic operation message.
func saveFailureText(failure *profileapi.Failure) string {
	if failure == nil || failure.Message == "" || failure.Message == profileapi.FallbackMessage(failure.Op) {
		return MsgSaveFallback
	}
	return failure.Message
}
