package profileapi

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/janisto/profile-sync/internal/profile"
)

// Hook runs before a MockAPI operation. A non-nil error fails the call.
type Hook func(ctx context.Context) error

// MockAPI implements API in memory for unit tests and offline runs.
type MockAPI struct {
	mu       sync.RWMutex
	profiles []profile.Profile
	hooks    map[Operation]Hook
	calls    map[Operation]int
}

// NewMockAPI creates a mock seeded with profiles in collection order.
func NewMockAPI(seed ...profile.Profile) *MockAPI {
	return &MockAPI{
		profiles: slices.Clone(seed),
		hooks:    make(map[Operation]Hook),
		calls:    make(map[Operation]int),
	}
}

// SetHook installs fn for op; nil removes it.
func (m *MockAPI) SetHook(op Operation, fn Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		delete(m.hooks, op)
		return
	}
	m.hooks[op] = fn
}

// Calls returns how many times op was invoked.
func (m *MockAPI) Calls(op Operation) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

func (m *MockAPI) enter(ctx context.Context, op Operation) error {
	m.mu.Lock()
	m.calls[op]++
	hook := m.hooks[op]
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return AsFailure(op, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return NewFailure(op, ErrTransport, "", err)
	}
	return nil
}

func (m *MockAPI) List(ctx context.Context) ([]profile.Profile, error) {
	if err := m.enter(ctx, OpList); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.profiles), nil
}

func (m *MockAPI) Get(ctx context.Context, id string) (*profile.Profile, error) {
	if err := m.enter(ctx, OpGet); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.ID == id {
			return &p, nil
		}
	}
	f := NewFailure(OpGet, ErrNotFound, "Profile not found", nil)
	f.Status = http.StatusNotFound
	return nil, f
}

func (m *MockAPI) Upsert(ctx context.Context, p profile.Profile, isEditing bool) (*SaveResult, error) {
	if err := m.enter(ctx, OpSave); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !isEditing {
		p.ID = uuid.NewString()
		m.profiles = append(m.profiles, p)
		return &SaveResult{Profile: p}, nil
	}
	for i := range m.profiles {
		if m.profiles[i].ID == p.ID {
			m.profiles[i] = p
			return &SaveResult{Profile: p}, nil
		}
	}
	f := NewFailure(OpSave, ErrNotFound, "Profile not found", nil)
	f.Status = http.StatusNotFound
	return nil, f
}

// Compile-time interface check
var _ API = (*MockAPI)(nil)
