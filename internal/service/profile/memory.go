package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Service in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	profiles map[string]*Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) List(ctx context.Context) ([]Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Profile, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.profiles[id])
	}
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.profiles[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) Create(ctx context.Context, params Params) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	params = params.normalized()
	now := m.now()
	p := &Profile{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Email:     params.Email,
		Age:       params.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.profiles[p.ID] = p
	m.order = append(m.order, p.ID)
	audit(ctx, "create", p.ID, nil)
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, params Params) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.profiles[id]
	if !exists {
		audit(ctx, "update", id, ErrNotFound)
		return nil, ErrNotFound
	}

	params = params.normalized()
	p.Name = params.Name
	p.Email = params.Email
	p.Age = params.Age
	p.UpdatedAt = m.now()
	audit(ctx, "update", id, nil)
	cp := *p
	return &cp, nil
}

// Clear removes all profiles (useful for test cleanup).
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.profiles = make(map[string]*Profile)
}

// Compile-time interface check
var _ Service = (*MemoryStore)(nil)
