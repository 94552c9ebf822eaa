package screen

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/janisto/profile-sync/internal/cache"
	"github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profile"
	"github.com/janisto/profile-sync/internal/state"
)

// Source tells where the displayed profile came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

// PageView is what the profile page renders.
type PageView struct {
	Profile profile.Profile
	Initial string
	Source  Source
	Status  state.Status
	Error   string
}

// ProfilePage displays the current profile, preferring the local cache.
type ProfilePage struct {
	container *state.Container
	cache     *cache.ProfileCache
	logger    *zap.Logger

	mu       sync.Mutex
	cached   *profile.Profile
	requests []*state.Request
}

// NewProfilePage creates a page over container and pc. A nil logger uses the global one.
func NewProfilePage(container *state.Container, pc *cache.ProfileCache, logger *zap.Logger) *ProfilePage {
	if logger == nil {
		logger = logging.Logger()
	}
	return &ProfilePage{container: container, cache: pc, logger: logger}
}

// Mount shows the cached profile when one exists; otherwise it fetches the
// collection and waits for the result. A failed fetch is reported through
// View, not as an error. The returned error is only ever a ctx error.
func (p *ProfilePage) Mount(ctx context.Context) error {
	if cached, ok := p.cache.Load(ctx); ok {
		p.mu.Lock()
		p.cached = &cached
		p.mu.Unlock()
		p.logger.Debug("profile page served from cache", zap.String("profileId", cached.ID))
		return nil
	}
	return p.fetch(ctx)
}

// Delete clears the local cache and re-fetches from the server.
// Callers confirm with the user before calling it.
func (p *ProfilePage) Delete(ctx context.Context) error {
	if err := p.cache.Clear(ctx); err != nil {
		return fmt.Errorf("delete local profile: %w", err)
	}
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
	return p.fetch(ctx)
}

func (p *ProfilePage) fetch(ctx context.Context) error {
	req := p.container.FetchAll(ctx)
	p.track(req)
	res, err := req.Wait(ctx)
	if err != nil {
		return err
	}
	if res.Err != nil && !res.Stale {
		p.logger.Warn("profile page fetch failed",
			zap.Int("status", res.Err.Status),
			zap.String("message", res.Err.Message),
		)
	}
	return nil
}

// View returns the render state. Without a cached profile it follows the
// container's current profile, falling back to an empty draft.
func (p *ProfilePage) View() PageView {
	snap := p.container.State()
	v := PageView{Status: snap.Status, Error: snap.ErrorMessage(), Source: SourceNone}

	p.mu.Lock()
	cached := p.cached
	p.mu.Unlock()

	switch {
	case cached != nil:
		v.Profile = *cached
		v.Source = SourceCache
	default:
		if current, ok := p.container.Current(); ok {
			v.Profile = current
			v.Source = SourceRemote
		}
	}
	v.Initial = v.Profile.Initial()
	return v
}

// EditRoute is the form route for editing the displayed profile.
// It reports false when the profile has no server identity yet.
func (p *ProfilePage) EditRoute() (string, bool) {
	id := p.View().Profile.ID
	if id == "" {
		return "", false
	}
	return EditRoute(id), true
}

// Close cancels the page's in-flight requests so their completions are discarded.
func (p *ProfilePage) Close() {
	p.mu.Lock()
	requests := p.requests
	p.requests = nil
	p.mu.Unlock()
	for _, r := range requests {
		r.Cancel()
	}
}

func (p *ProfilePage) track(r *state.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(pending(p.requests), r)
}

// pending drops requests that have already finished.
func pending(requests []*state.Request) []*state.Request {
	out := requests[:0]
	for _, r := range requests {
		select {
		case <-r.Done():
		default:
			out = append(out, r)
		}
	}
	return out
}
