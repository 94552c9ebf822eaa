package state

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profile"
	"github.com/janisto/profile-sync/internal/profileapi"
)

// Listener receives a snapshot after every applied mutation, in mutation order.
// Listeners run synchronously and must not dispatch on the calling goroutine;
// reading State or Current is fine.
type Listener func(Snapshot)

// Container is the single source of truth for profile state.
type Container struct {
	api    profileapi.API
	policy Policy
	logger *zap.Logger

	// emitMu orders mutations together with their listener delivery.
	emitMu sync.Mutex

	mu           sync.RWMutex
	state        Snapshot
	nextToken    uint64
	latest       uint64 // most recent dispatch; only it may set Status and Err
	applied      uint64 // newest completion applied, or the Reset floor
	inflight     map[uint64]*Request
	listeners    map[uint64]Listener
	nextListener uint64
	closed       bool

	wg sync.WaitGroup
}

// Option configures a Container.
type Option func(*Container)

// WithSelectionPolicy sets the policy used by Current.
func WithSelectionPolicy(p Policy) Option {
	return func(c *Container) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an idle container backed by api.
func New(api profileapi.API, opts ...Option) *Container {
	c := &Container{
		api:       api,
		policy:    MostRecentlyFetched,
		logger:    logging.Logger(),
		state:     Snapshot{Status: StatusIdle},
		inflight:  make(map[uint64]*Request),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Container) State() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Current applies the selection policy to the fetched collection.
func (c *Container) Current() (profile.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy.Select(c.state.Profiles)
}

// Subscribe registers l and returns a function that removes it.
func (c *Container) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextListener++
	id := c.nextListener
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// FetchAll replaces the collection with the server's list on success.
func (c *Container) FetchAll(ctx context.Context) *Request {
	return c.dispatch(ctx, ActionFetchAll, func(ctx context.Context, _ Snapshot) (Result, error) {
		profiles, err := c.api.List(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Profiles: profiles}, nil
	})
}

// FetchByID loads one record into Selected on success.
func (c *Container) FetchByID(ctx context.Context, id string) *Request {
	return c.dispatch(ctx, ActionFetchByID, func(ctx context.Context, _ Snapshot) (Result, error) {
		p, err := c.api.Get(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if p == nil {
			return Result{}, profileapi.NewFailure(profileapi.OpGet, profileapi.ErrNotFound, "", nil)
		}
		return Result{Profile: p}, nil
	})
}

// Save creates draft, or updates it when isEditing is set. In edit mode the
// payload is the draft merged over the selected record known at dispatch time.
func (c *Container) Save(ctx context.Context, draft profile.Profile, isEditing bool) *Request {
	return c.dispatch(ctx, ActionSave, func(ctx context.Context, at Snapshot) (Result, error) {
		payload := draft
		if isEditing {
			payload = profile.Merge(at.Selected, draft)
		}
		res, err := c.api.Upsert(ctx, payload, isEditing)
		if err != nil {
			return Result{}, err
		}
		if res == nil {
			return Result{}, profileapi.NewFailure(profileapi.OpSave, profileapi.ErrDecode, "", nil)
		}
		saved := res.Profile
		return Result{Profile: &saved, Message: res.Message}, nil
	})
}

// Reset clears the selected record and error, returns to idle, and
// invalidates every in-flight request.
func (c *Container) Reset() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.nextToken++
	c.latest = c.nextToken
	c.applied = c.nextToken
	c.state.Selected = nil
	c.state.Status = StatusIdle
	c.state.Err = nil
	snap, listeners := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap, listeners)
}

// Close cancels every in-flight request and waits for their goroutines.
// Dispatching after Close returns already-completed stale requests.
func (c *Container) Close() {
	c.mu.Lock()
	c.closed = true
	pending := make([]*Request, 0, len(c.inflight))
	for _, r := range c.inflight {
		pending = append(pending, r)
	}
	c.mu.Unlock()

	for _, r := range pending {
		r.Cancel()
	}
	c.wg.Wait()
}

type operation func(ctx context.Context, at Snapshot) (Result, error)

// dispatch runs the pending phase synchronously and the remote call on its own goroutine.
func (c *Container) dispatch(ctx context.Context, action Action, op operation) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	reqCtx, cancel := context.WithCancel(ctx)

	c.emitMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.emitMu.Unlock()
		req := newRequest(0, action, cancel)
		req.Cancel()
		req.finish(Result{
			Action: action,
			Err:    profileapi.NewFailure(action.operation(), profileapi.ErrTransport, "", context.Canceled),
			Stale:  true,
		})
		return req
	}
	c.nextToken++
	req := newRequest(c.nextToken, action, cancel)
	c.latest = req.token
	c.inflight[req.token] = req
	c.state.Status = StatusLoading
	c.state.Err = nil
	at := c.state.clone()
	snap, listeners := c.commitLocked()
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify(snap, listeners)
	c.emitMu.Unlock()

	c.logger.Debug("profile operation dispatched",
		zap.String("action", string(action)),
		zap.Uint64("token", req.token),
	)

	go c.run(reqCtx, req, at, op)
	return req
}

func (c *Container) run(ctx context.Context, req *Request, at Snapshot, op operation) {
	defer c.wg.Done()
	res := c.invoke(ctx, req.action, at, op)
	res.Action = req.action
	res.Stale = !c.complete(req, res)
	req.cancel()
	req.finish(res)
}

// invoke calls op and normalizes every error, including panics, into a Failure.
func (c *Container) invoke(ctx context.Context, action Action, at Snapshot, op operation) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic in %s: %v", action, rec)
			c.logger.Error("profile operation panicked", zap.String("action", string(action)), zap.Error(err))
			res = Result{Err: profileapi.NewFailure(action.operation(), profileapi.ErrUpstream, "", err)}
		}
	}()

	res, err := op(ctx, at)
	if err != nil {
		f := profileapi.AsFailure(action.operation(), err)
		if f.Message == "" {
			fixed := *f
			fixed.Message = profileapi.FallbackMessage(action.operation())
			f = &fixed
		}
		return Result{Err: f}
	}
	return res
}

// complete is the resumption step. A completion is stale when it was
// cancelled, when a newer dispatch has already completed, or when it failed
// while a newer dispatch is still in flight. A non-stale
// completion from an older dispatch applies its data while the newer one is
// still in flight, but Status and Err stay with the latest dispatch.
func (c *Container) complete(req *Request, res Result) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	delete(c.inflight, req.token)
	isLatest := req.token == c.latest
	if req.ignored.Load() || req.token <= c.applied || (res.Err != nil && !isLatest) {
		latest, applied := c.latest, c.applied
		c.mu.Unlock()
		c.logger.Debug("discarding stale profile completion",
			zap.String("action", string(req.action)),
			zap.Uint64("token", req.token),
			zap.Uint64("latest", latest),
			zap.Uint64("applied", applied),
			zap.Bool("cancelled", req.ignored.Load()),
		)
		return false
	}

	c.applied = req.token
	if res.Err == nil {
		switch req.action {
		case ActionFetchAll:
			c.state.Profiles = res.Profiles
		case ActionFetchByID, ActionSave:
			selected := *res.Profile
			c.state.Selected = &selected
		}
	}
	if isLatest {
		if res.Err != nil {
			c.state.Status = StatusFailed
			c.state.Err = res.Err
		} else {
			c.state.Status = StatusSucceeded
			c.state.Err = nil
		}
	}
	snap, listeners := c.commitLocked()
	c.mu.Unlock()

	if res.Err != nil {
		c.logger.Info("profile operation failed",
			zap.String("action", string(req.action)),
			zap.Uint64("token", req.token),
			zap.Int("status", res.Err.Status),
			zap.String("message", res.Err.Message),
		)
	}
	c.notify(snap, listeners)
	return true
}

// commitLocked bumps the version and captures what to deliver. Caller holds mu.
func (c *Container) commitLocked() (Snapshot, []Listener) {
	c.state.Version++
	listeners := make([]Listener, 0, len(c.listeners))
	for id := uint64(1); id <= c.nextListener; id++ {
		if l, ok := c.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	return c.state.clone(), listeners
}

func (c *Container) notify(snap Snapshot, listeners []Listener) {
	for _, l := range listeners {
		l(snap.clone())
	}
}
