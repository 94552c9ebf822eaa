package state

import (
	"context"
	"sync/atomic"

	"github.com/janisto/profile-sync/internal/profile"
	"github.com/janisto/profile-sync/internal/profileapi"
)

// Result is the outcome of one dispatched operation.
type Result struct {
	Action   Action
	Profiles []profile.Profile
	Profile  *profile.Profile
	// Message is the server's human-readable note on a save, if any.
	Message string
	Err     *profileapi.Failure
	// Stale is set when nothing from the completion was applied: it was
	// cancelled, a newer dispatch had already completed, or it failed while a
	// newer dispatch was still in flight.
	Stale bool
}

// Succeeded reports whether the remote call itself succeeded.
func (r Result) Succeeded() bool { return r.Err == nil }

// Request is the handle of an in-flight operation.
type Request struct {
	token   uint64
	action  Action
	cancel  context.CancelFunc
	done    chan struct{}
	result  Result
	ignored atomic.Bool
}

func newRequest(token uint64, action Action, cancel context.CancelFunc) *Request {
	return &Request{
		token:  token,
		action: action,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Token is the request identity assigned at dispatch. Later dispatches get larger tokens.
func (r *Request) Token() uint64 { return r.token }

// Action returns the operation this request runs.
func (r *Request) Action() Action { return r.action }

// Done is closed once the result is available.
func (r *Request) Done() <-chan struct{} { return r.done }

// Wait blocks until the request completes or ctx ends.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel aborts the network call and guarantees the completion is discarded.
func (r *Request) Cancel() {
	r.ignored.Store(true)
	r.cancel()
}

func (r *Request) finish(res Result) {
	r.result = res
	close(r.done)
}
