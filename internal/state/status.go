// Package state is the client-side synchronization core. A Container owns the
// fetched profile collection, the selected record and the status of the most
// recent remote operation.
package state

import (
	"slices"

	"github.com/janisto/profile-sync/internal/profile"
	"github.com/janisto/profile-sync/internal/profileapi"
)

// Status is the lifecycle phase of the most recent operation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Action identifies an asynchronous container operation.
type Action string

const (
	ActionFetchAll  Action = "fetchAll"
	ActionFetchByID Action = "fetchById"
	ActionSave      Action = "save"
)

func (a Action) operation() profileapi.Operation {
	switch a {
	case ActionFetchAll:
		return profileapi.OpList
	case ActionFetchByID:
		return profileapi.OpGet
	default:
		return profileapi.OpSave
	}
}

// Snapshot is a copy of the container state at one version.
type Snapshot struct {
	Profiles []profile.Profile
	Selected *profile.Profile
	Status   Status
	Err      *profileapi.Failure
	// Version increases with every applied mutation.
	Version uint64
}

// ErrorMessage returns the failure text, or "" when the last operation did not fail.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Message
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Profiles = slices.Clone(s.Profiles)
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	return out
}
