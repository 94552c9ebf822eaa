package state

import "github.com/janisto/profile-sync/internal/profile"

// Policy picks the active profile out of the fetched collection.
type Policy interface {
	Select(profiles []profile.Profile) (profile.Profile, bool)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func([]profile.Profile) (profile.Profile, bool)

func (f PolicyFunc) Select(profiles []profile.Profile) (profile.Profile, bool) { return f(profiles) }

// MostRecentlyFetched treats the last element of the collection as current.
// The client manages a single profile, so the newest entry the server returns wins.
var MostRecentlyFetched Policy = PolicyFunc(func(profiles []profile.Profile) (profile.Profile, bool) {
	if len(profiles) == 0 {
		return profile.Profile{}, false
	}
	return profiles[len(profiles)-1], true
})

// ByID selects the profile with the given id.
func ByID(id string) Policy {
	return PolicyFunc(func(profiles []profile.Profile) (profile.Profile, bool) {
		for _, p := range profiles {
			if p.ID == id {
				return p, true
			}
		}
		return profile.Profile{}, false
	})
}
