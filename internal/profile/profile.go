// Package profile holds the client-side profile record shared by the cache,
// the remote client and the state container.
package profile

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Profile is the single entity managed by the client.
// ID is empty for a draft and set once the remote API has persisted it.
type Profile struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   string `json:"age"`
}

// IsDraft reports whether the profile has not been persisted yet.
func (p Profile) IsDraft() bool {
	return p.ID == ""
}

// Initial returns the upper-cased first letter of the name, or "U" when the name is blank.
func (p Profile) Initial() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "U"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// Merge overlays an edited draft on top of the currently selected record.
// Every field the form edits wins; the ID is taken from the selected record
// when the draft does not carry one.
func Merge(selected *Profile, draft Profile) Profile {
	if selected == nil {
		return draft
	}
	merged := draft
	if merged.ID == "" {
		merged.ID = selected.ID
	}
	return merged
}
