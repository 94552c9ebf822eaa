// Package screen is the headless presentation layer. Each screen drives the
// state container and the local cache the way a rendered page would, and
// exposes plain values for a renderer (the profilectl CLI) to print.
package screen

import (
	"net/url"
	"strings"
)

const (
	RouteRoot    = "/"
	RouteForm    = "/profile-form"
	RouteProfile = "/profile-page"
)

const (
	queryEditing = "isEditing"
	queryID      = "id"
)

// Resolve maps a requested path to the screen route that serves it.
// The root redirects to the form; unknown paths return "".
func Resolve(path string) string {
	path, _, _ = strings.Cut(path, "?")
	switch path {
	case "", RouteRoot, RouteForm:
		return RouteForm
	case RouteProfile:
		return RouteProfile
	default:
		return ""
	}
}

// EditRoute is the form route in edit mode for id.
func EditRoute(id string) string {
	return RouteForm + "?" + queryEditing + "=true&" + queryID + "=" + url.QueryEscape(id)
}

// ParseFormQuery reads the form mode from query values. Edit mode requires a non-empty id.
func ParseFormQuery(q url.Values) (isEditing bool, id string) {
	id = q.Get(queryID)
	return q.Get(queryEditing) == "true" && id != "", id
}
