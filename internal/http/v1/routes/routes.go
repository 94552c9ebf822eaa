// Package routes mounts the v1 profile resource on a huma API.
package routes

import (
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-sync/internal/http/v1/profile"
	profilesvc "github.com/janisto/profile-sync/internal/service/profile"
)

// Register adds the /profile operations backed by profileService.
func Register(api huma.API, profileService profilesvc.Service) {
	profile.Register(api, profileService, apiPrefix(api))
}

// apiPrefix is the path of the first configured server URL, without a
// trailing slash. Location headers are built on it.
func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		u, err := url.Parse(s.URL)
		if err != nil {
			continue
		}
		if p := strings.TrimRight(u.Path, "/"); p != "" {
			return p
		}
	}
	return ""
}
