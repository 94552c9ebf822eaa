package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	profilesvc "github.com/janisto/profile-sync/internal/service/profile"
)

func TestRegisterRoutesProfile(t *testing.T) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("RoutesTest", "test"))
	Register(api, profilesvc.NewMemoryStore())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/profile", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	for _, path := range []string{"/profile", "/profile/{id}"} {
		if api.OpenAPI().Paths[path] == nil {
			t.Errorf("expected %s in OpenAPI", path)
		}
	}
}

func TestAPIPrefix(t *testing.T) {
	cfg := huma.DefaultConfig("RoutesTest", "test")
	cfg.Servers = []*huma.Server{{URL: "https://api.example.com/v1"}}
	api := humachi.New(chi.NewRouter(), cfg)
	if got := apiPrefix(api); got != "/v1" {
		t.Fatalf("expected /v1, got %q", got)
	}

	cfg = huma.DefaultConfig("RoutesTest", "test")
	cfg.Servers = []*huma.Server{{URL: "https://api.example.com/"}, {URL: "https://api.example.com/v2/"}}
	if got := apiPrefix(humachi.New(chi.NewRouter(), cfg)); got != "/v2" {
		t.Fatalf("expected /v2, got %q", got)
	}

	bare := humachi.New(chi.NewRouter(), huma.DefaultConfig("RoutesTest", "test"))
	if got := apiPrefix(bare); got != "" {
		t.Fatalf("expected empty prefix, got %q", got)
	}
}
