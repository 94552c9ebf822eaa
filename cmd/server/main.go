package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/janisto/profile-sync/internal/http/health"
	"github.com/janisto/profile-sync/internal/http/v1/routes"
	"github.com/janisto/profile-sync/internal/platform/config"
	"github.com/janisto/profile-sync/internal/platform/firebase"
	applog "github.com/janisto/profile-sync/internal/platform/logging"
	appmiddleware "github.com/janisto/profile-sync/internal/platform/middleware"
	"github.com/janisto/profile-sync/internal/platform/respond"
	profilesvc "github.com/janisto/profile-sync/internal/service/profile"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const docsPath = "/api-docs"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		applog.LogWarn(context.Background(), "failed to load .env", zap.Error(err))
	}
	cfg, err := config.LoadServer()
	if err != nil {
		applog.LogError(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}
	if err := applog.Init(applog.Options{Level: cfg.LogLevel}); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}
	defer func() {
		if err := applog.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()

	ctx := context.Background()
	svc, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		applog.LogError(ctx, "failed to open profile store", err, zap.String("store", cfg.Store))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			applog.LogError(ctx, "failed to close profile store", err)
		}
	}()

	srv := newHTTPServer(":"+cfg.Port, newRouter(svc, Version))

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(ctx, "listen failed", err, zap.String("addr", srv.Addr))
		return
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
}

// openStore selects the profile backend named by the configuration.
func openStore(ctx context.Context, cfg config.Server) (profilesvc.Service, func() error, error) {
	if cfg.Store != config.StoreFirestore {
		return profilesvc.NewMemoryStore(), func() error { return nil }, nil
	}
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.FirebaseProjectID,
		GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
	})
	if err != nil {
		return nil, nil, err
	}
	return profilesvc.NewFirestoreStore(clients.Firestore), clients.Close, nil
}

func newRouter(svc profilesvc.Service, version string) http.Handler {
	respond.Install()

	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; run behind a trusted proxy only.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)
	router.Get("/health", health.Handler(version))

	cfg := huma.DefaultConfig("Profile API", version)
	cfg.DocsPath = docsPath
	api := humachi.New(router, cfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)

	routes.Register(api, svc)
	return router
}

// addCBORContent advertises application/cbor wherever JSON is documented.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}
