package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/janisto/profile-sync/internal/platform/logging"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", ErrNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("tx: %w", ErrNotFound), "not_found"},
		{"cancelled", context.Canceled, "cancelled"},
		{"deadline", context.DeadlineExceeded, "cancelled"},
		{"internal error", errors.New("unexpected"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categorizeError(tt.err); got != tt.want {
				t.Fatalf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMemoryStoreAuditsMutations(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := applog.WithLogger(context.Background(), zap.New(core))
	store := NewMemoryStore()

	p, err := store.Create(ctx, Params{Name: "John Doe", Email: "john@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Update(ctx, "missing", Params{Name: "Jane Doe"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	entries := recorded.FilterMessage("Audit event").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(entries))
	}
	created := entries[0].ContextMap()
	if created["audit.action"] != "create" || created["audit.resource_id"] != p.ID || created["audit.result"] != applog.AuditSuccess {
		t.Errorf("unexpected create audit %v", created)
	}
	failed := entries[1].ContextMap()
	if failed["audit.result"] != applog.AuditFailure {
		t.Errorf("expected failure result, got %v", failed["audit.result"])
	}
	details, ok := failed["audit.details"].(map[string]any)
	if !ok || details["error"] != "not_found" {
		t.Errorf("expected not_found category, got %v", failed["audit.details"])
	}
}
