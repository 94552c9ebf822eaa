package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profile"
)

type failingStore struct {
	MemoryStore
	err error
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f *failingStore) Set(context.Context, string, []byte) error   { return f.err }
func (f *failingStore) Clear(context.Context) error                 { return f.err }

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreSetOverwritesAndClearWipesScope(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Set(ctx, ProfileKey, []byte(`{"name":"first"}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, ProfileKey, []byte(`{"name":"second"}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, "theme", []byte("dark")); err != nil {
				t.Fatalf("set: %v", err)
			}

			got, err := s.Get(ctx, ProfileKey)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `{"name":"second"}` {
				t.Fatalf("expected overwritten value, got %s", got)
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			for _, key := range []string{ProfileKey, "theme"} {
				if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected %s cleared, got %v", key, err)
				}
			}
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	value := []byte("abc")
	_ = s.Set(ctx, "k", value)
	value[0] = 'x'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("expected stored copy, got %s", got)
	}
	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("expected returned copy, got %s", again)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	pc := NewProfileCache(first)
	if err := pc.Save(ctx, profile.Profile{Name: "Alice Smith", Email: "alice@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = second.Close() }()

	p, ok := NewProfileCache(second).Load(ctx)
	if !ok {
		t.Fatal("expected cached profile after reopen")
	}
	if p.Name != "Alice Smith" {
		t.Fatalf("expected Alice Smith, got %q", p.Name)
	}
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestProfileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	pc := NewProfileCache(NewMemoryStore())

	if _, ok := pc.Load(ctx); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := profile.Profile{ID: "1", Name: "Alice Smith", Email: "alice@example.com", Age: "30"}
	if err := pc.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := pc.Load(ctx)
	if !ok || got != want {
		t.Fatalf("expected %+v, got %+v (ok=%v)", want, got, ok)
	}

	if err := pc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := pc.Load(ctx); ok {
		t.Fatal("expected miss after clear")
	}
}

func TestProfileCacheMalformedEntryIsMiss(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	ctx := logging.WithLogger(context.Background(), zap.New(core))

	store := NewMemoryStore()
	_ = store.Set(ctx, ProfileKey, []byte("{not json"))

	if _, ok := NewProfileCache(store).Load(ctx); ok {
		t.Fatal("expected malformed entry to be treated as a miss")
	}
	if recorded.FilterMessage("discarding malformed profile cache entry").Len() != 1 {
		t.Fatalf("expected warning to be logged, got %v", recorded.All())
	}
}

func TestProfileCacheEmptyEntryIsMiss(t *testing.T) {
	for _, raw := range []string{"null", "{}", `{"name":"","email":""}`} {
		t.Run(raw, func(t *testing.T) {
			core, recorded := observer.New(zapcore.WarnLevel)
			ctx := logging.WithLogger(context.Background(), zap.New(core))

			store := NewMemoryStore()
			_ = store.Set(ctx, ProfileKey, []byte(raw))

			if p, ok := NewProfileCache(store).Load(ctx); ok {
				t.Fatalf("expected empty entry to be treated as a miss, got %+v", p)
			}
			if recorded.FilterMessage("discarding empty profile cache entry").Len() != 1 {
				t.Fatalf("expected warning to be logged, got %v", recorded.All())
			}
		})
	}
}

func TestProfileCacheStoreErrors(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	ctx := logging.WithLogger(context.Background(), zap.New(core))
	boom := errors.New("disk full")
	pc := NewProfileCache(&failingStore{err: boom})

	if _, ok := pc.Load(ctx); ok {
		t.Fatal("expected read error to be treated as a miss")
	}
	if recorded.FilterMessage("profile cache read failed").Len() != 1 {
		t.Fatalf("expected read failure warning, got %v", recorded.All())
	}
	if err := pc.Save(ctx, profile.Profile{Name: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
	if err := pc.Clear(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped clear error, got %v", err)
	}
}
