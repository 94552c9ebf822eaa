package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryCreate(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()

	p, err := svc.Create(ctx, Params{Name: "  John Doe ", Email: " JOHN@EXAMPLE.COM ", Age: " 30"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated ID")
	}
	if p.Name != "John Doe" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
	if p.Email != "john@example.com" {
		t.Errorf("expected email to be normalized, got %q", p.Email)
	}
	if p.Age != "30" {
		t.Errorf("expected trimmed age, got %q", p.Age)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Errorf("expected matching timestamps, got %v / %v", p.CreatedAt, p.UpdatedAt)
	}
}

func TestMemoryCreateAssignsDistinctIDs(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()

	a, _ := svc.Create(ctx, Params{Name: "Same Name"})
	b, _ := svc.Create(ctx, Params{Name: "Same Name"})
	if a.ID == b.ID {
		t.Fatalf("expected distinct IDs, got %s twice", a.ID)
	}
}

func TestMemoryListOrder(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()

	empty, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}

	first, _ := svc.Create(ctx, Params{Name: "First"})
	second, _ := svc.Create(ctx, Params{Name: "Second"})
	_, _ = svc.Update(ctx, first.ID, Params{Name: "First Updated"})

	all, _ := svc.List(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Errorf("expected creation order, got %s, %s", all[0].ID, all[1].ID)
	}
	if all[0].Name != "First Updated" {
		t.Errorf("expected update reflected, got %q", all[0].Name)
	}
}

func TestMemoryGet(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()
	created, _ := svc.Create(ctx, Params{Name: "Jane Smith", Email: "jane@example.com"})

	p, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Jane Smith" {
		t.Errorf("expected Jane Smith, got %q", p.Name)
	}

	p.Name = "mutated"
	again, _ := svc.Get(ctx, created.ID)
	if again.Name != "Jane Smith" {
		t.Error("expected Get to return a copy")
	}
}

func TestMemoryGetNotFound(t *testing.T) {
	svc := NewMemoryStore()
	_, err := svc.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdate(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()
	created, _ := svc.Create(ctx, Params{Name: "John Doe", Email: "john@example.com", Age: "30"})

	time.Sleep(time.Millisecond)

	updated, err := svc.Update(ctx, created.ID, Params{Name: "Johnny", Email: "JOHNNY@EXAMPLE.COM", Age: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Johnny" || updated.Email != "johnny@example.com" || updated.Age != "" {
		t.Errorf("unexpected update result %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("expected CreatedAt unchanged")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestMemoryUpdateNotFound(t *testing.T) {
	svc := NewMemoryStore()
	_, err := svc.Update(context.Background(), "nonexistent", Params{Name: "X"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryClear(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()
	_, _ = svc.Create(ctx, Params{Name: "One"})
	_, _ = svc.Create(ctx, Params{Name: "Two"})

	svc.Clear()

	all, _ := svc.List(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty store, got %d", len(all))
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	svc := NewMemoryStore()
	ctx := context.Background()
	seed, _ := svc.Create(ctx, Params{Name: "Seed"})

	const numGoroutines = 50
	var wg sync.WaitGroup

	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			switch id % 4 {
			case 0:
				_, _ = svc.Create(ctx, Params{Name: "Test"})
			case 1:
				_, _ = svc.Get(ctx, seed.ID)
			case 2:
				_, _ = svc.Update(ctx, seed.ID, Params{Name: "Updated"})
			case 3:
				_, _ = svc.List(ctx)
			}
		}(i)
	}

	wg.Wait()

	creates := 0
	for i := range numGoroutines {
		if i%4 == 0 {
			creates++
		}
	}
	all, _ := svc.List(ctx)
	if len(all) != 1+creates {
		t.Errorf("expected %d profiles, got %d", 1+creates, len(all))
	}
}

func TestMemoryInterfaceCompliance(t *testing.T) {
	var _ Service = (*MemoryStore)(nil)
}
