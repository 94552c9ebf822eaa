package firebase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/janisto/profile-sync/internal/testutil"
)

func TestClientsCloseNil(t *testing.T) {
	var nilClients *Clients
	if err := nilClients.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := (&Clients{}).Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestInitializeClientsRequiresProject(t *testing.T) {
	_, err := InitializeClients(context.Background(), Config{})
	if !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}

func TestInitializeClientsMissingCredentials(t *testing.T) {
	_, err := InitializeClients(context.Background(), Config{
		ProjectID:                    "test-project",
		GoogleApplicationCredentials: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}

func TestInitializeClientsWithEmulator(t *testing.T) {
	testutil.SkipIfFirestoreUnavailable(t)
	testutil.SetupEmulator(t)

	clients, err := InitializeClients(context.Background(), Config{ProjectID: testutil.ProjectID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = clients.Close() }()

	if clients.Firestore == nil {
		t.Fatal("expected Firestore client")
	}
}
