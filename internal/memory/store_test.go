package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kora/internal/types"
)

func testSession(id, name string, updatedAt time.Time) *ConversationSession {
	return &ConversationSession{
		ID:        id,
		Name:      name,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
		ConversationTurns: []ConversationTurn{
			{
				ID:          "turn-1",
				Timestamp:   updatedAt,
				UserMessage: types.NewUserMessage("hello"),
				TokensUsed:  1,
			},
		},
		CumulativeContext: []types.ContextItem{types.NewTextItem("context")},
		SessionMetadata:   map[string]any{},
		Config:            DefaultConfig(),
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(t.TempDir())
	ctx := context.Background()

	session := testSession("session-roundtrip", "Round Trip", time.Now().UTC())
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := store.Load(ctx, session.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.ID != session.ID {
		t.Fatalf("expected id %q, got %q", session.ID, reloaded.ID)
	}
	if len(reloaded.ConversationTurns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(reloaded.ConversationTurns))
	}
	if reloaded.CumulativeContext[0].Content != "context" {
		t.Fatalf("cumulative context did not round-trip: %+v", reloaded.CumulativeContext)
	}
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewSessionStore(dir)

	if err := store.Save(context.Background(), testSession("session-tmp", "tmp", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(t.TempDir())
	_, err := store.Load(context.Background(), "session-does-not-exist")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_ListSortsAndSkipsCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewSessionStore(dir)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.Save(ctx, testSession("session-old", "Old", now.Add(-time.Hour))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, testSession("session-new", "New", now)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A corrupt file and a non-JSON file must both be skipped.
	if err := os.WriteFile(filepath.Join(dir, "session-corrupt.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d: %+v", len(sessions), sessions)
	}
	if sessions[0].ID != "session-new" || sessions[1].ID != "session-old" {
		t.Fatalf("expected newest first, got %+v", sessions)
	}
	if sessions[0].Name != "New" {
		t.Fatalf("expected partial parse to read the name, got %q", sessions[0].Name)
	}
}

func TestStore_ListMissingDirectory(t *testing.T) {
	t.Parallel()

	store := &SessionStore{baseDir: filepath.Join(t.TempDir(), "never-created")}
	sessions, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %+v", sessions)
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(t.TempDir())
	ctx := context.Background()

	session := testSession("session-delete", "Delete", time.Now())
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	// Deleting again is not an error.
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("repeat Delete() error = %v", err)
	}
}
