package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openSQLite(t *testing.T) *Repository {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "emoheal.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	repo := NewRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestBlobStoreContract(t *testing.T) {
	stores := map[string]func(t *testing.T) BlobStore{
		"memory": func(*testing.T) BlobStore { return NewMemoryStore() },
		"sqlite": func(t *testing.T) BlobStore { return openSQLite(t) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			if _, err := store.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing: want ErrNotFound, got=%v", err)
			}

			if err := store.Put(ctx, KeyUser, `{"id":"1"}`); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := store.Put(ctx, KeyUser, `{"id":"2"}`); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			got, err := store.Get(ctx, KeyUser)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != `{"id":"2"}` {
				t.Fatalf("Get: got=%q want overwritten value", got)
			}

			if err := store.Delete(ctx, KeyUser); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, KeyUser); err != nil {
				t.Fatalf("Delete missing should be a no-op: %v", err)
			}
			if _, err := store.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get after delete: want ErrNotFound, got=%v", err)
			}
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "emoheal.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := NewRepository(db).Put(ctx, KeyMoodData, `{}`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	repo := NewRepository(db)
	defer repo.Close()

	got, err := repo.Get(ctx, KeyMoodData)
	if err != nil || got != `{}` {
		t.Fatalf("Get after reopen: got=%q err=%v", got, err)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadAndSaveJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var settings Settings
	found, err := LoadJSON(ctx, store, KeySettings, &settings)
	if err != nil || found {
		t.Fatalf("LoadJSON empty: found=%v err=%v", found, err)
	}

	want := DefaultSettings()
	want.Theme = ThemeDark
	if err := SaveJSON(ctx, store, KeySettings, want); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	found, err = LoadJSON(ctx, store, KeySettings, &settings)
	if err != nil || !found {
		t.Fatalf("LoadJSON: found=%v err=%v", found, err)
	}
	if settings != want {
		t.Fatalf("LoadJSON: got=%+v want=%+v", settings, want)
	}

	if err := store.Put(ctx, KeySettings, "{not json"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	found, err = LoadJSON(ctx, store, KeySettings, &settings)
	if err == nil || !found {
		t.Fatalf("LoadJSON malformed: want found with error, got found=%v err=%v", found, err)
	}
}

func TestMemoryStoreHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryStore().Put(ctx, KeyUser, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Put: want context.Canceled, got=%v", err)
	}
}

func TestEnumValidity(t *testing.T) {
	for _, m := range Moods {
		if !m.Valid() {
			t.Fatalf("mood %q should be valid", m)
		}
	}
	if Mood("angry").Valid() {
		t.Fatalf("unknown mood should be invalid")
	}
	if Source("text").Valid() || !SourceVoice.Valid() {
		t.Fatalf("source validity mismatch")
	}
	if Role("root").Valid() || !RoleGuest.Valid() {
		t.Fatalf("role validity mismatch")
	}
}
