package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

func newFeedbackService(t *testing.T) *FeedbackService {
	t.Helper()
	fs := NewFeedbackService(database.NewMemoryStore(), logger.Nop(), clock(fixedNow))
	if err := fs.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return fs
}

func TestFeedbackSeededOnFirstLoad(t *testing.T) {
	fs := newFeedbackService(t)
	list := fs.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 seed records, got %d", len(list))
	}
	want := map[string]int{"1": 12, "2": 8, "3": 15}
	for _, fb := range list {
		if fb.Stars != want[fb.ID] {
			t.Errorf("feedback %s: expected %d stars, got %d", fb.ID, want[fb.ID], fb.Stars)
		}
		if fb.Stars != len(fb.StarredBy) {
			t.Errorf("feedback %s: stars %d != starrers %d", fb.ID, fb.Stars, len(fb.StarredBy))
		}
	}
}

func TestAddFeedbackPrepends(t *testing.T) {
	ctx := context.Background()
	fs := newFeedbackService(t)

	fb, err := fs.AddFeedback(ctx, "1", "Ann", database.RoleUser, 4, "Helps a lot")
	if err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if fb.ID == "" || fb.Stars != 0 || len(fb.StarredBy) != 0 {
		t.Fatalf("unexpected new record %+v", fb)
	}
	if fb.Date != "2026-10-15" {
		t.Fatalf("expected today's date, got %q", fb.Date)
	}
	if first := fs.List()[0]; first.ID != fb.ID {
		t.Fatalf("expected new record first, got %s", first.ID)
	}
	if fs.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", fs.Len())
	}
}

func TestAddFeedbackRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	fs := newFeedbackService(t)

	tests := []struct {
		name    string
		rating  int
		comment string
	}{
		{"blank comment", 5, "   "},
		{"empty comment", 3, ""},
		{"rating too low", 0, "ok"},
		{"rating too high", 6, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := fs.Len()
			_, err := fs.AddFeedback(ctx, "1", "Ann", database.RoleUser, tt.rating, tt.comment)
			if !errors.Is(err, ErrInvalidFeedback) {
				t.Fatalf("expected ErrInvalidFeedback, got %v", err)
			}
			if fs.Len() != before {
				t.Fatalf("size changed from %d to %d", before, fs.Len())
			}
		})
	}
}

func TestToggleStarTwiceRestoresRecord(t *testing.T) {
	ctx := context.Background()
	fs := newFeedbackService(t)
	before, _ := fs.Get("2")

	starred, found, err := fs.ToggleStar(ctx, "2", "u-42")
	if err != nil || !found {
		t.Fatalf("ToggleStar: found=%v err=%v", found, err)
	}
	if starred.Stars != before.Stars+1 || !starred.HasStarred("u-42") {
		t.Fatalf("expected star added, got %+v", starred)
	}

	unstarred, _, err := fs.ToggleStar(ctx, "2", "u-42")
	if err != nil {
		t.Fatalf("ToggleStar: %v", err)
	}
	if unstarred.Stars != before.Stars || unstarred.HasStarred("u-42") {
		t.Fatalf("expected original state, got %+v", unstarred)
	}
	if len(unstarred.StarredBy) != len(before.StarredBy) {
		t.Fatalf("starredBy length %d, want %d", len(unstarred.StarredBy), len(before.StarredBy))
	}
}

func TestToggleStarUnknownIDIsIgnored(t *testing.T) {
	fs := newFeedbackService(t)
	_, found, err := fs.ToggleStar(context.Background(), "missing", "u-1")
	if err != nil || found {
		t.Fatalf("expected not found without error, got found=%v err=%v", found, err)
	}
}

func TestDeleteFeedbackIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fs := newFeedbackService(t)
	admin := database.User{ID: "a", Role: database.RoleAdmin}

	if err := fs.DeleteFeedback(ctx, admin, "1"); err != nil {
		t.Fatalf("DeleteFeedback: %v", err)
	}
	if err := fs.DeleteFeedback(ctx, admin, "1"); err != nil {
		t.Fatalf("second DeleteFeedback: %v", err)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", fs.Len())
	}
	if _, ok := fs.Get("1"); ok {
		t.Fatal("record 1 should be gone")
	}
}

func TestDeleteFeedbackRequiresOwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	fs := newFeedbackService(t)

	stranger := database.User{ID: "someone", Role: database.RoleUser}
	if err := fs.DeleteFeedback(ctx, stranger, "1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	owner := database.User{ID: "user1", Role: database.RoleUser}
	if err := fs.DeleteFeedback(ctx, owner, "1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", fs.Len())
	}
}

func TestFeedbackReloadNormalizesStars(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	blob := `[{"id":"x","userId":"u","userName":"U","userRole":"user","rating":3,"comment":"c","date":"2026-01-01","stars":9,"starredBy":["a","a","b"]}]`
	if err := store.Put(ctx, database.KeyFeedbacks, blob); err != nil {
		t.Fatalf("Put: %v", err)
	}
	fs := NewFeedbackService(store, logger.Nop(), clock(fixedNow))
	if err := fs.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fb, ok := fs.Get("x")
	if !ok || fb.Stars != 2 || len(fb.StarredBy) != 2 {
		t.Fatalf("expected 2 unique starrers, got %+v", fb)
	}
}

func TestFeedbackMalformedBlobReseeds(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	if err := store.Put(ctx, database.KeyFeedbacks, "[oops"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	fs := NewFeedbackService(store, logger.Nop(), clock(fixedNow))
	if err := fs.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fs.Len() != 3 {
		t.Fatalf("expected seeds after malformed blob, got %d", fs.Len())
	}
}

func TestFeedbackGates(t *testing.T) {
	tests := []struct {
		name string
		user database.User
		want bool
	}{
		{"anonymous", database.User{}, false},
		{"guest", GuestUser, false},
		{"user", database.User{ID: "1", Role: database.RoleUser}, true},
		{"admin", database.User{ID: "2", Role: database.RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSubmitFeedback(tt.user); got != tt.want {
				t.Errorf("CanSubmitFeedback = %v, want %v", got, tt.want)
			}
			if got := CanStarFeedback(tt.user); got != tt.want {
				t.Errorf("CanStarFeedback = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeedbackDateIsUTC(t *testing.T) {
	lateEvening := time.Date(2026, 10, 15, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	fs := NewFeedbackService(database.NewMemoryStore(), logger.Nop(), clock(lateEvening))
	if err := fs.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fb, err := fs.AddFeedback(context.Background(), "1", "Ann", database.RoleUser, 4, "Nice")
	if err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if fb.Date != "2026-10-16" {
		t.Fatalf("expected UTC date 2026-10-16, got %s", fb.Date)
	}
}

func TestStarCountTracksStarredBy(t *testing.T) {
	ctx := context.Background()
	fs := newFeedbackService(t)
	base, _ := fs.Get("3")

	steps := []struct {
		user    string
		want    int
		starred map[string]bool
	}{
		{user: "a", want: base.Stars + 1, starred: map[string]bool{"a": true}},
		{user: "b", want: base.Stars + 2, starred: map[string]bool{"a": true, "b": true}},
		{user: "a", want: base.Stars + 1, starred: map[string]bool{"b": true}},
		{user: "a", want: base.Stars + 2, starred: map[string]bool{"a": true, "b": true}},
		{user: "b", want: base.Stars + 1, starred: map[string]bool{"a": true}},
	}
	for i, step := range steps {
		fb, found, err := fs.ToggleStar(ctx, "3", step.user)
		if err != nil || !found {
			t.Fatalf("step %d: found=%v err=%v", i, found, err)
		}
		if fb.Stars != len(fb.StarredBy) {
			t.Fatalf("step %d: stars=%d but %d starrers", i, fb.Stars, len(fb.StarredBy))
		}
		if fb.Stars != step.want {
			t.Fatalf("step %d: stars=%d, want %d", i, fb.Stars, step.want)
		}
		for _, u := range []string{"a", "b"} {
			if fb.HasStarred(u) != step.starred[u] {
				t.Fatalf("step %d: HasStarred(%s)=%v", i, u, fb.HasStarred(u))
			}
		}
	}
}
