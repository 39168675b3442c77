package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

func TestRegisterAdmin(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	sm := newTestManager(t, store, Options{})

	user, err := sm.Session.Register(ctx, "Ann", "ann@example.com", "secret", database.RoleAdmin)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !sm.Session.IsAuthenticated() || !sm.Session.IsAdmin() || sm.Session.IsGuest() {
		t.Fatal("expected an authenticated admin")
	}
	if user.ID == "" || user.Name != "Ann" {
		t.Fatalf("unexpected user %+v", user)
	}

	var persisted database.User
	found, err := database.LoadJSON(ctx, store, database.KeyUser, &persisted)
	if err != nil || !found {
		t.Fatalf("expected persisted user, found=%v err=%v", found, err)
	}
	if persisted != user {
		t.Fatalf("persisted %+v, want %+v", persisted, user)
	}

	listed := sm.Users.List("ann@example.com")
	if len(listed) != 1 || listed[0].Role != database.RoleAdmin {
		t.Fatalf("expected user tracked in directory, got %+v", listed)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	sm := newTestManager(t, database.NewMemoryStore(), Options{})
	_, err := sm.Session.Register(context.Background(), "Ann", "ann@example.com", "x", database.Role("root"))
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if sm.Session.IsAuthenticated() {
		t.Fatal("rejected registration must not sign in")
	}
}

func TestLoginAsGuest(t *testing.T) {
	sm := newTestManager(t, database.NewMemoryStore(), Options{})

	user, err := sm.Session.LoginAsGuest(context.Background())
	if err != nil {
		t.Fatalf("LoginAsGuest: %v", err)
	}
	if user.ID != "guest" || user.Name != "Guest User" || user.Email != "guest@emoheal.com" {
		t.Fatalf("unexpected guest %+v", user)
	}
	if !sm.Session.IsGuest() || sm.Session.IsAdmin() {
		t.Fatal("expected guest role")
	}
	if CanSubmitFeedback(user) {
		t.Fatal("guests must not submit feedback")
	}
	if got := sm.Users.Stats().Total; got != 5 {
		t.Fatalf("guest sign in must not be tracked, directory has %d", got)
	}
}

func TestLoginDerivesNameFromEmail(t *testing.T) {
	sm := newTestManager(t, database.NewMemoryStore(), Options{})
	user, err := sm.Session.Login(context.Background(), "maria@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Name != "Maria" || user.Role != database.RoleUser || user.ID != "1" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestLoginCancelledWritesNothing(t *testing.T) {
	store := database.NewMemoryStore()
	sm := newTestManager(t, store, Options{AuthLatency: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sm.Session.Login(ctx, "a@b.c", "pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sm.Session.IsAuthenticated() {
		t.Fatal("cancelled login must not sign in")
	}
	if _, err := store.Get(context.Background(), database.KeyUser); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected no persisted user, got %v", err)
	}
}

func TestLogoutClearsPersistedUser(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	sm := newTestManager(t, store, Options{})
	if _, err := sm.Session.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := sm.Session.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sm.Session.IsAuthenticated() {
		t.Fatal("expected signed out")
	}
	if _, err := store.Get(ctx, database.KeyUser); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected user blob removed, got %v", err)
	}
}

func TestSessionLoadRestoresUserAndReady(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	first := newTestManager(t, store, Options{})
	if _, err := first.Session.Register(ctx, "Bo", "bo@example.com", "pw", database.RoleUser); err != nil {
		t.Fatalf("Register: %v", err)
	}

	session := NewSessionService(store, logger.Nop(), 0, nil)
	if session.Ready() {
		t.Fatal("session must not be ready before Load")
	}
	if err := session.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !session.Ready() {
		t.Fatal("session must be ready after Load")
	}
	user, ok := session.Current()
	if !ok || user.Name != "Bo" {
		t.Fatalf("expected restored user, got %+v (ok=%v)", user, ok)
	}
}

func TestSessionLoadDiscardsMalformedBlob(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	if err := store.Put(ctx, database.KeyUser, "not json"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	session := NewSessionService(store, logger.Nop(), 0, nil)
	if err := session.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if session.IsAuthenticated() || !session.Ready() {
		t.Fatal("expected ready and signed out")
	}
}
