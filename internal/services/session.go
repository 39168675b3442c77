package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"emoheal/internal/database"
	"emoheal/internal/logger"

	"github.com/google/uuid"
)

// GuestUser is the fixed identity handed out by LoginAsGuest.
var GuestUser = database.User{
	ID:    "guest",
	Name:  "Guest User",
	Email: "guest@emoheal.com",
	Role:  database.RoleGuest,
}

// SessionService holds the current identity of the profile.
type SessionService struct {
	mu        sync.RWMutex
	store     database.BlobStore
	log       *logger.Logger
	latency   time.Duration
	directory *UserDirectory

	current *database.User
	ready   bool
}

func NewSessionService(store database.BlobStore, log *logger.Logger, latency time.Duration, directory *UserDirectory) *SessionService {
	return &SessionService{
		store:     store,
		log:       log.With("store", "session"),
		latency:   latency,
		directory: directory,
	}
}

// Load restores the persisted identity, if any. The service reports
// Ready only after Load returns.
func (s *SessionService) Load(ctx context.Context) error {
	var user database.User
	found, err := database.LoadJSON(ctx, s.store, database.KeyUser, &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil && !found:
		return err
	case err != nil:
		s.log.Warn("discarding malformed session blob", "error", err)
		s.current = nil
	case found:
		s.current = &user
		s.log.Info("session restored", "user_id", user.ID, "role", user.Role)
	}
	s.ready = true
	return nil
}

func (s *SessionService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Current returns the signed-in user.
func (s *SessionService) Current() (database.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return database.User{}, false
	}
	return *s.current, true
}

func (s *SessionService) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *SessionService) IsAdmin() bool {
	u, ok := s.Current()
	return ok && u.Role == database.RoleAdmin
}

func (s *SessionService) IsGuest() bool {
	u, ok := s.Current()
	return ok && u.Role == database.RoleGuest
}

// Login accepts any credentials after the simulated latency.
func (s *SessionService) Login(ctx context.Context, email, password string) (database.User, error) {
	if err := sleepCtx(ctx, s.latency); err != nil {
		return database.User{}, err
	}

	user := database.User{
		ID:    "1",
		Name:  displayName(email),
		Email: email,
		Role:  database.RoleUser,
	}
	if err := s.setCurrent(ctx, user); err != nil {
		return database.User{}, err
	}
	s.track(ctx, user)
	return user, nil
}

func (s *SessionService) Register(ctx context.Context, name, email, password string, role database.Role) (database.User, error) {
	if !role.Valid() {
		return database.User{}, fmt.Errorf("register %q: %w", role, ErrInvalidRole)
	}
	if err := sleepCtx(ctx, s.latency); err != nil {
		return database.User{}, err
	}

	user := database.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err := s.setCurrent(ctx, user); err != nil {
		return database.User{}, err
	}
	s.track(ctx, user)
	return user, nil
}

func (s *SessionService) LoginAsGuest(ctx context.Context) (database.User, error) {
	if err := s.setCurrent(ctx, GuestUser); err != nil {
		return database.User{}, err
	}
	return GuestUser, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, database.KeyUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if s.current != nil {
		s.log.Info("logged out", "user_id", s.current.ID)
	}
	s.current = nil
	return nil
}

func (s *SessionService) setCurrent(ctx context.Context, user database.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := database.SaveJSON(ctx, s.store, database.KeyUser, user); err != nil {
		return err
	}
	s.current = &user
	s.log.Info("signed in", "user_id", user.ID, "role", user.Role)
	return nil
}

func (s *SessionService) track(ctx context.Context, user database.User) {
	if s.directory == nil || user.Role == database.RoleGuest {
		return
	}
	if err := s.directory.Track(ctx, user); err != nil {
		s.log.Warn("directory update failed", "user_id", user.ID, "error", err)
	}
}

// displayName capitalizes the local part of an email address.
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError {
		return local
	}
	return string(unicode.ToUpper(r)) + local[size:]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
