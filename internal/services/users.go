package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

// UserDirectory is the account list behind the admin panel. Every
// mutation except Track requires an admin actor.
type UserDirectory struct {
	mu    sync.RWMutex
	store database.BlobStore
	log   *logger.Logger

	users []database.DirectoryUser
}

type DirectoryStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

func NewUserDirectory(store database.BlobStore, log *logger.Logger) *UserDirectory {
	return &UserDirectory{store: store, log: log.With("store", "users")}
}

func (d *UserDirectory) Load(ctx context.Context) error {
	var users []database.DirectoryUser
	found, err := database.LoadJSON(ctx, d.store, database.KeyUsers, &users)
	if err != nil && !found {
		return err
	}
	if err != nil {
		d.log.Warn("malformed user directory, reseeding", "error", err)
		found = false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !found {
		users = seedDirectory()
		if err := database.SaveJSON(ctx, d.store, database.KeyUsers, users); err != nil {
			return err
		}
	}
	d.users = users
	return nil
}

// List filters by a case-insensitive substring of name or email.
func (d *UserDirectory) List(query string) []database.DirectoryUser {
	q := strings.ToLower(strings.TrimSpace(query))
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]database.DirectoryUser, 0, len(d.users))
	for _, u := range d.users {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

func (d *UserDirectory) Stats() DirectoryStats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	stats := DirectoryStats{Total: len(d.users)}
	for _, u := range d.users {
		if u.Status == database.StatusActive {
			stats.Active++
		}
	}
	return stats
}

// Track marks a signed-in account as active, adding it when unknown.
func (d *UserDirectory) Track(ctx context.Context, user database.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := slices.Clone(d.users)
	entry := database.DirectoryUser{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Status:     database.StatusActive,
		LastActive: "Just now",
	}
	if idx := d.indexOf(user.ID); idx >= 0 {
		next[idx] = entry
	} else {
		next = append(next, entry)
	}
	return d.save(ctx, next)
}

func (d *UserDirectory) ToggleStatus(ctx context.Context, actor database.User, userID string) (database.DirectoryUser, error) {
	return d.mutate(ctx, actor, userID, func(u *database.DirectoryUser) {
		if u.Status == database.StatusActive {
			u.Status = database.StatusInactive
		} else {
			u.Status = database.StatusActive
		}
	})
}

func (d *UserDirectory) ChangeRole(ctx context.Context, actor database.User, userID string, role database.Role) (database.DirectoryUser, error) {
	if !role.Valid() {
		return database.DirectoryUser{}, fmt.Errorf("change role to %q: %w", role, ErrInvalidRole)
	}
	return d.mutate(ctx, actor, userID, func(u *database.DirectoryUser) { u.Role = role })
}

func (d *UserDirectory) Delete(ctx context.Context, actor database.User, userID string) error {
	if actor.Role != database.RoleAdmin {
		return fmt.Errorf("delete user %s: %w", userID, ErrPermissionDenied)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexOf(userID)
	if idx < 0 {
		return fmt.Errorf("delete user %s: %w", userID, ErrUserNotFound)
	}
	if err := d.save(ctx, slices.Delete(slices.Clone(d.users), idx, idx+1)); err != nil {
		return err
	}
	d.log.Info("user deleted", "user_id", userID, "by", actor.ID)
	return nil
}

func (d *UserDirectory) mutate(ctx context.Context, actor database.User, userID string, fn func(*database.DirectoryUser)) (database.DirectoryUser, error) {
	if actor.Role != database.RoleAdmin {
		return database.DirectoryUser{}, fmt.Errorf("update user %s: %w", userID, ErrPermissionDenied)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexOf(userID)
	if idx < 0 {
		return database.DirectoryUser{}, fmt.Errorf("update user %s: %w", userID, ErrUserNotFound)
	}
	next := slices.Clone(d.users)
	fn(&next[idx])
	if err := d.save(ctx, next); err != nil {
		return database.DirectoryUser{}, err
	}
	return next[idx], nil
}

func (d *UserDirectory) indexOf(userID string) int {
	return slices.IndexFunc(d.users, func(u database.DirectoryUser) bool { return u.ID == userID })
}

func (d *UserDirectory) save(ctx context.Context, next []database.DirectoryUser) error {
	if err := database.SaveJSON(ctx, d.store, database.KeyUsers, next); err != nil {
		return err
	}
	d.users = next
	return nil
}

func seedDirectory() []database.DirectoryUser {
	return []database.DirectoryUser{
		{ID: "u1", Name: "Alice Johnson", Email: "alice@example.com", Role: database.RoleUser, Status: database.StatusActive, LastActive: "2 mins ago"},
		{ID: "u2", Name: "Bob Smith", Email: "bob@example.com", Role: database.RoleUser, Status: database.StatusActive, LastActive: "5 mins ago"},
		{ID: "u3", Name: "Carol White", Email: "carol@example.com", Role: database.RoleGuest, Status: database.StatusInactive, LastActive: "2 days ago"},
		{ID: "u4", Name: "David Brown", Email: "david@example.com", Role: database.RoleUser, Status: database.StatusActive, LastActive: "1 hour ago"},
		{ID: "u5", Name: "Emma Wilson", Email: "emma@example.com", Role: database.RoleAdmin, Status: database.StatusActive, LastActive: "Just now"},
	}
}
