package services

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/utils"
)

// MoodService maps calendar dates to at most one mood entry each.
type MoodService struct {
	mu    sync.RWMutex
	store database.BlobStore
	log   *logger.Logger
	now   func() time.Time

	entries map[string]database.MoodEntry
}

func NewMoodService(store database.BlobStore, log *logger.Logger, now func() time.Time) *MoodService {
	if now == nil {
		now = time.Now
	}
	return &MoodService{
		store:   store,
		log:     log.With("store", "mood"),
		now:     now,
		entries: make(map[string]database.MoodEntry),
	}
}

func (s *MoodService) Load(ctx context.Context) error {
	entries := make(map[string]database.MoodEntry)
	found, err := database.LoadJSON(ctx, s.store, database.KeyMoodData, &entries)
	if err != nil && !found {
		return err
	}
	if err != nil {
		s.log.Warn("failed to load mood data, starting empty", "error", err)
		entries = make(map[string]database.MoodEntry)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	s.log.Info("mood data loaded", "days", len(entries))
	return nil
}

// AddMoodEntry records mood under today's local date, replacing any
// entry already stored for that date.
func (s *MoodService) AddMoodEntry(ctx context.Context, mood database.Mood, source database.Source) (database.MoodEntry, error) {
	if !mood.Valid() || !source.Valid() {
		return database.MoodEntry{}, fmt.Errorf("mood=%q source=%q: %w", mood, source, ErrInvalidMood)
	}

	now := s.now()
	entry := database.MoodEntry{
		Date:      utils.DateKey(now),
		Mood:      mood,
		Source:    source,
		Timestamp: utils.Timestamp(now),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := maps.Clone(s.entries)
	if next == nil {
		next = make(map[string]database.MoodEntry, 1)
	}
	next[entry.Date] = entry
	if err := database.SaveJSON(ctx, s.store, database.KeyMoodData, next); err != nil {
		return database.MoodEntry{}, err
	}
	s.entries = next
	s.log.Debug("mood recorded", "date", entry.Date, "mood", mood, "source", source)
	return entry, nil
}

func (s *MoodService) GetMoodForDate(date string) (database.MoodEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[date]
	return entry, ok
}

// GetAllMoods returns a copy of every entry keyed by date.
func (s *MoodService) GetAllMoods() map[string]database.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

// Today returns the entry for the current local date, if any.
func (s *MoodService) Today() (database.MoodEntry, bool) {
	return s.GetMoodForDate(utils.DateKey(s.now()))
}
