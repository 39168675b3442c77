package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"emoheal/internal/database"
)

func seedMoods(t *testing.T, store database.BlobStore, entries map[string]database.Mood) {
	t.Helper()
	data := make(map[string]database.MoodEntry, len(entries))
	for date, mood := range entries {
		data[date] = database.MoodEntry{Date: date, Mood: mood, Source: database.SourceManual}
	}
	if err := database.SaveJSON(context.Background(), store, database.KeyMoodData, data); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
}

func TestWeeklyAnalytics(t *testing.T) {
	store := database.NewMemoryStore()
	seedMoods(t, store, map[string]database.Mood{
		"2026-10-11": database.Calm,
		"2026-10-12": database.Sad,
		"2026-10-13": database.Sad,
		"2026-10-14": database.Happy,
		"2026-10-15": database.Sad,
	})
	sm := newTestManager(t, store, Options{})

	week := sm.Analytics.GetWeeklyAnalytics()
	if week.WeekNumber != 42 || week.StartDate != "2026-10-12" || week.EndDate != "2026-10-18" {
		t.Fatalf("unexpected week bounds %+v", week)
	}
	if week.TrackedDays != 4 {
		t.Fatalf("expected 4 tracked days, got %d", week.TrackedDays)
	}
	if week.Counts[database.Calm] != 0 || week.Counts[database.Sad] != 3 {
		t.Fatalf("unexpected counts %+v", week.Counts)
	}
	if week.DominantMood != database.Sad {
		t.Fatalf("expected sad dominant, got %q", week.DominantMood)
	}
	if !strings.Contains(week.Insights, "heavy week") {
		t.Fatalf("expected supportive insight, got %q", week.Insights)
	}
}

func TestWeeklyAnalyticsEmpty(t *testing.T) {
	sm := newTestManager(t, database.NewMemoryStore(), Options{})
	week := sm.Analytics.GetWeeklyAnalytics()
	if week.TrackedDays != 0 || week.DominantMood != "" {
		t.Fatalf("expected empty week, got %+v", week)
	}
	if !strings.Contains(week.Insights, "Not enough data") {
		t.Fatalf("unexpected insights %q", week.Insights)
	}
}

func TestMoodSummary(t *testing.T) {
	store := database.NewMemoryStore()
	seedMoods(t, store, map[string]database.Mood{
		"2026-10-08": database.Happy,
		"2026-10-09": database.Sad,
		"2026-10-12": database.Calm,
		"2026-10-13": database.Sad,
		"2026-10-15": database.Calm,
	})
	sm := newTestManager(t, store, Options{})

	summary, err := sm.Analytics.GetMoodSummary(7)
	if err != nil {
		t.Fatalf("GetMoodSummary: %v", err)
	}
	if summary.StartDate != "2026-10-09" || summary.EndDate != "2026-10-15" || summary.TotalEntries != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	want := []MoodCount{{database.Sad, 2}, {database.Calm, 2}}
	if len(summary.TopMoods) != len(want) {
		t.Fatalf("unexpected top moods %+v", summary.TopMoods)
	}
	for i := range want {
		if summary.TopMoods[i] != want[i] {
			t.Fatalf("top moods %+v, want %+v", summary.TopMoods, want)
		}
	}
	if summary.Distribution[database.Happy] != 0 || len(summary.Distribution) != len(database.Moods) {
		t.Fatalf("unexpected distribution %+v", summary.Distribution)
	}

	for _, days := range []int{0, -1, 91} {
		if _, err := sm.Analytics.GetMoodSummary(days); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("days=%d: expected ErrInvalidPeriod, got %v", days, err)
		}
	}
}
