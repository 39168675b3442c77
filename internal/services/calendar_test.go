package services

import (
	"context"
	"testing"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

func TestMonthNavigationIsReversible(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
	}{
		{2025, time.January},
		{2024, time.December},
		{2026, time.June},
	}
	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			y, m := NextMonth(PreviousMonth(tt.year, tt.month))
			if y != tt.year || m != tt.month {
				t.Errorf("next(prev) = %d-%s", y, m)
			}
			y, m = PreviousMonth(NextMonth(tt.year, tt.month))
			if y != tt.year || m != tt.month {
				t.Errorf("prev(next) = %d-%s", y, m)
			}
		})
	}

	y, m := PreviousMonth(2025, time.January)
	if y != 2024 || m != time.December {
		t.Fatalf("expected 2024-December, got %d-%s", y, m)
	}
}

func TestBuildMonthLayout(t *testing.T) {
	moods := map[string]database.MoodEntry{
		"2025-01-05": {Date: "2025-01-05", Mood: database.Happy},
		"2024-12-31": {Date: "2024-12-31", Mood: database.Sad},
	}
	month := BuildMonth(2025, time.January, moods)

	if month.FirstWeekday != 3 || month.DaysInMonth != 31 {
		t.Fatalf("unexpected layout: first=%d days=%d", month.FirstWeekday, month.DaysInMonth)
	}
	if len(month.Cells) != 34 {
		t.Fatalf("expected 34 cells, got %d", len(month.Cells))
	}
	for i := 0; i < 3; i++ {
		if !month.Cells[i].Blank() {
			t.Fatalf("cell %d should be blank", i)
		}
	}
	fifth := month.Cells[3+4]
	if fifth.Day != 5 || fifth.Mood != database.Happy || fifth.Date != "2025-01-05" {
		t.Fatalf("unexpected cell for day 5: %+v", fifth)
	}
	if month.Counts[database.Sad] != 1 || month.Counts[database.Calm] != 0 || month.TrackedDays != 2 {
		t.Fatalf("counts must cover the whole store: %+v tracked=%d", month.Counts, month.TrackedDays)
	}
	if month.MonthName != "January" {
		t.Fatalf("unexpected month name %q", month.MonthName)
	}
}

func TestCalendarCursorSelection(t *testing.T) {
	cursor := NewCalendarCursor(time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC))

	if cursor.SelectDay(29) {
		t.Fatal("February 2026 has no 29th")
	}
	if !cursor.SelectDay(14) || cursor.Selected != 14 {
		t.Fatalf("expected day 14 selected, got %d", cursor.Selected)
	}
	cursor.SelectDay(14)
	if cursor.Selected != 0 {
		t.Fatal("selecting the same day twice clears the selection")
	}

	cursor.SelectDay(3)
	cursor.Next()
	if cursor.Selected != 0 || cursor.Month != time.March {
		t.Fatalf("navigation must clear selection, got %+v", cursor)
	}
}

func TestPickMoodRecordsUnderToday(t *testing.T) {
	ctx := context.Background()
	moods := NewMoodService(database.NewMemoryStore(), logger.Nop(), clock(fixedNow))

	cursor := CalendarCursor{Year: 2026, Month: time.March}
	cursor.SelectDay(3)
	entry, err := cursor.PickMood(ctx, moods, database.Calm)
	if err != nil {
		t.Fatalf("PickMood: %v", err)
	}
	if entry.Date != "2026-10-15" || entry.Source != database.SourceManual {
		t.Fatalf("expected manual entry for today, got %+v", entry)
	}
	if cursor.Selected != 0 {
		t.Fatal("picking a mood clears the selection")
	}
	if _, ok := moods.GetMoodForDate("2026-03-03"); ok {
		t.Fatal("selected day must not receive the entry")
	}
}
