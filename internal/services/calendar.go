package services

import (
	"context"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/utils"
)

// CalendarCell is one slot of the 7-column grid. Day is 0 for the blank
// cells that precede day 1.
type CalendarCell struct {
	Day  int           `json:"day"`
	Date string        `json:"date,omitempty"`
	Mood database.Mood `json:"mood,omitempty"`
}

func (c CalendarCell) Blank() bool { return c.Day == 0 }

type CalendarMonth struct {
	Year         int                   `json:"year"`
	Month        time.Month            `json:"month"`
	MonthName    string                `json:"monthName"`
	DaysInMonth  int                   `json:"daysInMonth"`
	FirstWeekday int                   `json:"firstWeekday"`
	Cells        []CalendarCell        `json:"cells"`
	Counts       map[database.Mood]int `json:"counts"`
	TrackedDays  int                   `json:"trackedDays"`
}

// BuildMonth lays out year/month against a snapshot of the mood store.
// Counts cover the whole snapshot, not just the displayed month.
func BuildMonth(year int, month time.Month, moods map[string]database.MoodEntry) CalendarMonth {
	days := utils.DaysInMonth(year, month)
	first := utils.FirstWeekday(year, month)

	cells := make([]CalendarCell, 0, first+days)
	for i := 0; i < first; i++ {
		cells = append(cells, CalendarCell{})
	}
	for day := 1; day <= days; day++ {
		key := utils.DayKey(year, month, day)
		cell := CalendarCell{Day: day, Date: key}
		if entry, ok := moods[key]; ok {
			cell.Mood = entry.Mood
		}
		cells = append(cells, cell)
	}

	return CalendarMonth{
		Year:         year,
		Month:        month,
		MonthName:    month.String(),
		DaysInMonth:  days,
		FirstWeekday: first,
		Cells:        cells,
		Counts:       MoodCounts(moods),
		TrackedDays:  len(moods),
	}
}

// MoodCounts tallies entries per mood; every mood has a key.
func MoodCounts(moods map[string]database.MoodEntry) map[database.Mood]int {
	counts := make(map[database.Mood]int, len(database.Moods))
	for _, m := range database.Moods {
		counts[m] = 0
	}
	for _, entry := range moods {
		counts[entry.Mood]++
	}
	return counts
}

func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// CalendarCursor is the interactive state of a calendar view.
type CalendarCursor struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Selected int        `json:"selected,omitempty"`
}

func NewCalendarCursor(now time.Time) CalendarCursor {
	return CalendarCursor{Year: now.Year(), Month: now.Month()}
}

func (c *CalendarCursor) Previous() {
	c.Year, c.Month = PreviousMonth(c.Year, c.Month)
	c.Selected = 0
}

func (c *CalendarCursor) Next() {
	c.Year, c.Month = NextMonth(c.Year, c.Month)
	c.Selected = 0
}

// SelectDay toggles the selection. Days outside the month are ignored.
func (c *CalendarCursor) SelectDay(day int) bool {
	if day < 1 || day > utils.DaysInMonth(c.Year, c.Month) {
		return false
	}
	if c.Selected == day {
		c.Selected = 0
	} else {
		c.Selected = day
	}
	return true
}

// PickMood records mood manually and clears the selection. The entry is
// stored under today's date whichever day is selected.
func (c *CalendarCursor) PickMood(ctx context.Context, moods *MoodService, mood database.Mood) (database.MoodEntry, error) {
	entry, err := moods.AddMoodEntry(ctx, mood, database.SourceManual)
	if err != nil {
		return database.MoodEntry{}, err
	}
	c.Selected = 0
	return entry, nil
}

// View renders the cursor's month against the mood store.
func (c CalendarCursor) View(moods *MoodService) CalendarMonth {
	return BuildMonth(c.Year, c.Month, moods.GetAllMoods())
}
