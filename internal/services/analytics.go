package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/utils"
)

type AnalyticsService struct {
	moods *MoodService
	now   func() time.Time
}

func NewAnalyticsService(moods *MoodService, now func() time.Time) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{moods: moods, now: now}
}

// GetWeeklyAnalytics summarizes the ISO week containing the current day.
func (as *AnalyticsService) GetWeeklyAnalytics() database.WeeklyMoodAnalytics {
	now := as.now()
	year, week := now.ISOWeek()
	startDate := utils.FirstDayOfISOWeek(year, week, now.Location())
	endDate := startDate.AddDate(0, 0, 6)

	analytics := database.WeeklyMoodAnalytics{
		WeekNumber: week,
		StartDate:  utils.DateKey(startDate),
		EndDate:    utils.DateKey(endDate),
		Counts:     make(map[database.Mood]int, len(database.Moods)),
	}
	for _, m := range database.Moods {
		analytics.Counts[m] = 0
	}

	all := as.moods.GetAllMoods()
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		entry, ok := all[utils.DateKey(d)]
		if !ok {
			continue
		}
		analytics.Counts[entry.Mood]++
		analytics.TrackedDays++
	}

	best := 0
	for _, m := range database.Moods {
		if analytics.Counts[m] > best {
			best = analytics.Counts[m]
			analytics.DominantMood = m
		}
	}

	analytics.Insights = as.generateInsights(analytics)
	return analytics
}

func (as *AnalyticsService) generateInsights(analytics database.WeeklyMoodAnalytics) string {
	if analytics.TrackedDays == 0 {
		return "📊 Not enough data yet. Keep tracking your mood!"
	}

	var insights []string

	switch {
	case analytics.TrackedDays == 7:
		insights = append(insights, "🎯 You tracked every day this week. Great consistency!")
	case analytics.TrackedDays >= 4:
		insights = append(insights, "📈 Good tracking streak, a few days are still missing")
	default:
		insights = append(insights, "💪 Try to check in with yourself every day")
	}

	if analytics.DominantMood != "" {
		insights = append(insights, fmt.Sprintf(
			"%s was your most frequent mood (%d of %d days)",
			database.MoodNames[analytics.DominantMood],
			analytics.Counts[analytics.DominantMood],
			analytics.TrackedDays,
		))
	}

	difficult := analytics.Counts[database.Sad] + analytics.Counts[database.Anxious]
	if difficult*2 > analytics.TrackedDays {
		insights = append(insights, "🫂 It has been a heavy week. Be gentle with yourself and reach out if you need support")
	} else if analytics.Counts[database.Happy]+analytics.Counts[database.Calm] == analytics.TrackedDays {
		insights = append(insights, "🌟 Only bright days this week!")
	}

	return strings.Join(insights, "\n")
}

const maxSummaryDays = 90

type MoodCount struct {
	Mood  database.Mood `json:"mood"`
	Count int           `json:"count"`
}

// MoodSummary is the mood distribution over the last PeriodDays days,
// today included.
type MoodSummary struct {
	PeriodDays   int                   `json:"periodDays"`
	StartDate    string                `json:"startDate"`
	EndDate      string                `json:"endDate"`
	TotalEntries int                   `json:"totalEntries"`
	Distribution map[database.Mood]int `json:"distribution"`
	TopMoods     []MoodCount           `json:"topMoods"`
}

// GetMoodSummary counts entries of the last days days. Top moods are
// ordered by count, ties in mood order, and omit moods never recorded.
func (as *AnalyticsService) GetMoodSummary(days int) (MoodSummary, error) {
	if days < 1 || days > maxSummaryDays {
		return MoodSummary{}, fmt.Errorf("summary over %d days: %w", days, ErrInvalidPeriod)
	}
	end := as.now()
	start := end.AddDate(0, 0, -(days - 1))

	summary := MoodSummary{
		PeriodDays:   days,
		StartDate:    utils.DateKey(start),
		EndDate:      utils.DateKey(end),
		Distribution: make(map[database.Mood]int, len(database.Moods)),
		TopMoods:     []MoodCount{},
	}
	for _, m := range database.Moods {
		summary.Distribution[m] = 0
	}

	all := as.moods.GetAllMoods()
	for i := 0; i < days; i++ {
		entry, ok := all[utils.DateKey(start.AddDate(0, 0, i))]
		if !ok {
			continue
		}
		summary.Distribution[entry.Mood]++
		summary.TotalEntries++
	}

	for _, m := range database.Moods {
		if n := summary.Distribution[m]; n > 0 {
			summary.TopMoods = append(summary.TopMoods, MoodCount{Mood: m, Count: n})
		}
	}
	slices.SortStableFunc(summary.TopMoods, func(a, b MoodCount) int { return b.Count - a.Count })
	return summary, nil
}
