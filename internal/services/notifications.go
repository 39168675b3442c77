package services

import (
	"fmt"
	"strings"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/utils"
)

// NotificationSender delivers a formatted (HTML) message.
type NotificationSender interface {
	SendMessage(text string) error
}

type NotificationService struct {
	sender    NotificationSender
	moods     *MoodService
	settings  *SettingsService
	analytics *AnalyticsService
	log       *logger.Logger
	now       func() time.Time
}

func NewNotificationService(sender NotificationSender, moods *MoodService, settings *SettingsService, analytics *AnalyticsService, log *logger.Logger, now func() time.Time) *NotificationService {
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		sender:    sender,
		moods:     moods,
		settings:  settings,
		analytics: analytics,
		log:       log.With("service", "notifications"),
		now:       now,
	}
}

// SendMoodReminder nudges the user when notifications are enabled and
// nothing has been recorded today. It reports whether a message was sent.
func (ns *NotificationService) SendMoodReminder() (bool, error) {
	if !ns.settings.Get().Notifications {
		ns.log.Debug("reminder skipped, notifications disabled")
		return false, nil
	}
	if _, ok := ns.moods.Today(); ok {
		ns.log.Debug("reminder skipped, mood already recorded")
		return false, nil
	}

	message := "🔔 <b>How are you feeling today?</b>\n\n" +
		"You haven't logged your mood yet. Use /mood to pick one or /detect to analyze it."
	if err := ns.sender.SendMessage(message); err != nil {
		ns.log.Error("failed to send mood reminder", "error", err)
		return false, err
	}
	ns.log.Info("mood reminder sent")
	return true, nil
}

func (ns *NotificationService) SendDailyQuote() error {
	quote := DailyQuote(ns.now())
	message := fmt.Sprintf("✨ <b>Daily Inspiration</b>\n\n<i>\"%s\"</i>\n— %s", quote.Text, quote.Author)
	if err := ns.sender.SendMessage(message); err != nil {
		ns.log.Error("failed to send daily quote", "error", err)
		return err
	}
	return nil
}

// SendDailySummary reports today's mood and this week's progress.
func (ns *NotificationService) SendDailySummary() error {
	today := utils.DateKey(ns.now())

	var message strings.Builder
	fmt.Fprintf(&message, "📊 <b>Summary for %s</b>\n\n", today)
	if entry, ok := ns.moods.Today(); ok {
		fmt.Fprintf(&message, "Today: %s %s\n", database.MoodNames[entry.Mood], utils.GetSourceEmoji(string(entry.Source)))
	} else {
		message.WriteString("Today: no mood recorded\n")
	}

	week := ns.analytics.GetWeeklyAnalytics()
	fmt.Fprintf(&message, "This week: %d/7 days tracked\n\n", week.TrackedDays)
	message.WriteString("Tomorrow is a new day! 🌅")

	if err := ns.sender.SendMessage(message.String()); err != nil {
		ns.log.Error("failed to send daily summary", "error", err)
		return err
	}
	return nil
}
