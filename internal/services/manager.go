package services

import (
	"context"
	"fmt"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

type Options struct {
	Now              func() time.Time
	AuthLatency      time.Duration
	DetectionLatency time.Duration
	Capturer         Capturer
	Preference       ThemePreference
}

// ServiceManager wires every store to one blob store. Load must complete
// before the transports serve requests.
type ServiceManager struct {
	Session      *SessionService
	Mood         *MoodService
	Feedback     *FeedbackService
	Settings     *SettingsService
	Users        *UserDirectory
	Detection    *DetectionService
	Analytics    *AnalyticsService
	Crisis       *CrisisService
	Notification *NotificationService

	log *logger.Logger
	now func() time.Time
}

func NewServiceManager(store database.BlobStore, log *logger.Logger, opts Options) *ServiceManager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Capturer == nil {
		opts.Capturer = DeviceAccess{Camera: true, Microphone: true}
	}

	users := NewUserDirectory(store, log)
	moods := NewMoodService(store, log, opts.Now)

	return &ServiceManager{
		Session:   NewSessionService(store, log, opts.AuthLatency, users),
		Mood:      moods,
		Feedback:  NewFeedbackService(store, log, opts.Now),
		Settings:  NewSettingsService(store, log, opts.Preference),
		Users:     users,
		Detection: NewDetectionService(moods, opts.Capturer, opts.DetectionLatency, log),
		Analytics: NewAnalyticsService(moods, opts.Now),
		Crisis:    NewCrisisService(store, log, opts.Now),
		log:       log,
		now:       opts.Now,
	}
}

// Load hydrates every store. The session is loaded last so that Ready
// implies all other stores are populated.
func (sm *ServiceManager) Load(ctx context.Context) error {
	steps := []struct {
		name string
		load func(context.Context) error
	}{
		{"users", sm.Users.Load},
		{"settings", sm.Settings.Load},
		{"mood", sm.Mood.Load},
		{"feedback", sm.Feedback.Load},
		{"crisis", sm.Crisis.Load},
		{"session", sm.Session.Load},
	}
	for _, step := range steps {
		if err := step.load(ctx); err != nil {
			return fmt.Errorf("load %s: %w", step.name, err)
		}
	}
	sm.log.Info("stores loaded")
	return nil
}

func (sm *ServiceManager) Ready() bool {
	return sm.Session.Ready()
}

// Now is the clock shared by every service.
func (sm *ServiceManager) Now() time.Time {
	return sm.now()
}

func (sm *ServiceManager) SetNotificationSender(sender NotificationSender) {
	sm.Notification = NewNotificationService(sender, sm.Mood, sm.Settings, sm.Analytics, sm.log, sm.now)
}

// UserStats is an activity overview for one account. Mood entries belong
// to the single local profile and are counted regardless of user.
type UserStats struct {
	UserID           string `json:"userId"`
	MoodEntries      int    `json:"moodEntries"`
	FeedbackCount    int    `json:"feedbackCount"`
	HighCrisisAlerts int    `json:"highCrisisAlerts"`
	UnresolvedAlerts int    `json:"unresolvedAlerts"`
	LastEntryAt      string `json:"lastEntryAt,omitempty"`
}

func (sm *ServiceManager) UserStats(user database.User) UserStats {
	moods := sm.Mood.GetAllMoods()
	stats := UserStats{
		UserID:        user.ID,
		MoodEntries:   len(moods),
		FeedbackCount: sm.Feedback.CountBy(user.ID),
	}
	stats.UnresolvedAlerts, stats.HighCrisisAlerts = sm.Crisis.Counts(user.ID)
	for _, entry := range moods {
		if entry.Timestamp > stats.LastEntryAt {
			stats.LastEntryAt = entry.Timestamp
		}
	}
	return stats
}
