package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/utils"

	"github.com/google/uuid"
)

const (
	ActionImmediateIntervention = "immediate_intervention"
	ActionIncreasedMonitoring   = "increased_monitoring"
	ActionContinuedSupport      = "continued_support"
	ActionNormalConversation    = "normal_conversation"
)

const (
	msgImmediateDanger = "We detect you may be in immediate danger. Please reach out to emergency services: 988 (US) or your local crisis line."
	msgDifficultTime   = "I sense you're going through something difficult. Let's talk about this."
	msgDifficultTrend  = "I notice a pattern of difficult emotions. How can I help you right now?"
	msgListening       = "I'm here to listen. Tell me more."
)

var (
	highRiskKeywords = []string{
		"kill myself", "suicide", "suicidal", "end my life", "want to die",
		"overdose", "hurt myself", "self harm", "self-harm", "no reason to live",
	}
	mediumRiskKeywords = []string{
		"hopeless", "worthless", "can't go on", "give up", "no way out",
		"trapped", "empty inside", "a burden",
	}
	negativeWords = []string{"can't", "won't", "never", "always", "nothing", "nobody"}
)

const (
	historySize      = 5
	minHistory       = 3
	patternThreshold = 0.6
	excerptLength    = 120
)

// CrisisAssessment is the risk reading of one message.
type CrisisAssessment struct {
	Level      database.CrisisLevel `json:"level"`
	Confidence float64              `json:"confidence"`
	Keywords   []string             `json:"triggeredKeywords"`
	Action     string               `json:"action"`
	Message    string               `json:"message,omitempty"`
}

// AssessCrisis scores text by keyword and, failing a match, by the
// negative wording of the recent history.
func AssessCrisis(text string, history []string) CrisisAssessment {
	lower := strings.ToLower(text)
	for _, kw := range highRiskKeywords {
		if strings.Contains(lower, kw) {
			return CrisisAssessment{
				Level:      database.CrisisHigh,
				Confidence: 0.95,
				Keywords:   []string{kw},
				Action:     ActionImmediateIntervention,
				Message:    msgImmediateDanger,
			}
		}
	}
	for _, kw := range mediumRiskKeywords {
		if strings.Contains(lower, kw) {
			return CrisisAssessment{
				Level:      database.CrisisMedium,
				Confidence: 0.7,
				Keywords:   []string{kw},
				Action:     ActionIncreasedMonitoring,
				Message:    msgDifficultTime,
			}
		}
	}
	if score := patternScore(history); score > patternThreshold {
		return CrisisAssessment{
			Level:      database.CrisisMedium,
			Confidence: score,
			Keywords:   []string{},
			Action:     ActionContinuedSupport,
			Message:    msgDifficultTrend,
		}
	}
	return CrisisAssessment{
		Level:      database.CrisisLow,
		Confidence: 0.1,
		Keywords:   []string{},
		Action:     ActionNormalConversation,
	}
}

func patternScore(history []string) float64 {
	if len(history) < minHistory {
		return 0
	}
	if len(history) > historySize {
		history = history[len(history)-historySize:]
	}
	score := 0.0
	for _, msg := range history {
		lower := strings.ToLower(msg)
		for _, w := range negativeWords {
			if strings.Contains(lower, w) {
				score += 0.1
			}
		}
	}
	return min(score, 1.0)
}

// SupportReply answers a message. Risky messages get the assessment's
// message; others a listening reply that reflects today's mood if known.
func SupportReply(a CrisisAssessment, today *database.MoodEntry) string {
	if a.Level != database.CrisisLow {
		return a.Message
	}
	if today != nil {
		return fmt.Sprintf("I hear you're feeling %s today. %s", today.Mood, msgListening)
	}
	return msgListening
}

// CrisisService keeps the recent messages of each user for pattern
// scoring and persists an alert for every message above low risk.
type CrisisService struct {
	mu    sync.RWMutex
	store database.BlobStore
	log   *logger.Logger
	now   func() time.Time

	alerts  []database.CrisisAlert
	history map[string][]string
}

func NewCrisisService(store database.BlobStore, log *logger.Logger, now func() time.Time) *CrisisService {
	return &CrisisService{
		store:   store,
		log:     log.With("store", "crisis"),
		now:     now,
		history: make(map[string][]string),
	}
}

func (s *CrisisService) Load(ctx context.Context) error {
	var alerts []database.CrisisAlert
	found, err := database.LoadJSON(ctx, s.store, database.KeyCrisis, &alerts)
	if err != nil && !found {
		return err
	}
	if err != nil {
		s.log.Warn("malformed crisis alerts, starting empty", "error", err)
		alerts = nil
	}

	s.mu.Lock()
	s.alerts = alerts
	s.mu.Unlock()
	return nil
}

// Check assesses text from userID against that user's recent messages.
func (s *CrisisService) Check(ctx context.Context, userID, text string) (CrisisAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := AssessCrisis(text, s.history[userID])
	if a.Level == database.CrisisLow {
		s.remember(userID, text)
		return a, nil
	}

	alert := database.CrisisAlert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Level:     a.Level,
		Keywords:  slices.Clone(a.Keywords),
		Excerpt:   excerpt(text),
		Timestamp: utils.Timestamp(s.now()),
	}
	next := make([]database.CrisisAlert, 0, len(s.alerts)+1)
	next = append(next, alert)
	next = append(next, s.alerts...)
	if err := database.SaveJSON(ctx, s.store, database.KeyCrisis, next); err != nil {
		return CrisisAssessment{}, err
	}
	s.alerts = next
	s.remember(userID, text)
	s.log.Warn("crisis alert raised", "alert_id", alert.ID, "user_id", userID, "level", a.Level, "action", a.Action)
	return a, nil
}

// Alerts lists alerts newest first. An empty userID matches every user;
// a nil resolved matches both states.
func (s *CrisisService) Alerts(userID string, resolved *bool) []database.CrisisAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]database.CrisisAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if userID != "" && a.UserID != userID {
			continue
		}
		if resolved != nil && a.Resolved != *resolved {
			continue
		}
		a.Keywords = slices.Clone(a.Keywords)
		out = append(out, a)
	}
	return out
}

// Counts reports the unresolved and high-level alerts of userID.
func (s *CrisisService) Counts(userID string) (unresolved, high int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.UserID != userID {
			continue
		}
		if !a.Resolved {
			unresolved++
		}
		if a.Level == database.CrisisHigh {
			high++
		}
	}
	return unresolved, high
}

// Resolve marks an alert handled. Only admins may resolve.
func (s *CrisisService) Resolve(ctx context.Context, actor database.User, alertID string) (database.CrisisAlert, error) {
	if actor.Role != database.RoleAdmin {
		return database.CrisisAlert{}, fmt.Errorf("resolve alert %s: %w", alertID, ErrPermissionDenied)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.alerts, func(a database.CrisisAlert) bool { return a.ID == alertID })
	if idx < 0 {
		return database.CrisisAlert{}, fmt.Errorf("resolve alert %s: %w", alertID, ErrAlertNotFound)
	}
	next := slices.Clone(s.alerts)
	next[idx].Resolved = true
	if err := database.SaveJSON(ctx, s.store, database.KeyCrisis, next); err != nil {
		return database.CrisisAlert{}, err
	}
	s.alerts = next
	s.log.Info("crisis alert resolved", "alert_id", alertID, "by", actor.ID)
	return next[idx], nil
}

func (s *CrisisService) remember(userID, text string) {
	h := append(s.history[userID], text)
	if len(h) > historySize {
		h = h[len(h)-historySize:]
	}
	s.history[userID] = h
}

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	return string([]rune(text)[:excerptLength]) + "…"
}
