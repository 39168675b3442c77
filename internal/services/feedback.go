package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/utils"

	"github.com/google/uuid"
)

// FeedbackService keeps community feedback newest first.
type FeedbackService struct {
	mu    sync.RWMutex
	store database.BlobStore
	log   *logger.Logger
	now   func() time.Time

	feedbacks []database.Feedback
}

func NewFeedbackService(store database.BlobStore, log *logger.Logger, now func() time.Time) *FeedbackService {
	if now == nil {
		now = time.Now
	}
	return &FeedbackService{
		store: store,
		log:   log.With("store", "feedback"),
		now:   now,
	}
}

// Load reads the persisted feedback, seeding the sample records the first
// time the profile is used.
func (s *FeedbackService) Load(ctx context.Context) error {
	var feedbacks []database.Feedback
	found, err := database.LoadJSON(ctx, s.store, database.KeyFeedbacks, &feedbacks)
	if err != nil && !found {
		return err
	}
	if err != nil {
		s.log.Warn("malformed feedback blob, reseeding", "error", err)
		found = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !found {
		seeds := seedFeedbacks()
		if err := database.SaveJSON(ctx, s.store, database.KeyFeedbacks, seeds); err != nil {
			return err
		}
		s.feedbacks = seeds
		s.log.Info("feedback seeded", "count", len(seeds))
		return nil
	}

	for i := range feedbacks {
		normalizeStars(&feedbacks[i])
	}
	s.feedbacks = feedbacks
	s.log.Info("feedback loaded", "count", len(feedbacks))
	return nil
}

// AddFeedback prepends a new record dated by the UTC calendar day. Blank
// comments and ratings outside 1..5 are rejected without touching the store.
func (s *FeedbackService) AddFeedback(ctx context.Context, userID, userName string, userRole database.Role, rating int, comment string) (database.Feedback, error) {
	if strings.TrimSpace(comment) == "" || rating < 1 || rating > 5 {
		return database.Feedback{}, ErrInvalidFeedback
	}

	fb := database.Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		UserRole:  userRole,
		Rating:    rating,
		Comment:   comment,
		Date:      utils.DateKey(s.now().UTC()),
		Stars:     0,
		StarredBy: []string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]database.Feedback, 0, len(s.feedbacks)+1)
	next = append(next, fb)
	next = append(next, s.feedbacks...)
	if err := s.save(ctx, next); err != nil {
		return database.Feedback{}, err
	}
	s.log.Info("feedback added", "id", fb.ID, "user_id", userID, "rating", rating)
	return cloneFeedback(fb), nil
}

// ToggleStar flips userID's star on the record. Unknown ids are ignored
// and reported with found=false.
func (s *FeedbackService) ToggleStar(ctx context.Context, feedbackID, userID string) (database.Feedback, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(feedbackID)
	if idx < 0 {
		return database.Feedback{}, false, nil
	}

	next := slices.Clone(s.feedbacks)
	fb := cloneFeedback(next[idx])
	if fb.HasStarred(userID) {
		fb.StarredBy = slices.DeleteFunc(fb.StarredBy, func(id string) bool { return id == userID })
	} else {
		fb.StarredBy = append(fb.StarredBy, userID)
	}
	fb.Stars = len(fb.StarredBy)
	next[idx] = fb

	if err := s.save(ctx, next); err != nil {
		return database.Feedback{}, true, err
	}
	return cloneFeedback(fb), true, nil
}

// DeleteFeedback removes the record when actor is an admin or its
// author. Deleting an unknown id changes nothing.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, actor database.User, feedbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(feedbackID)
	if idx < 0 {
		return nil
	}
	if !CanDeleteFeedback(actor, s.feedbacks[idx]) {
		return fmt.Errorf("delete feedback %s: %w", feedbackID, ErrPermissionDenied)
	}

	next := slices.Delete(slices.Clone(s.feedbacks), idx, idx+1)
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.log.Info("feedback deleted", "id", feedbackID, "by", actor.ID)
	return nil
}

func (s *FeedbackService) List() []database.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]database.Feedback, len(s.feedbacks))
	for i, fb := range s.feedbacks {
		out[i] = cloneFeedback(fb)
	}
	return out
}

func (s *FeedbackService) Get(feedbackID string) (database.Feedback, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(feedbackID)
	if idx < 0 {
		return database.Feedback{}, false
	}
	return cloneFeedback(s.feedbacks[idx]), true
}

// CountBy reports how many records userID has authored.
func (s *FeedbackService) CountBy(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, fb := range s.feedbacks {
		if fb.UserID == userID {
			n++
		}
	}
	return n
}

func (s *FeedbackService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.feedbacks)
}

func (s *FeedbackService) indexOf(feedbackID string) int {
	return slices.IndexFunc(s.feedbacks, func(fb database.Feedback) bool { return fb.ID == feedbackID })
}

func (s *FeedbackService) save(ctx context.Context, next []database.Feedback) error {
	if err := database.SaveJSON(ctx, s.store, database.KeyFeedbacks, next); err != nil {
		return err
	}
	s.feedbacks = next
	return nil
}

// CanSubmitFeedback gates the submission form: guests may only read.
func CanSubmitFeedback(user database.User) bool {
	return user.ID != "" && user.Role != database.RoleGuest
}

// CanStarFeedback mirrors the submission gate.
func CanStarFeedback(user database.User) bool {
	return CanSubmitFeedback(user)
}

func CanDeleteFeedback(actor database.User, fb database.Feedback) bool {
	if actor.ID == "" {
		return false
	}
	return actor.Role == database.RoleAdmin || actor.ID == fb.UserID
}

func cloneFeedback(fb database.Feedback) database.Feedback {
	fb.StarredBy = slices.Clone(fb.StarredBy)
	if fb.StarredBy == nil {
		fb.StarredBy = []string{}
	}
	return fb
}

// normalizeStars drops duplicate starrers and recomputes the count.
func normalizeStars(fb *database.Feedback) {
	seen := make(map[string]struct{}, len(fb.StarredBy))
	unique := make([]string, 0, len(fb.StarredBy))
	for _, id := range fb.StarredBy {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	fb.StarredBy = unique
	fb.Stars = len(unique)
}

func seedFeedbacks() []database.Feedback {
	seeds := []database.Feedback{
		{
			ID:       "1",
			UserID:   "user1",
			UserName: "Sarah Johnson",
			UserRole: database.RoleUser,
			Rating:   5,
			Comment:  "EmoHeal has been incredible for my mental wellness journey. The face detection is very accurate!",
			Date:     "2026-01-02",
		},
		{
			ID:       "2",
			UserID:   "user2",
			UserName: "Michael Chen",
			UserRole: database.RoleUser,
			Rating:   4,
			Comment:  "Great app! The voice emotion analysis really helps me understand my feelings better.",
			Date:     "2026-01-03",
		},
		{
			ID:       "3",
			UserID:   "admin1",
			UserName: "Admin",
			UserRole: database.RoleAdmin,
			Rating:   5,
			Comment:  "As an admin, I can see the positive impact this platform has. Highly recommend!",
			Date:     "2026-01-04",
		},
	}
	starCounts := []int{12, 8, 15}
	for i := range seeds {
		seeds[i].StarredBy = make([]string, 0, starCounts[i])
		for n := 1; n <= starCounts[i]; n++ {
			seeds[i].StarredBy = append(seeds[i].StarredBy, fmt.Sprintf("seed-%s-%d", seeds[i].ID, n))
		}
		seeds[i].Stars = len(seeds[i].StarredBy)
	}
	return seeds
}
