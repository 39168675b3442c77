package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

// Capturer grants access to the camera (face) or microphone (voice).
type Capturer interface {
	Open(ctx context.Context, source database.Source) error
}

// DeviceAccess is a Capturer driven by static permissions.
type DeviceAccess struct {
	Camera     bool
	Microphone bool
}

var errAccessDenied = errors.New("permission denied by user agent")

func (d DeviceAccess) Open(ctx context.Context, source database.Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch source {
	case database.SourceFace:
		if !d.Camera {
			return errAccessDenied
		}
	case database.SourceVoice:
		if !d.Microphone {
			return errAccessDenied
		}
	}
	return nil
}

// Detection is a recorded detection plus a track for the detected mood.
type Detection struct {
	database.MoodEntry
	Track TrackSuggestion `json:"track"`
}

// DetectionService simulates face and voice emotion analysis. The
// result is random; no capture data is inspected.
type DetectionService struct {
	moods    *MoodService
	capturer Capturer
	latency  time.Duration
	log      *logger.Logger
	pick     func() database.Mood
}

func NewDetectionService(moods *MoodService, capturer Capturer, latency time.Duration, log *logger.Logger) *DetectionService {
	return &DetectionService{
		moods:    moods,
		capturer: capturer,
		latency:  latency,
		log:      log.With("service", "detection"),
		pick:     randomMood,
	}
}

// Detect opens the device for source, waits for the simulated analysis
// and records the detected mood for today.
func (s *DetectionService) Detect(ctx context.Context, source database.Source) (Detection, error) {
	if source != database.SourceFace && source != database.SourceVoice {
		return Detection{}, fmt.Errorf("detect via %q: %w", source, ErrInvalidMood)
	}

	if err := s.capturer.Open(ctx, source); err != nil {
		if ctx.Err() != nil {
			return Detection{}, ctx.Err()
		}
		s.log.Warn("device access failed", "source", source, "error", err)
		return Detection{}, deviceErrorFor(source, err)
	}

	if err := sleepCtx(ctx, s.latency); err != nil {
		return Detection{}, err
	}

	mood := s.pick()
	entry, err := s.moods.AddMoodEntry(ctx, mood, source)
	if err != nil {
		return Detection{}, err
	}
	s.log.Info("mood detected", "source", source, "mood", mood)
	return Detection{MoodEntry: entry, Track: SuggestTrack(mood)}, nil
}

func randomMood() database.Mood {
	return database.Moods[rand.Intn(len(database.Moods))]
}
