package services

import (
	"errors"
	"fmt"

	"emoheal/internal/database"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotReady         = errors.New("stores are still loading")
	ErrInvalidMood      = errors.New("invalid mood entry")
	ErrInvalidFeedback  = errors.New("feedback needs a comment and a rating from 1 to 5")
	ErrInvalidSetting   = errors.New("invalid setting value")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlertNotFound    = errors.New("crisis alert not found")
	ErrInvalidPeriod    = errors.New("period must be between 1 and 90 days")
)

// DeviceError is returned when the capture device cannot be opened.
// Message is meant to be shown to the user as is.
type DeviceError struct {
	Source  database.Source
	Message string
	Err     error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DeviceError) Unwrap() error { return e.Err }

func deviceErrorFor(source database.Source, err error) *DeviceError {
	msg := "Failed to access camera. Please allow camera permissions."
	if source == database.SourceVoice {
		msg = "Failed to access microphone. Please allow microphone permissions."
	}
	return &DeviceError{Source: source, Message: msg, Err: err}
}
