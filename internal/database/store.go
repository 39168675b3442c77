package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys under which each store persists its full state.
const (
	KeyUser      = "emoheal_user"
	KeySettings  = "emoheal-settings"
	KeyMoodData  = "emoheal_mood_data"
	KeyFeedbacks = "emoheal_feedbacks"
	KeyUsers     = "emoheal_users"
	KeyCrisis    = "emoheal_crisis_alerts"
)

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a durable string-keyed blob store. Put overwrites.
type BlobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LoadJSON decodes the blob under key into out. It reports found=false
// when nothing is stored; decode failures are returned as errors.
func LoadJSON(ctx context.Context, store BlobStore, key string, out any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON serializes v and overwrites the blob under key.
func SaveJSON(ctx context.Context, store BlobStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
