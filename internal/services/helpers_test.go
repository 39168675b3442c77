package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

var fixedNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var errPutFailed = errors.New("put failed")

// flakyStore fails every Put while failPut is set.
type flakyStore struct {
	*database.MemoryStore
	failPut bool
}

func (f *flakyStore) Put(ctx context.Context, key, value string) error {
	if f.failPut {
		return errPutFailed
	}
	return f.MemoryStore.Put(ctx, key, value)
}

func newTestManager(t *testing.T, store database.BlobStore, opts Options) *ServiceManager {
	t.Helper()
	if opts.Now == nil {
		opts.Now = clock(fixedNow)
	}
	sm := NewServiceManager(store, logger.Nop(), opts)
	if err := sm.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return sm
}

type recordingSender struct {
	messages []string
	err      error
}

func (r *recordingSender) SendMessage(text string) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, text)
	return nil
}
