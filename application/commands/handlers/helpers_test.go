package handlers_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"trustie-admin/application/ports"
	"trustie-admin/domain/events"
)

var fixedNow = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type stubTransformer struct {
	err error
}

func (s stubTransformer) Transform(ctx context.Context, data []byte) (*ports.ImageVariants, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ImageVariants{
		Thumbnail: []byte("thumb"),
		Low:       []byte("low"),
		High:      []byte("high"),
	}, nil
}

// fakeStore records uploads in memory. failKey makes any key containing it fail.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	signed  []string
	failKey string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s.failKey != "" && strings.Contains(key, s.failKey) {
		return "", errors.New("AccessDenied")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	return s.PermanentURL(key), nil
}

func (s *fakeStore) SignedDownloadURL(ctx context.Context, path, name string, ttl time.Duration) (string, error) {
	return "https://signed.example/protected/" + path + "/" + name, nil
}

func (s *fakeStore) SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (s *fakeStore) UploadViaSignedURL(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.mu.Lock()
	s.signed = append(s.signed, key)
	s.mu.Unlock()
	return s.Upload(ctx, key, body, contentType)
}

func (s *fakeStore) PermanentURL(key string) string {
	return "https://bucket.example/" + key
}

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	return out
}

type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []events.PostPublished
	err   error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, task events.PostPublished) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
	return d.err
}
