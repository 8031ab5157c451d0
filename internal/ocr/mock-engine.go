package ocr

import (
	"context"
	"sync"
)

// MockEngine is a scripted engine for tests. It returns Text (or RecognizeErr) from
// every session and counts how many sessions were acquired and closed.
type MockEngine struct {
	Text         string
	AcquireErr   error
	LanguageErr  error
	RecognizeErr error

	mu        sync.Mutex
	acquired  int
	released  int
	languages []string
}

// NewMockEngine returns an engine that recognizes every image as text.
func NewMockEngine(text string) *MockEngine {
	return &MockEngine{Text: text}
}

// Acquire returns a new mock session.
func (m *MockEngine) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.AcquireErr != nil {
		return nil, m.AcquireErr
	}
	m.mu.Lock()
	m.acquired++
	m.mu.Unlock()
	return &mockSession{engine: m}, nil
}

// Counts returns the number of sessions acquired and released so far.
func (m *MockEngine) Counts() (acquired, released int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired, m.released
}

// Languages returns the languages requested, one per session.
func (m *MockEngine) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.languages...)
}

type mockSession struct {
	engine *MockEngine
	closed bool
}

func (s *mockSession) SetLanguage(lang string) error {
	s.engine.mu.Lock()
	s.engine.languages = append(s.engine.languages, lang)
	s.engine.mu.Unlock()
	return s.engine.LanguageErr
}

func (s *mockSession) Recognize(ctx context.Context, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.engine.RecognizeErr != nil {
		return "", s.engine.RecognizeErr
	}
	return s.engine.Text, nil
}

func (s *mockSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.engine.mu.Lock()
	s.engine.released++
	s.engine.mu.Unlock()
	return nil
}
