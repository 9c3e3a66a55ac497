package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/predict"
)

// MockPredictor returns a configured result or error and records every request.
type MockPredictor struct {
	mu       sync.Mutex
	Result   *predict.Result
	Err      error
	requests []estimate.Request
}

// NewMockPredictor creates a predictor answering with formattedPrice.
func NewMockPredictor(formattedPrice string) *MockPredictor {
	return &MockPredictor{Result: &predict.Result{FormattedPrice: formattedPrice}}
}

// Predict implements the wizard's predictor.
func (m *MockPredictor) Predict(ctx context.Context, req estimate.Request) (*predict.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// SetErr changes the error returned by subsequent calls.
func (m *MockPredictor) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Requests returns a copy of the received requests.
func (m *MockPredictor) Requests() []estimate.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]estimate.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// MockRecorder keeps recorded entries in memory.
type MockRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

// NewMockRecorder creates an empty recorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

// Record implements the wizard's recorder.
func (m *MockRecorder) Record(ctx context.Context, e history.Entry) (history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return e, nil
}

// Entries returns a copy of the recorded entries.
func (m *MockRecorder) Entries() []history.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]history.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
