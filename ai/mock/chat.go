package mock

import (
	"context"
	"sync"

	"github.com/poiesic/grantmatch/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It records every request so tests can assert on backend ordering, and
// allows custom behavior injection via a function field.
type MockChatModel struct {
	// GenerateTextFunc is called by GenerateText if set.
	// If nil, returns "50" (a neutral mid-scale score).
	GenerateTextFunc func(ctx context.Context, req ai.TextRequest) (string, error)

	mu       sync.Mutex
	requests []ai.TextRequest
}

// NewMockChatModel creates a mock chat model with default behavior.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// GenerateText records the request and delegates to GenerateTextFunc.
func (m *MockChatModel) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, req)
	}
	return "50", nil
}

// Requests returns a copy of all recorded requests in call order.
func (m *MockChatModel) Requests() []ai.TextRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.TextRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// ModelsCalled returns the model identifier of each recorded request in order.
func (m *MockChatModel) ModelsCalled() []string {
	reqs := m.Requests()
	models := make([]string, len(reqs))
	for i, r := range reqs {
		models[i] = r.Model
	}
	return models
}

// CallCount returns the number of recorded requests.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reset clears recorded requests and injected behavior.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.GenerateTextFunc = nil
}
