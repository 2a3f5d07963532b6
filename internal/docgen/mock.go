package docgen

import (
	"context"
	"sync"
)

// MockProvider is a scripted generator used in tests and as the fallback
// when no API key is configured. Responses are returned in order; when the
// script is exhausted the default response is repeated.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []Request
	Default   string
}

// NewMockProvider creates a mock generator with optional scripted responses
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{
		responses: responses,
		Default:   "mock documentation response",
	}
}

// FailWith appends a scripted error; a nil entry means the corresponding
// call succeeds with the next scripted response.
func (m *MockProvider) FailWith(errs ...error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
	return m
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.calls)
	m.calls = append(m.calls, req)

	if call < len(m.errs) && m.errs[call] != nil {
		return "", m.errs[call]
	}
	if call < len(m.responses) {
		return m.responses[call], nil
	}
	return m.Default, nil
}

// Calls returns a copy of the recorded requests
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Request, len(m.calls))
	copy(calls, m.calls)
	return calls
}

func (m *MockProvider) Provider() string { return ProviderMock }

func (m *MockProvider) Model() string { return "mock" }

func (m *MockProvider) Close() error { return nil }
