package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-process translator for tests and dry runs.
// It is safe for concurrent use.
type MockProvider struct {
	mu           sync.Mutex
	translations map[string]string
	err          error
	calls        int
	lastRequest  *TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Set adds or replaces a canned translation.
func (m *MockProvider) Set(text, translation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.translations[text] = translation
}

// SetError makes every following call fail with err. A nil err restores success.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Translate returns canned translations, or "[text]" for unknown texts.
func (m *MockProvider) Translate(_ context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastRequest = &req

	if m.err != nil {
		return nil, m.err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// Calls returns the number of Translate calls.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset clears the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.lastRequest = nil
}

// Verify MockProvider implements RemoteTranslator
var _ RemoteTranslator = (*MockProvider)(nil)
