package mocks

import (
	"context"
	"sync"
)

// MockKV is a mock implementation of store.KV for testing
type MockKV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// For tracking calls in tests
	SetCalls    []SetCall
	DeleteCalls []string
	GetErr      error
	SetErr      error
	DeleteErr   error
	// SetCallback, when set, decides the outcome of each Set after it is recorded
	SetCallback func(key string, value []byte) error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value []byte
}

// NewMockKV creates a new MockKV
func NewMockKV() *MockKV {
	return &MockKV{
		data:        make(map[string][]byte),
		SetCalls:    make([]SetCall, 0),
		DeleteCalls: make([]string, 0),
	}
}

func (m *MockKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MockKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value})

	if m.SetCallback != nil {
		if err := m.SetCallback(key, value); err != nil {
			return err
		}
	}
	if m.SetErr != nil {
		return m.SetErr
	}

	m.data[key] = value
	return nil
}

func (m *MockKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

func (m *MockKV) Close() error {
	return nil
}

// Put sets a value directly without recording a call
func (m *MockKV) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Has reports whether key is present
func (m *MockKV) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// Reset clears all data and recorded calls
func (m *MockKV) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.SetCalls = make([]SetCall, 0)
	m.DeleteCalls = make([]string, 0)
	m.GetErr = nil
	m.SetErr = nil
	m.DeleteErr = nil
	m.SetCallback = nil
}
