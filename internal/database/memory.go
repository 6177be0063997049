package database

import "sync"

// Memory is an in-process Store used when no DSN is configured and in tests.
// Contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(namespace, key, fallback string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if value, ok := m.data[namespace+"\x00"+key]; ok {
		return value, nil
	}
	return fallback, nil
}

func (m *Memory) Set(namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[namespace+"\x00"+key] = value
	return nil
}

func (m *Memory) Delete(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace+"\x00"+key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
