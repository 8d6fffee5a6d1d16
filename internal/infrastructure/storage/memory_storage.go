package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
)

var _ ledgerapp.ReportStorage = (*MemoryReportStorage)(nil)

// StoredObject is one report held by MemoryReportStorage
type StoredObject struct {
	Body        []byte
	ContentType string
	UploadedAt  time.Time
}

// MemoryReportStorage keeps reports in process memory.
// Used in development when no bucket is configured, and in tests.
type MemoryReportStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// NewMemoryReportStorage creates an empty store whose links point at baseURL
func NewMemoryReportStorage(baseURL string) *MemoryReportStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/reports"
	}
	return &MemoryReportStorage{
		BaseURL: baseURL,
		objects: make(map[string]StoredObject),
	}
}

// Upload stores a copy of body under key
func (m *MemoryReportStorage) Upload(_ context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	cp := make([]byte, len(body))
	copy(cp, body)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = StoredObject{Body: cp, ContentType: contentType, UploadedAt: time.Now()}
	return nil
}

// PresignDownload returns an unsigned link carrying the expiry as a query parameter
func (m *MemoryReportStorage) PresignDownload(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultLinkTTL
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": []string{expiresAt.UTC().Format(time.RFC3339)}}
	return m.BaseURL + "/" + key + "?" + q.Encode(), expiresAt, nil
}

// Get returns the object stored under key
func (m *MemoryReportStorage) Get(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (m *MemoryReportStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
