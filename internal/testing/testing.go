// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tripmate/internal/models"
)

// MockIdentity is a test double for the identity provider consumed by the store.
//
// Each method returns its configured credential or error and counts its calls.
type MockIdentity struct {
	mu sync.Mutex

	Credential *models.Credential // Returned by every successful sign-in
	Current    *models.Credential // Returned by CurrentUser; nil reports CurrentErr

	SignInErr  error
	PopupErr   error
	CreateErr  error
	DeleteErr  error
	CurrentErr error

	Calls    map[string]int
	Provider *models.AuthProvider // Last provider passed to SignInWithPopup
}

func (m *MockIdentity) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount reports how many times the named method ran.
func (m *MockIdentity) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockIdentity) SignInWithPassword(ctx context.Context, email, password string) (*models.Credential, error) {
	m.record("SignInWithPassword")
	if m.SignInErr != nil {
		return nil, m.SignInErr
	}
	return m.Credential, nil
}

func (m *MockIdentity) SignInWithPopup(ctx context.Context, provider *models.AuthProvider) (*models.Credential, error) {
	m.record("SignInWithPopup")
	m.mu.Lock()
	m.Provider = provider
	m.mu.Unlock()
	if m.PopupErr != nil {
		return nil, m.PopupErr
	}
	return m.Credential, nil
}

func (m *MockIdentity) CreateUser(ctx context.Context, email, password string) (*models.Credential, error) {
	m.record("CreateUser")
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Credential, nil
}

func (m *MockIdentity) DeleteCurrentUser(ctx context.Context) error {
	m.record("DeleteCurrentUser")
	return m.DeleteErr
}

func (m *MockIdentity) CurrentUser(ctx context.Context) (*models.Credential, error) {
	m.record("CurrentUser")
	if m.Current == nil {
		return nil, m.CurrentErr
	}
	return m.Current, nil
}

// MemoryDocuments is an in-memory document store with injectable failures.
type MemoryDocuments struct {
	mu     sync.Mutex
	docs   map[string]models.UserRecord
	GetErr error
	SetErr error
	Gets   int
	Sets   []DocumentWrite
	OnGet  func(path string) // Runs before Get reads the document
}

// DocumentWrite is one recorded Set or Enqueue call.
type DocumentWrite struct {
	Path   string
	Record models.UserRecord
}

// NewMemoryDocuments creates a store seeded with docs.
func NewMemoryDocuments(docs map[string]models.UserRecord) *MemoryDocuments {
	if docs == nil {
		docs = make(map[string]models.UserRecord)
	}
	return &MemoryDocuments{docs: docs}
}

func (m *MemoryDocuments) Get(ctx context.Context, path string) (*models.Snapshot, error) {
	if m.OnGet != nil {
		m.OnGet(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	value, ok := m.docs[path]
	return &models.Snapshot{Exists: ok, Value: value}, nil
}

func (m *MemoryDocuments) Set(ctx context.Context, path string, value models.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets = append(m.Sets, DocumentWrite{Path: path, Record: value})
	if m.SetErr != nil {
		return m.SetErr
	}
	m.docs[path] = value
	return nil
}

// Document returns the stored value at path.
func (m *MemoryDocuments) Document(path string) (models.UserRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.docs[path]
	return value, ok
}

// MockNavigator records every navigation.
type MockNavigator struct {
	mu    sync.Mutex
	Paths []string
}

func (m *MockNavigator) Navigate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths = append(m.Paths, path)
}

// Visited returns a copy of the recorded paths.
func (m *MockNavigator) Visited() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Paths...)
}

// MockWriter records write-through snapshots instead of persisting them.
type MockWriter struct {
	mu        sync.Mutex
	Writes    []DocumentWrite
	FlushErr  error
	OnEnqueue func(path string) // Runs before the snapshot is recorded
}

func (m *MockWriter) Enqueue(path string, record models.UserRecord) {
	if m.OnEnqueue != nil {
		m.OnEnqueue(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes = append(m.Writes, DocumentWrite{Path: path, Record: record})
}

func (m *MockWriter) Flush(ctx context.Context) error {
	return m.FlushErr
}

// Enqueued returns a copy of the recorded snapshots.
func (m *MockWriter) Enqueued() []DocumentWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DocumentWrite(nil), m.Writes...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
