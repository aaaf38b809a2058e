package ingest

import (
	"io/fs"
	"os"
	"sync"
)

// MockFileSystem provides an in-memory FileSystem for testing
type MockFileSystem struct {
	mu    sync.Mutex
	files map[string][]byte

	// Errors to inject
	ReadFileError  error
	WriteFileError error
}

// NewMockFileSystem creates an empty in-memory file system
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string][]byte),
	}
}

// ReadFile implements FileSystem.ReadFile
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}
	data, ok := m.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

// WriteFile implements FileSystem.WriteFile
func (m *MockFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteFileError != nil {
		return m.WriteFileError
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

// SetFile seeds a file's content (for testing)
func (m *MockFileSystem) SetFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
}

// GetFileContent returns a file's content (for testing)
func (m *MockFileSystem) GetFileContent(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// FileExists reports whether the file has been written (for testing)
func (m *MockFileSystem) FileExists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}
