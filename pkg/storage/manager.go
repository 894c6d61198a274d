package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ErrExists is returned when an artifact would replace an existing file
var ErrExists = errors.New("file already exists")

// Manager writes export artifacts into an output directory
type Manager struct {
	outputDir string
	overwrite bool
	saved     []string
	mu        sync.Mutex
}

// NewManager creates the output directory if needed. With overwrite false,
// Save refuses to replace existing files.
func NewManager(outputDir string, overwrite bool) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		overwrite: overwrite,
	}, nil
}

// Path returns where name would be written
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, filepath.Base(name))
}

// Exists checks whether name is already present in the output directory
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.Path(name))
	return err == nil
}

// Save copies r into name atomically and returns the final path
func (m *Manager) Save(name string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.Path(name)
	if !m.overwrite {
		if _, err := os.Stat(target); err == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, target)
		}
	}

	// Temp file in the same directory so the rename stays on one filesystem
	out, err := os.CreateTemp(m.outputDir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.saved = append(m.saved, target)
	return target, nil
}

// SaveBytes is Save for in-memory content
func (m *Manager) SaveBytes(name string, data []byte) (string, error) {
	return m.Save(name, bytes.NewReader(data))
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// Saved returns the paths written by this manager, in order
func (m *Manager) Saved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.saved))
	copy(out, m.saved)
	return out
}
