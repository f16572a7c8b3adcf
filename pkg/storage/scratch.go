package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ScratchStore keeps downloaded documents on disk under a base directory.
// Files placed here persist after a sync run; document records reference
// them by absolute path for the download endpoint.
type ScratchStore struct {
	baseDir string
}

// NewScratchStore ensures the base directory and the given category
// subdirectories exist and returns a handle.
func NewScratchStore(baseDir string, categoryDirs []string) (*ScratchStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	for _, dir := range categoryDirs {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create category directory %s: %w", dir, err)
		}
	}
	return &ScratchStore{baseDir: baseDir}, nil
}

// DocumentPath builds the canonical local path for a downloaded document.
// The contract number prefix keeps files from different contracts apart.
func (s *ScratchStore) DocumentPath(categoryDir, contractNumber, fileName string) string {
	return filepath.Join(s.baseDir, categoryDir, fmt.Sprintf("%s_%s", contractNumber, fileName))
}

// TempPath returns a path directly under the base directory for transient
// files such as the downloaded registry.
func (s *ScratchStore) TempPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

// Create opens the target path for writing, truncating any previous copy.
func (s *ScratchStore) Create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare document directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create document file: %w", err)
	}
	return file, nil
}

// Open returns a read-only handle for a stored document.
func (s *ScratchStore) Open(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored file if present.
func (s *ScratchStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document file: %w", err)
	}
	return nil
}

// BaseDir exposes the root of the scratch tree.
func (s *ScratchStore) BaseDir() string {
	return s.baseDir
}
