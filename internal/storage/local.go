package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorageClient handles local file system storage operations
type LocalStorageClient struct {
	rootDir string
}

// NewLocalStorageClient creates a new local storage client rooted at rootDir
func NewLocalStorageClient(rootDir string) (*LocalStorageClient, error) {
	if rootDir == "" {
		rootDir = "."
	}
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory %s: %w", rootDir, err)
	}

	return &LocalStorageClient{
		rootDir: rootDir,
	}, nil
}

// Close is a no-op for local storage (implements same interface as GCSClient)
func (l *LocalStorageClient) Close() error {
	return nil
}

// RootDir returns the directory all paths are resolved against
func (l *LocalStorageClient) RootDir() string {
	return l.rootDir
}

func (l *LocalStorageClient) resolve(p string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", p)
	}
	return filepath.Join(l.rootDir, clean), nil
}

// CreateDir creates a directory under the root
func (l *LocalStorageClient) CreateDir(ctx context.Context, dirPath string) error {
	full, err := l.resolve(dirPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", full, err)
	}
	return nil
}

// StoreFile writes a file, creating parent directories as needed
func (l *LocalStorageClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	full, err := l.resolve(filePath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(full, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", full, err)
	}

	return nil
}

// GetFile retrieves a file from local storage
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	full, err := l.resolve(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", full, err)
	}
	return data, nil
}

// ListDir lists files below dirPath, relative to the root and sorted.
// Without recursive only direct children are listed; directories end with "/".
func (l *LocalStorageClient) ListDir(ctx context.Context, dirPath string, recursive bool) ([]string, error) {
	full, err := l.resolve(dirPath)
	if err != nil {
		return nil, err
	}

	var entries []string
	if !recursive {
		items, err := os.ReadDir(full)
		if err != nil {
			return nil, fmt.Errorf("failed to list directory %s: %w", full, err)
		}
		for _, item := range items {
			rel, _ := filepath.Rel(l.rootDir, filepath.Join(full, item.Name()))
			rel = filepath.ToSlash(rel)
			if item.IsDir() {
				rel += "/"
			}
			entries = append(entries, rel)
		}
		sort.Strings(entries)
		return entries, nil
	}

	err = filepath.WalkDir(full, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(l.rootDir, path)
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", full, err)
	}

	sort.Strings(entries)
	return entries, nil
}

// FileExists checks if a regular file exists at the specified path
func (l *LocalStorageClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	full, err := l.resolve(filePath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", full, err)
	}
	return !info.IsDir(), nil
}
