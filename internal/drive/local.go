package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps the evidence hierarchy on the local filesystem. Folder
// ids are relative directory paths under the base directory.
type LocalStore struct {
	baseDir string
	prefix  string
}

// NewLocalStore creates a new local filesystem store.
func NewLocalStore(baseDir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, filepath.FromSlash(prefix)), 0755); err != nil {
		return nil, fmt.Errorf("create base directory %s: %w", baseDir, err)
	}

	return &LocalStore{
		baseDir: baseDir,
		prefix:  prefix,
	}, nil
}

func (s *LocalStore) dirFor(id string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(s.prefix), filepath.FromSlash(id))
}

// FindFolder looks for an existing child directory.
func (s *LocalStore) FindFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	id := childKey(parentID, name)
	info, err := os.Stat(s.dirFor(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat folder %s: %w", id, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder %s exists as a regular file", id)
	}
	return &Folder{ID: id, Name: name, ParentID: parentID}, nil
}

// CreateFolder creates a child directory.
func (s *LocalStore) CreateFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	id := childKey(parentID, name)
	if err := os.MkdirAll(s.dirFor(id), 0755); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", id, err)
	}
	return &Folder{ID: id, Name: name, ParentID: parentID}, nil
}

// UploadFile writes evidence bytes atomically using temp file + rename.
func (s *LocalStore) UploadFile(ctx context.Context, folderID, name string, data []byte) (*File, error) {
	id := childKey(folderID, name)
	path := filepath.Join(s.dirFor(folderID), name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write temp file %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("rename %s to %s: %w", tempPath, path, err)
	}

	return &File{
		ID:      id,
		Name:    name,
		Size:    int64(len(data)),
		ViewURL: s.URI(id),
	}, nil
}

// List returns the file names directly inside a folder.
func (s *LocalStore) List(ctx context.Context, folderID string) ([]string, error) {
	entries, err := os.ReadDir(s.dirFor(folderID))
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// URI returns the canonical URI for the given key.
func (s *LocalStore) URI(key string) string {
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(s.prefix), filepath.FromSlash(key))
	return "file://" + absPath
}

// Close is a no-op for local storage.
func (s *LocalStore) Close() error {
	return nil
}
