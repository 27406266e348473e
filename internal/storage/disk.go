package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wanderlog/backend/pkg/logger"
)

// WebPrefix is the URL prefix under which uploaded files are served.
const WebPrefix = "/uploads"

// DiskStore persists uploaded images under a local directory and tracks
// files that have been written but whose owning record is not yet committed.
// The sweeper skips such pending files, so an upload can never be reaped
// between the file write and the database insert.
type DiskStore struct {
	root string

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "profiles"), 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{
		root:    root,
		pending: make(map[string]struct{}),
	}, nil
}

func (s *DiskStore) Root() string {
	return s.root
}

// Save writes the uploaded file under root/subdir and returns its web path
// ("/uploads/..."). The file is marked pending until Commit or Remove.
func (s *DiskStore) Save(file *multipart.FileHeader, subdir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(file.Filename))
	relative := name
	if subdir != "" {
		relative = filepath.Join(subdir, name)
	}

	target := filepath.Join(s.root, relative)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}

	webPath := WebPrefix + "/" + filepath.ToSlash(relative)

	s.mu.Lock()
	s.pending[webPath] = struct{}{}
	s.mu.Unlock()

	return webPath, nil
}

// Commit releases the pending mark once the owning record has been persisted.
func (s *DiskStore) Commit(webPath string) {
	s.mu.Lock()
	delete(s.pending, webPath)
	s.mu.Unlock()
}

// Remove deletes a stored file and releases its pending mark. Used as the
// compensating action when record creation fails after the file was written.
func (s *DiskStore) Remove(webPath string) error {
	s.Commit(webPath)

	target, err := s.Resolve(webPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DiskStore) IsPending(webPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[webPath]
	return ok
}

// Resolve maps a stored web path back to a path on disk, rejecting anything
// that would escape the upload root.
func (s *DiskStore) Resolve(webPath string) (string, error) {
	relative := strings.TrimPrefix(webPath, WebPrefix+"/")
	if relative == webPath {
		return "", fmt.Errorf("path %q is not under %s", webPath, WebPrefix)
	}

	clean := filepath.Clean(filepath.FromSlash(relative))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid upload path %q", webPath)
	}

	return filepath.Join(s.root, clean), nil
}

// WebPath converts a path on disk under the upload root to its web path.
func (s *DiskStore) WebPath(diskPath string) (string, error) {
	relative, err := filepath.Rel(s.root, diskPath)
	if err != nil || strings.HasPrefix(relative, "..") {
		return "", fmt.Errorf("path %q is outside the upload root", diskPath)
	}
	return WebPrefix + "/" + filepath.ToSlash(relative), nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		logger.Warn("upload_filename_invalid", map[string]interface{}{"filename": name})
		return "upload"
	}
	return strings.ReplaceAll(base, " ", "_")
}
