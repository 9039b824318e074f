package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects under a local directory that the router serves at /uploads.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &DiskStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (d *DiskStore) Put(_ context.Context, key string, body []byte, _ string) error {
	path, err := d.path(key)

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("Upload failed: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)

	if err != nil {
		return fmt.Errorf("Upload failed: %w", err)
	}

	if _, err := file.Write(body); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("Upload failed: %w", err)
	}

	return file.Close()
}

func (d *DiskStore) PublicURL(key string) string {
	return d.baseURL + "/" + key
}

func (d *DiskStore) Delete(_ context.Context, key string) error {
	path, err := d.path(key)

	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("Delete failed: %w", err)
	}

	return nil
}

func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))

	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	return filepath.Join(d.root, clean), nil
}
