// Package storage uploads project images to an object store and returns public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/apperr"
)

const (
	MaxImageSize  = 5 * 1024 * 1024
	ProjectFolder = "projects"

	// MaxRequestBody caps a project form: one full-size image plus the text fields.
	MaxRequestBody = MaxImageSize + 1<<20
)

// Store is an object store addressed by slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// File is an uploaded file as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func FromFileHeader(header *multipart.FileHeader) File {
	return File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

func FromBytes(name, contentType string, body []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		},
	}
}

type Result struct {
	URL string
	Key string
}

type Uploader struct {
	store  Store
	folder string
	newID  func() string
}

func NewUploader(store Store) *Uploader {
	return &Uploader{
		store:  store,
		folder: ProjectFolder,
		newID:  uuid.NewString,
	}
}

// Validate checks the declared type and size without reading the body.
func Validate(file File) error {
	if !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return apperr.Validation("Only image files are allowed")
	}

	if file.Size > MaxImageSize {
		return apperr.Validation("Image must be 5MB or smaller")
	}

	return nil
}

func (u *Uploader) Upload(ctx context.Context, file File) (Result, error) {
	if err := Validate(file); err != nil {
		return Result{}, err
	}

	reader, err := file.Open()

	if err != nil {
		return Result{}, apperr.Upload(fmt.Errorf("open upload: %w", err))
	}

	defer reader.Close()

	body, err := io.ReadAll(io.LimitReader(reader, MaxImageSize+1))

	if err != nil {
		return Result{}, apperr.Upload(fmt.Errorf("read upload: %w", err))
	}

	if len(body) > MaxImageSize {
		return Result{}, apperr.Validation("Image must be 5MB or smaller")
	}

	key := u.folder + "/" + u.newID() + strings.ToLower(filepath.Ext(file.Name))

	if err := u.store.Put(ctx, key, body, file.ContentType); err != nil {
		return Result{}, apperr.Upload(err)
	}

	return Result{URL: u.store.PublicURL(key), Key: key}, nil
}

func (u *Uploader) Remove(ctx context.Context, key string) error {
	return u.store.Delete(ctx, key)
}
