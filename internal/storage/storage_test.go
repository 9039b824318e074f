package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/apperr"
)

type recordingStore struct {
	puts map[string][]byte
	err  error
}

func (r *recordingStore) Put(_ context.Context, key string, body []byte, _ string) error {
	if r.err != nil {
		return r.err
	}
	if r.puts == nil {
		r.puts = map[string][]byte{}
	}
	r.puts[key] = body
	return nil
}

func (r *recordingStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (r *recordingStore) Delete(_ context.Context, key string) error {
	delete(r.puts, key)
	return nil
}

func TestUploadStoresImageUnderProjectsFolder(t *testing.T) {
	store := &recordingStore{}
	uploader := NewUploader(store)
	uploader.newID = func() string { return "0b0e7a1c" }

	result, err := uploader.Upload(context.Background(), FromBytes("Cover.PNG", "image/png", []byte("png-bytes")))

	require.NoError(t, err)
	assert.Equal(t, "projects/0b0e7a1c.png", result.Key)
	assert.Equal(t, "https://cdn.example.com/projects/0b0e7a1c.png", result.URL)
	assert.Equal(t, []byte("png-bytes"), store.puts[result.Key])
}

func TestUploadRejectsNonImageBeforeReading(t *testing.T) {
	store := &recordingStore{}
	uploader := NewUploader(store)

	opened := false
	file := File{
		Name:        "notes.pdf",
		ContentType: "application/pdf",
		Size:        10,
		Open: func() (io.ReadCloser, error) {
			opened = true
			return io.NopCloser(strings.NewReader("pdf")), nil
		},
	}

	_, err := uploader.Upload(context.Background(), file)

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.False(t, opened)
	assert.Empty(t, store.puts)
}

func TestUploadRejectsOversizedImage(t *testing.T) {
	store := &recordingStore{}
	uploader := NewUploader(store)

	declared := FromBytes("big.jpg", "image/jpeg", make([]byte, MaxImageSize+1))
	_, err := uploader.Upload(context.Background(), declared)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// The declared size lies; the body is still capped.
	lying := declared
	lying.Size = 1
	_, err = uploader.Upload(context.Background(), lying)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Empty(t, store.puts)
}

func TestUploadStoreFailureIsUploadError(t *testing.T) {
	uploader := NewUploader(&recordingStore{err: errors.New("bucket quota exceeded")})

	_, err := uploader.Upload(context.Background(), FromBytes("a.png", "image/png", []byte("x")))

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpload))
	assert.Contains(t, err.Error(), "bucket quota exceeded")
}

func TestDiskStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root, "http://localhost:4000/uploads/")
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "projects/a.png", []byte("img"), "image/png"))

	body, err := os.ReadFile(filepath.Join(root, "projects", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), body)
	assert.Equal(t, "http://localhost:4000/uploads/projects/a.png", store.PublicURL("projects/a.png"))

	assert.Error(t, store.Put(context.Background(), "projects/a.png", []byte("again"), "image/png"))

	require.NoError(t, store.Delete(context.Background(), "projects/a.png"))
	require.NoError(t, store.Delete(context.Background(), "projects/a.png"))

	_, err = os.Stat(filepath.Join(root, "projects", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	assert.Error(t, store.Put(context.Background(), "../outside.png", []byte("x"), "image/png"))
	assert.Error(t, store.Delete(context.Background(), "/etc/passwd"))
}

func TestSupabaseStorePut(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotKey string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"Key":"curriculum-image/projects/a.png"}`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL+"/", "service-key", "curriculum-image")

	err := store.Put(context.Background(), "projects/a.png", []byte("img"), "image/png")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/storage/v1/object/curriculum-image/projects/a.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotKey)
	assert.Equal(t, []byte("img"), gotBody)
	assert.Equal(t, server.URL+"/storage/v1/object/public/curriculum-image/projects/a.png", store.PublicURL("projects/a.png"))
}

func TestSupabaseStorePutFailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode":"403","error":"Unauthorized","message":"new row violates row-level security policy"}`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "bad-key", "curriculum-image")

	err := store.Put(context.Background(), "projects/a.png", []byte("img"), "image/png")

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Upload failed"))
}

func TestSupabaseStoreHonorsCanceledContext(t *testing.T) {
	called := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "service-key", "curriculum-image")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "projects/a.png", []byte("img"), "image/png"), context.Canceled)
	assert.ErrorIs(t, store.Delete(ctx, "projects/a.png"), context.Canceled)
	assert.False(t, called)
}

func TestSupabaseStoreDelete(t *testing.T) {
	var gotMethod, gotPath string
	var payload map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "service-key", "curriculum-image")

	require.NoError(t, store.Delete(context.Background(), "projects/a.png"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/curriculum-image", gotPath)
	assert.Equal(t, []string{"projects/a.png"}, payload["prefixes"])
}

func TestFromBytes(t *testing.T) {
	file := FromBytes("a.gif", "image/gif", []byte("gif"))

	reader, err := file.Open()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.ReadFrom(reader)

	assert.Equal(t, int64(3), file.Size)
	assert.Equal(t, "gif", buf.String())
}
