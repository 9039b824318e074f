package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps objects in a Supabase Storage bucket using the service key.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseStore takes the project URL, e.g. https://xyz.supabase.co.
func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	endpoint := strings.TrimSuffix(projectURL, "/") + "/storage/v1"

	return &SupabaseStore{
		client: storage_go.NewClient(endpoint, serviceKey, map[string]string{"apikey": serviceKey}),
		bucket: bucket,
	}
}

func (s *SupabaseStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("Upload failed: %w", err)
	}

	upsert := false

	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(body), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})

	if err != nil {
		return fmt.Errorf("Upload failed: %w", err)
	}

	return nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	return s.client.GetPublicUrl(s.bucket, key).SignedURL
}

func (s *SupabaseStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("Delete failed: %w", err)
	}

	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("Delete failed: %w", err)
	}

	return nil
}
