// File: internal/infra/adapters/media/supabase_store.go
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/infra/metrics"
)

var _ adapter.MediaStore = (*SupabaseStore)(nil)

// SupabaseStore uploads chat media to Supabase storage buckets and returns
// the public object URL. Keys are namespaced per user with a ULID so
// repeated uploads of the same filename never collide.
type SupabaseStore struct {
	base        string
	serviceKey  string
	imageBucket string
	videoBucket string
	client      *http.Client
}

func NewSupabaseStore(baseURL, serviceKey, imageBucket, videoBucket string) (*SupabaseStore, error) {
	if baseURL == "" {
		return nil, errors.New("media: empty base url")
	}
	if serviceKey == "" {
		return nil, errors.New("media: empty service key")
	}
	return &SupabaseStore{
		base:        strings.TrimRight(baseURL, "/"),
		serviceKey:  serviceKey,
		imageBucket: imageBucket,
		videoBucket: videoBucket,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *SupabaseStore) bucketFor(kind adapter.MediaKind) string {
	if kind == adapter.MediaVideo {
		return s.videoBucket
	}
	return s.imageBucket
}

// objectKey builds "<user>/<ulid><ext>" from the original filename. Only the
// extension of the client-supplied name survives.
func objectKey(username, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return sanitize(username) + "/" + strings.ToLower(ulid.Make().String()) + ext
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}

func (s *SupabaseStore) Upload(ctx context.Context, username, filename, contentType string, kind adapter.MediaKind, data []byte) (string, error) {
	bucket := s.bucketFor(kind)
	key := objectKey(username, filename)

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.base, bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		metrics.MediaUpload(string(kind), false)
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.MediaUpload(string(kind), false)
		return "", fmt.Errorf("media: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.MediaUpload(string(kind), false)
		return "", fmt.Errorf("media: upload http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	metrics.MediaUpload(string(kind), true)
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.base, bucket, key), nil
}
