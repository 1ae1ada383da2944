package adapter

import "context"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaStore uploads user media to hosted blob storage and returns a public
// URL for the stored object.
type MediaStore interface {
	Upload(ctx context.Context, username, filename, contentType string, kind MediaKind, data []byte) (string, error)
}
