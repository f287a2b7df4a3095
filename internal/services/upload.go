// ===============================
// internal/services/upload.go
// ===============================

package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"podcastbe/internal/storage"

	"github.com/google/uuid"
)

type UploadService struct {
	store storage.Store
}

func NewUploadService(store storage.Store) *UploadService {
	return &UploadService{store: store}
}

// UploadAudio stores an uploaded audio payload under a unique key and returns
// the URL to record on the episode. Keys are never reused, so stored assets
// are write-once.
func (s *UploadService) UploadAudio(ctx context.Context, file io.Reader, filename string) (string, error) {
	ext := getFileExtension(filename)
	key := fmt.Sprintf("episodes/%d_%s%s", time.Now().Unix(), uuid.New().String()[:8], ext)

	contentType := audioContentType(ext)

	if err := s.store.Save(ctx, key, file, contentType); err != nil {
		return "", err
	}

	return s.store.URL(key), nil
}

func getFileExtension(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return strings.ToLower(filename[i:])
		}
	}
	return ""
}

func audioContentType(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}
