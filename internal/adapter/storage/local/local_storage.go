package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"go.uber.org/zap"
)

const defaultExtension = ".jpg"

// Storage keeps listing images as files in a local directory and maps their
// identifiers to public paths served by the static file route.
type Storage struct {
	dir          string
	publicPrefix string
	allowed      map[string]struct{}
	logger       *logger.Logger
}

// NewStorage builds a Storage over dir. allowedTypes is the comma-separated
// content-type allow-list; entries are trimmed and matched exactly. The
// directory itself is created lazily on first save.
func NewStorage(dir, publicPrefix, allowedTypes string, log *logger.Logger) *Storage {
	allowed := make(map[string]struct{})
	for _, t := range strings.Split(allowedTypes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &Storage{
		dir:          dir,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
		allowed:      allowed,
		logger:       log.Named("LocalStorage"),
	}
}

// Save validates the image and writes it under a generated identifier.
// The identifier is a random UUID plus the extension hinted by originalName,
// never any other part of client input.
func (s *Storage) Save(ctx context.Context, content []byte, contentType, originalName string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: image content is empty", domain.ErrInvalidInput)
	}
	if _, ok := s.allowed[strings.TrimSpace(contentType)]; !ok {
		return "", fmt.Errorf("%w: content type %q is not allowed", domain.ErrInvalidInput, contentType)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("Failed to create upload directory", zap.String("dir", s.dir), zap.Error(err))
		return "", fmt.Errorf("%w: creating upload directory %s: %v", domain.ErrStorage, s.dir, err)
	}

	imageID := uuid.New().String() + extensionOf(originalName)
	path := filepath.Join(s.dir, imageID)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		s.logger.Error("Failed to write image file", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("%w: writing image %s: %v", domain.ErrStorage, imageID, err)
	}

	s.logger.Info("Image stored",
		zap.String("image_id", imageID),
		zap.String("original_filename", originalName),
		zap.Int("size_bytes", len(content)))
	return imageID, nil
}

// Delete removes the stored file. A blank identifier or a missing file is a
// successful no-op; a real I/O failure is logged and reported as a storage
// error the caller may treat as non-fatal.
func (s *Storage) Delete(ctx context.Context, imageID string) error {
	if strings.TrimSpace(imageID) == "" {
		return nil
	}

	path := filepath.Join(s.dir, filepath.Base(imageID))
	err := os.Remove(path)
	if err == nil {
		s.logger.Info("Image deleted", zap.String("image_id", imageID))
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	s.logger.Error("Failed to delete image file", zap.String("path", path), zap.Error(err))
	return fmt.Errorf("%w: deleting image %s: %v", domain.ErrStorage, imageID, err)
}

// URL maps an image identifier to its public path. No I/O is performed.
func (s *Storage) URL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return s.publicPrefix + "/" + imageID
}

func extensionOf(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	if ext == "" || ext == "." {
		return defaultExtension
	}
	return ext
}
