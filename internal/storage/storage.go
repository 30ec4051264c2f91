package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/config"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

// Storage keeps the original uploads next to their process records.
type Storage interface {
	// Upload stores data under key and returns the object URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

var ErrInvalidFileName = errors.New("invalid file name")

// New picks the backend named by cfg.ObjectStore.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.ObjectStore {
	case "minio":
		return NewMinioStorage(ctx, cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported object store %q", cfg.ObjectStore)
	}
}

// SanitizeFileName flattens path separators and rejects traversal.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// ObjectKey builds processes/{uuid}/{sanitized name}.
func ObjectKey(fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join("processes", utils.GenerateID(), name), nil
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
