// Package storage keeps uploaded files on local disk or in an S3 bucket and
// turns stored keys back into public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hirehub/core/internal/config"
)

// Backend stores objects under slash-separated keys.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New picks the backend configured by cfg.
func New(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "", config.StorageLocal:
		return NewLocal(cfg.MediaDir(), cfg.Local.BaseURL), nil
	case config.StorageS3:
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ObjectKey builds a collision free key under folder that keeps the
// extension of the uploaded file name.
func ObjectKey(folder, original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return NormalizeKey(folder + "/" + strings.ReplaceAll(uuid.NewString(), "-", "") + ext)
}

// NormalizeKey turns backslashes into slashes and drops leading, repeated
// and dot segments.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	parts := strings.Split(key, "/")
	out := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

func escapeKey(key string) string {
	parts := strings.Split(NormalizeKey(key), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + escapeKey(key)
	}
	if u, err := url.Parse(base); err == nil && u.Scheme != "" {
		u.Path = path.Join("/", u.Path, NormalizeKey(key))
		return u.String()
	}
	return strings.TrimRight(base, "/") + "/" + escapeKey(key)
}

// URLer adapts a Backend to the serializer's file URL resolver.
type URLer struct{ Backend Backend }

func (u URLer) URL(key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return u.Backend.URL(key)
}
