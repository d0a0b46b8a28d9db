// Package file stores uploaded binary objects such as return evidence images.
// S3Storage targets Amazon S3 and compatible services; LocalStorage writes to a
// directory for local runs.
package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// Upload is an incoming object before it is stored.
type Upload struct {
	Filename    string
	ContentType string // detected from content when empty
	Size        int64
	Body        io.Reader
}

// Object describes a stored object.
type Object struct {
	Key         string `json:"key" bson:"key"`
	URL         string `json:"url" bson:"url"`
	Size        int64  `json:"size" bson:"size"`
	ContentType string `json:"content_type" bson:"content_type"`
}

// Storage is the contract shared by S3Storage and LocalStorage.
type Storage interface {
	Put(ctx context.Context, key string, up Upload) (Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsImage reports whether the content type is an accepted raster image.
func IsImage(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	return imageMIMETypes[strings.TrimSpace(strings.ToLower(ct))]
}

// Sniff reads the head of the body to detect its content type and returns a
// reader that still yields the full content.
func Sniff(body io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), body), nil
}

// PrepareImage validates an image upload against the size limit and content
// sniffing, filling in ContentType. The returned upload must be used instead of up.
func PrepareImage(up Upload, maxBytes int64) (Upload, error) {
	if up.Body == nil {
		return Upload{}, ErrEmptyUpload
	}
	if maxBytes > 0 && up.Size > maxBytes {
		return Upload{}, ErrFileTooLarge
	}

	ct, body, err := Sniff(up.Body)
	if err != nil {
		return Upload{}, errors.Join(ErrFailedToReadFile, err)
	}
	if !IsImage(ct) {
		return Upload{}, ErrMIMETypeNotAllowed
	}

	up.ContentType = ct
	up.Body = body
	return up, nil
}

// SanitizeFilename strips path components and NUL bytes.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}

// ExtensionFor returns a file extension for a supported image content type.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// cleanKey normalizes an object key and rejects traversal.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
	if key == "" || key == "." {
		return "", ErrInvalidPath
	}
	return key, nil
}
