package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects under a base directory.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage stores files under baseDir and links them under baseURL.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &LocalStorage{
		baseDir: abs,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
	}, nil
}

func (s *LocalStorage) Put(ctx context.Context, key string, up Upload) (Object, error) {
	key, err := cleanKey(key)
	if err != nil {
		return Object{}, err
	}
	if up.Body == nil {
		return Object{}, ErrEmptyUpload
	}
	if err := ctx.Err(); err != nil {
		return Object{}, errors.Join(ErrOperationCanceled, err)
	}

	dst := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, errors.Join(ErrFailedToWriteFile, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return Object{}, errors.Join(ErrFailedToWriteFile, err)
	}
	written, copyErr := io.Copy(f, up.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst)
		return Object{}, errors.Join(ErrFailedToWriteFile, err)
	}

	return Object{
		Key:         key,
		URL:         s.URL(key),
		Size:        written,
		ContentType: up.ContentType,
	}, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key))); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}
		return errors.Join(ErrFailedToDeleteFile, err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}
