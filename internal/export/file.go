package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

// FileSink writes every item payload to <dir>/<collection>/<uid>. Names are
// path-escaped.
type FileSink struct {
	dir string
}

// NewFileSink creates the root directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, errors.New("file sink requires a directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Name() string {
	return SinkFile
}

// Put replaces the exported file atomically through a temporary file in the
// same directory.
func (s *FileSink) Put(ctx context.Context, item models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(item.CollectionID, item.UID)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create collection directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(item.Payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", item.UID, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", item.UID, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", item.UID, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", item.UID, err)
	}

	return nil
}

func (s *FileSink) Delete(ctx context.Context, collectionID, uid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(collectionID, uid)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", uid, err)
	}

	return nil
}

func (s *FileSink) path(collectionID, uid string) (string, error) {
	collection := url.PathEscape(collectionID)
	name := url.PathEscape(uid)
	if err := checkName(collection); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}

	return filepath.Join(s.dir, collection, name), nil
}
