// Package storage provides a filesystem photo bucket for single-node
// deployments and local development.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// LocalBucket stores objects under <root>/<bucket>/<object path>.
type LocalBucket struct {
	root    string
	name    string
	baseURL string
}

// NewLocalBucket creates the bucket directory if needed.
func NewLocalBucket(root, name, baseURL string) (*LocalBucket, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bucket directory: %w", err)
	}
	return &LocalBucket{root: root, name: name, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes r to the object path. Partially written files are removed.
func (b *LocalBucket) Upload(ctx context.Context, objectPath, _ string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := b.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("creating object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("writing object: %w", err)
	}
	return f.Close()
}

func (b *LocalBucket) PublicURL(objectPath string) string {
	return b.baseURL + "/" + b.name + "/" + strings.TrimLeft(objectPath, "/")
}

// Open returns the object and a content type sniffed from its first bytes.
func (b *LocalBucket) Open(ctx context.Context, objectPath string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	full, err := b.resolve(objectPath)
	if err != nil {
		return nil, "", err
	}
	mt, err := mimetype.DetectFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrPhotoNotFound, objectPath)
		}
		return nil, "", fmt.Errorf("reading object: %w", err)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, "", fmt.Errorf("opening object: %w", err)
	}
	return f, mt.String(), nil
}

// resolve maps an object path into the bucket directory, rejecting traversal.
func (b *LocalBucket) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", fmt.Errorf("%w: empty object path", domain.ErrPhotoNotFound)
	}
	return filepath.Join(b.root, b.name, filepath.FromSlash(clean)), nil
}
