package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// PhotoBucket implements ports.PhotoStore on a GridFS bucket. Object paths
// are stored as GridFS file names.
type PhotoBucket struct {
	db      *mongo.Database
	name    string
	baseURL string
}

// NewPhotoBucket serves objects under baseURL/<name>/<path>.
func NewPhotoBucket(db *mongo.Database, name, baseURL string) *PhotoBucket {
	return &PhotoBucket{db: db, name: name, baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *PhotoBucket) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(b.db, options.GridFSBucket().SetName(b.name))
}

// Upload stores r under path. A deadline on ctx bounds the write.
func (b *PhotoBucket) Upload(ctx context.Context, path, contentType string, r io.Reader) error {
	bucket, err := b.bucket()
	if err != nil {
		return fmt.Errorf("open bucket %s: %w", b.name, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "content_type", Value: contentType},
		{Key: "uploaded_at", Value: time.Now().UTC()},
	})
	if _, err := bucket.UploadFromStream(path, r, opts); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

func (b *PhotoBucket) PublicURL(path string) string {
	return b.baseURL + "/" + b.name + "/" + strings.TrimLeft(path, "/")
}

// Open streams the newest revision stored under path.
func (b *PhotoBucket) Open(ctx context.Context, path string) (io.ReadCloser, string, error) {
	bucket, err := b.bucket()
	if err != nil {
		return nil, "", fmt.Errorf("open bucket %s: %w", b.name, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, "", err
		}
	}

	stream, err := bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrPhotoNotFound, path)
		}
		return nil, "", fmt.Errorf("download %s: %w", path, err)
	}

	contentType := "application/octet-stream"
	if meta := stream.GetFile().Metadata; meta != nil {
		if ct, ok := meta.Lookup("content_type").StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}
	return stream, contentType, nil
}
