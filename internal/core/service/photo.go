package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// PhotoFolder is the object prefix for customer photos inside the bucket.
const PhotoFolder = "fotos"

// NewPhoto sniffs data and accepts it only when it is an image.
func NewPhoto(filename string, data []byte) (*domain.Photo, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidPhoto
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", domain.ErrInvalidPhoto, mt.String())
	}
	return &domain.Photo{
		Filename:    filename,
		ContentType: mt.String(),
		Data:        data,
	}, nil
}

// PhotoExtension keeps the extension of the picked file, falling back to the
// sniffed image type when the file name has none.
func PhotoExtension(p *domain.Photo) string {
	if ext := strings.TrimPrefix(filepath.Ext(p.Filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if p.ContentType != "" {
		if mt := mimetype.Lookup(p.ContentType); mt != nil && mt.Extension() != "" {
			return strings.TrimPrefix(mt.Extension(), ".")
		}
	}
	return "jpg"
}

// PhotoPath builds fotos/{deliveryId}-{epochMillis}.{ext}.
func PhotoPath(deliveryID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s-%d.%s", PhotoFolder, deliveryID, at.UnixMilli(), ext)
}
