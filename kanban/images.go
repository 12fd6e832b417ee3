package kanban

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// ListImages returns the site gallery with signed download URLs. The gallery
// is a handful of cover photos, so a prefix scan is fine here where it would
// not be anywhere else.
func (s *Service) ListImages(ctx context.Context) ([]Image, error) {
	items, err := s.store.ScanPrefix(ctx, keys.ImagePrefix)
	if err != nil {
		return nil, err
	}
	images := make([]Image, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &images); err != nil {
		return nil, err
	}
	err = fanOut(len(images), func(i int) error {
		url, err := s.signer.DownloadURL(ctx, images[i].S3Key)
		if err != nil {
			return err
		}
		images[i].URL = url
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// NewImageInput describes one incoming gallery image.
type NewImageInput struct {
	Description string
	ContentType string
}

// ImageUpload pairs new image metadata with its presigned upload URL.
type ImageUpload struct {
	Image
	UploadURL string `json:"uploadUrl"`
}

// ReplaceImages swaps the whole gallery: existing metadata and objects are
// removed, then fresh metadata is written and upload URLs issued. The
// delete-then-write sequence is not atomic; a crash in between leaves an
// empty gallery, never a mixed one.
func (s *Service) ReplaceImages(ctx context.Context, ins []NewImageInput) ([]ImageUpload, error) {
	existing, err := s.ListImages(ctx)
	if err != nil {
		return nil, err
	}
	oldKeys := make([]keys.Key, 0, len(existing))
	for _, img := range existing {
		oldKeys = append(oldKeys, keys.Image(img.ID))
		if err := s.signer.Remove(ctx, img.S3Key); err != nil {
			s.logger.Warn("orphaned gallery object",
				zap.String("s3Key", img.S3Key),
				zap.Error(err),
			)
		}
	}
	if err := s.store.BatchDelete(ctx, oldKeys); err != nil {
		return nil, err
	}

	now := s.timestamp()
	uploads := make([]ImageUpload, 0, len(ins))
	items := make([]store.Item, 0, len(ins))
	for _, in := range ins {
		id := s.newID()
		s3Key := fmt.Sprintf("images/%s.%s", id, contentTypeExt(in.ContentType))
		k := keys.Image(id)
		img := Image{
			PK:          k.PK,
			SK:          k.SK,
			ID:          id,
			S3Key:       s3Key,
			ContentType: in.ContentType,
			Description: in.Description,
			EntityType:  TypeImage,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		item, err := attributevalue.MarshalMap(img)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		uploadURL, err := s.signer.UploadURL(ctx, s3Key, in.ContentType)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, ImageUpload{Image: img, UploadURL: uploadURL})
	}
	if err := s.store.BatchPut(ctx, items); err != nil {
		return nil, err
	}
	return uploads, nil
}

// contentTypeExt maps "image/png" to "png". Unrecognizable types get "bin".
func contentTypeExt(contentType string) string {
	if i := strings.Index(contentType, "/"); i >= 0 && i < len(contentType)-1 {
		return contentType[i+1:]
	}
	return "bin"
}
