// Package blob issues time-limited signed URLs for attachment and image
// content stored in S3. Only locators and metadata live in DynamoDB; the
// bytes never pass through this server.
package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultURLTTL is the validity window for signed URLs. Long enough for a
// browser upload or download, short enough that links are not durable.
const DefaultURLTTL = time.Hour

// PresignAPI is the subset of the S3 presign client the signer uses.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectAPI is the subset of the S3 client used for object removal.
type ObjectAPI interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Signer issues presigned URLs for one bucket.
type Signer struct {
	presign PresignAPI
	objects ObjectAPI
	bucket  string
	ttl     time.Duration
}

// NewSigner creates a Signer. A zero ttl falls back to DefaultURLTTL.
func NewSigner(presign PresignAPI, objects ObjectAPI, bucket string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Signer{
		presign: presign,
		objects: objects,
		bucket:  bucket,
		ttl:     ttl,
	}
}

// UploadURL returns a presigned PUT URL for writing an object directly.
func (s *Signer) UploadURL(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("corkboard: presign upload %s: %w", key, err)
	}
	return req.URL, nil
}

// DownloadURL returns a presigned GET URL for reading an object.
func (s *Signer) DownloadURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("corkboard: presign download %s: %w", key, err)
	}
	return req.URL, nil
}

// Remove deletes an object. Idempotent: S3 reports success for absent keys.
func (s *Signer) Remove(ctx context.Context, key string) error {
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("corkboard: delete object %s: %w", key, err)
	}
	return nil
}
