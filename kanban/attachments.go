package kanban

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// UploadTicket is everything a client needs to upload one attachment
// directly to blob storage and then register its metadata.
type UploadTicket struct {
	UploadURL   string `json:"uploadUrl"`
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	S3Key       string `json:"s3Key"`
	ContentType string `json:"contentType"`
}

// NewUploadURL mints an attachment id and S3 key and returns a presigned PUT
// URL. No metadata is written yet; that happens in CreateAttachment once the
// client finishes the upload.
func (s *Service) NewUploadURL(ctx context.Context, fileName, contentType string) (*UploadTicket, error) {
	fileID := s.newID()
	s3Key := fmt.Sprintf("attachments/%s%s", fileID, fileExt(fileName))

	uploadURL, err := s.signer.UploadURL(ctx, s3Key, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{
		UploadURL:   uploadURL,
		FileID:      fileID,
		FileName:    fileName,
		S3Key:       s3Key,
		ContentType: contentType,
	}, nil
}

// CreateAttachmentInput registers an uploaded object as a task attachment.
// ID is optional; when empty a fresh one is minted.
type CreateAttachmentInput struct {
	TaskID      string
	ID          string
	FileName    string
	S3Key       string
	ContentType string
	Size        int64
}

// CreateAttachment writes the metadata item and returns it with a signed
// download URL.
func (s *Service) CreateAttachment(ctx context.Context, in CreateAttachmentInput) (*Attachment, error) {
	id := in.ID
	if id == "" {
		id = s.newID()
	}
	now := s.timestamp()
	k := keys.Attachment(in.TaskID, id)
	att := &Attachment{
		PK:          k.PK,
		SK:          k.SK,
		ID:          id,
		TaskID:      in.TaskID,
		FileName:    in.FileName,
		S3Key:       in.S3Key,
		ContentType: in.ContentType,
		Size:        in.Size,
		EntityType:  TypeAttachment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.putRecord(ctx, att); err != nil {
		return nil, err
	}
	url, err := s.signer.DownloadURL(ctx, att.S3Key)
	if err != nil {
		return nil, err
	}
	att.URL = url
	return att, nil
}

// GetTaskAttachments lists a task's attachments, each with a signed download
// URL. Signing is local work but still per-item; done concurrently.
func (s *Service) GetTaskAttachments(ctx context.Context, taskID string) ([]Attachment, error) {
	items, err := s.store.Query(ctx, store.QueryInput{
		KeyCondition: "pk = :pk AND begins_with(sk, :prefix)",
		Values: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: keys.TaskRef(taskID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.AttachmentPrefix},
		},
	})
	if err != nil {
		return nil, err
	}
	atts := make([]Attachment, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &atts); err != nil {
		return nil, err
	}
	err = fanOut(len(atts), func(i int) error {
		url, err := s.signer.DownloadURL(ctx, atts[i].S3Key)
		if err != nil {
			return err
		}
		atts[i].URL = url
		return nil
	})
	if err != nil {
		return nil, err
	}
	return atts, nil
}

// DeleteAttachment removes the metadata item and then the stored object.
// Object removal is best-effort: a leaked blob costs storage, a missing
// metadata item costs correctness.
func (s *Service) DeleteAttachment(ctx context.Context, taskID, attachmentID string) error {
	var att Attachment
	if err := s.getRecord(ctx, keys.Attachment(taskID, attachmentID), &att); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, keys.Attachment(taskID, attachmentID)); err != nil {
		return err
	}
	if err := s.signer.Remove(ctx, att.S3Key); err != nil {
		s.logger.Warn("orphaned attachment object",
			zap.String("s3Key", att.S3Key),
			zap.Error(err),
		)
	}
	return nil
}

// fileExt returns the dot-prefixed extension of a file name, or "" when the
// name has none.
func fileExt(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i > 0 && i < len(fileName)-1 {
		return fileName[i:]
	}
	return ""
}
