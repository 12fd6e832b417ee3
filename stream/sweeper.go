// Package stream provides the DynamoDB Streams handler that sweeps up
// records a cascade delete can leave behind.
package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// BlobRemover deletes stored file objects. *blob.Signer satisfies it.
type BlobRemover interface {
	Remove(ctx context.Context, key string) error
}

// Sweeper reacts to REMOVE stream records. The API path already deletes a
// board's edges and partition contents transactionally where it can; the
// sweeper is the idempotent backstop that catches edges or attachment
// records a partial failure left behind.
type Sweeper struct {
	store  *store.Store
	blobs  BlobRemover
	logger *zap.Logger
}

// NewSweeper creates a Sweeper. blobs may be nil, in which case orphaned
// file objects are left to a bucket lifecycle rule.
func NewSweeper(s *store.Store, blobs BlobRemover, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		store:  s,
		blobs:  blobs,
		logger: logger,
	}
}

// Handle processes a batch of stream records. A failed record fails the
// batch so the Lambda runtime retries it.
func (s *Sweeper) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := s.processRecord(ctx, record); err != nil {
			s.logger.Error("failed to process stream record",
				zap.String("eventId", record.EventID),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (s *Sweeper) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	pk := getStringAttr(record.Change.Keys, "pk")
	sk := getStringAttr(record.Change.Keys, "sk")

	switch {
	case strings.HasPrefix(pk, keys.BoardPrefix) && sk == keys.Metadata:
		return s.sweepBoardEdges(ctx, keys.Split(pk, keys.BoardPrefix))
	case strings.HasPrefix(pk, keys.BoardPrefix) && strings.HasPrefix(sk, keys.TaskPrefix):
		return s.sweepTaskAttachments(ctx, keys.Split(sk, keys.TaskPrefix))
	case strings.HasPrefix(sk, keys.AttachmentPrefix):
		return s.sweepBlob(ctx, record.Change.OldImage)
	}
	return nil
}

// sweepBoardEdges deletes membership edges that still point at a removed
// board. Normally the API deletes them in the same transaction as the board
// item, so this usually finds nothing.
func (s *Sweeper) sweepBoardEdges(ctx context.Context, boardID string) error {
	edges, err := s.store.Query(ctx, store.QueryInput{
		IndexName:    keys.UserBoardIndex,
		KeyCondition: "sk = :sk AND begins_with(pk, :prefix)",
		Values: map[string]types.AttributeValue{
			":sk":     &types.AttributeValueMemberS{Value: keys.BoardRef(boardID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.UserPrefix},
		},
	})
	if err != nil {
		return fmt.Errorf("query board edges: %w", err)
	}
	if len(edges) == 0 {
		return nil
	}

	ks := make([]keys.Key, 0, len(edges))
	for _, edge := range edges {
		k, err := itemKey(edge)
		if err != nil {
			return err
		}
		ks = append(ks, k)
	}
	if err := s.store.BatchDelete(ctx, ks); err != nil {
		return fmt.Errorf("delete board edges: %w", err)
	}

	s.logger.Info("swept orphaned board edges",
		zap.String("boardId", boardID),
		zap.Int("count", len(ks)),
	)
	return nil
}

// sweepTaskAttachments deletes a removed task's attachment metadata. The
// attachment REMOVE records this generates then trigger sweepBlob for each
// stored object.
func (s *Sweeper) sweepTaskAttachments(ctx context.Context, taskID string) error {
	items, err := s.store.Query(ctx, store.QueryInput{
		KeyCondition: "pk = :pk AND begins_with(sk, :prefix)",
		Values: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: keys.TaskRef(taskID)},
			":prefix": &types.AttributeValueMemberS{Value: keys.AttachmentPrefix},
		},
	})
	if err != nil {
		return fmt.Errorf("query task attachments: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	ks := make([]keys.Key, 0, len(items))
	for _, item := range items {
		k, err := itemKey(item)
		if err != nil {
			return err
		}
		ks = append(ks, k)
	}
	if err := s.store.BatchDelete(ctx, ks); err != nil {
		return fmt.Errorf("delete task attachments: %w", err)
	}

	s.logger.Info("swept orphaned attachments",
		zap.String("taskId", taskID),
		zap.Int("count", len(ks)),
	)
	return nil
}

// sweepBlob deletes the stored object behind a removed attachment item.
func (s *Sweeper) sweepBlob(ctx context.Context, oldImage map[string]events.DynamoDBAttributeValue) error {
	if s.blobs == nil {
		return nil
	}
	s3Key := getStringAttr(oldImage, "s3Key")
	if s3Key == "" {
		return nil
	}
	if err := s.blobs.Remove(ctx, s3Key); err != nil {
		// Retrying the whole batch for a missing object is not worth it.
		s.logger.Warn("failed to remove stored object",
			zap.String("s3Key", s3Key),
			zap.Error(err),
		)
	}
	return nil
}

func itemKey(item store.Item) (keys.Key, error) {
	pk, ok := item["pk"].(*types.AttributeValueMemberS)
	if !ok {
		return keys.Key{}, fmt.Errorf("corkboard: item missing pk")
	}
	sk, ok := item["sk"].(*types.AttributeValueMemberS)
	if !ok {
		return keys.Key{}, fmt.Errorf("corkboard: item missing sk")
	}
	return keys.Key{PK: pk.Value, SK: sk.Value}, nil
}

func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
