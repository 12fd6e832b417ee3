package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/internal/keys"
)

// batchMax is the DynamoDB BatchWriteItem per-call limit.
const batchMax = 25

// transactMax is the DynamoDB TransactWriteItems per-call limit.
const transactMax = 100

// Store provides entity-agnostic item operations over the single table.
type Store struct {
	client DynamoAPI
	config Config
	logger *zap.Logger
}

// New creates a new Store instance.
func New(client DynamoAPI, config Config, logger *zap.Logger) *Store {
	config.validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client: client,
		config: config,
		logger: logger,
	}
}

// Table returns the backing table name.
func (s *Store) Table() string {
	return s.config.Table
}

// Put writes an item unconditionally. Last writer wins; there is no
// conditional guard. Returns the written item.
func (s *Store) Put(ctx context.Context, item Item) (Item, error) {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.Table),
		Item:      item,
	})
	if err != nil {
		return nil, s.opErr("PutItem", err)
	}
	return item, nil
}

// Get performs a point read. Absence is reported as ErrNotFound, never as a
// raw client error.
func (s *Store) Get(ctx context.Context, key keys.Key) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.Table),
		Key:       marshalKey(key),
	})
	if err != nil {
		return nil, s.opErr("GetItem", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	return out.Item, nil
}

// Query runs a key-condition query, following pagination to the end.
// Results are unordered unless the caller sorts.
func (s *Store) Query(ctx context.Context, input QueryInput) ([]Item, error) {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.Table),
		KeyConditionExpression:    aws.String(input.KeyCondition),
		ExpressionAttributeValues: input.Values,
	}
	if len(input.Names) > 0 {
		in.ExpressionAttributeNames = input.Names
	}
	if input.Filter != "" {
		in.FilterExpression = aws.String(input.Filter)
	}
	if input.IndexName != "" {
		in.IndexName = aws.String(input.IndexName)
	}

	var items []Item
	paginator := dynamodb.NewQueryPaginator(s.client, in)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.opErr("Query", err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// ScanPrefix returns every item whose pk starts with the given prefix. Used
// only for the image gallery, which is a handful of items; everything else
// goes through Query.
func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([]Item, error) {
	in := &dynamodb.ScanInput{
		TableName:        aws.String(s.config.Table),
		FilterExpression: aws.String("begins_with(pk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	}

	var items []Item
	paginator := dynamodb.NewScanPaginator(s.client, in)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.opErr("Scan", err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// Update applies a partial-attribute patch and returns the full post-update
// item. A nil patch value removes the attribute instead of setting it;
// writing an empty string would poison any index keyed on that attribute.
// The target must exist: a missing key yields ErrNotFound rather than
// an upserted fragment. updatedAt is always refreshed.
func (s *Store) Update(ctx context.Context, key keys.Key, patch Patch) (Item, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	setClauses := []string{"#updatedAt = :updatedAt"}
	exprNames := map[string]string{"#updatedAt": "updatedAt"}
	exprValues := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{Value: now},
	}

	// Deterministic placeholder order keeps expressions reproducible.
	names := make([]string, 0, len(patch))
	for name := range patch {
		if name == "pk" || name == "sk" || name == "updatedAt" || name == "createdAt" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var removeClauses []string
	for i, name := range names {
		nameKey := fmt.Sprintf("#attr%d", i)
		exprNames[nameKey] = name
		if patch[name] == nil {
			removeClauses = append(removeClauses, nameKey)
			continue
		}
		av, err := attributevalue.Marshal(patch[name])
		if err != nil {
			return nil, fmt.Errorf("corkboard: marshal patch attribute %q: %w", name, err)
		}
		valueKey := fmt.Sprintf(":val%d", i)
		exprValues[valueKey] = av
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	expr := "SET " + joinStrings(setClauses, ", ")
	if len(removeClauses) > 0 {
		expr += " REMOVE " + joinStrings(removeClauses, ", ")
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.Table),
		Key:                       marshalKey(key),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(pk)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrNotFound
		}
		return nil, s.opErr("UpdateItem", err)
	}
	return out.Attributes, nil
}

// Delete removes an item by key. Idempotent: deleting an absent item is not
// an error.
func (s *Store) Delete(ctx context.Context, key keys.Key) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.Table),
		Key:       marshalKey(key),
	})
	if err != nil {
		return s.opErr("DeleteItem", err)
	}
	return nil
}

// BatchPut writes items in chunks of the per-call batch limit. Best-effort:
// unprocessed items are not retried, and a failed chunk fails the call.
func (s *Store) BatchPut(ctx context.Context, items []Item) error {
	for start := 0; start < len(items); start += batchMax {
		end := start + batchMax
		if end > len(items) {
			end = len(items)
		}
		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}
		if err := s.batchWrite(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

// BatchDelete removes items by key in chunks of the per-call batch limit.
// Same best-effort semantics as BatchPut.
func (s *Store) BatchDelete(ctx context.Context, ks []keys.Key) error {
	for start := 0; start < len(ks); start += batchMax {
		end := start + batchMax
		if end > len(ks) {
			end = len(ks)
		}
		requests := make([]types.WriteRequest, 0, end-start)
		for _, k := range ks[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: marshalKey(k)},
			})
		}
		if err := s.batchWrite(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			s.config.Table: requests,
		},
	})
	if err != nil {
		return s.opErr("BatchWriteItem", err)
	}
	return nil
}

// TransactWrite commits the given puts and key deletes in one all-or-nothing
// transaction. Callers must keep the combined count within CanTransact.
func (s *Store) TransactWrite(ctx context.Context, puts []Item, deletes []keys.Key) error {
	items := make([]types.TransactWriteItem, 0, len(puts)+len(deletes))
	for _, item := range puts {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.config.Table),
				Item:      item,
			},
		})
	}
	for _, k := range deletes {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.config.Table),
				Key:       marshalKey(k),
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return s.opErr("TransactWriteItems", err)
	}
	return nil
}

// CanTransact reports whether n writes fit a single transaction.
func CanTransact(n int) bool {
	return n <= transactMax
}

// opErr wraps a client error with operation and table context, and logs it.
func (s *Store) opErr(op string, err error) error {
	s.logger.Error("dynamodb call failed",
		zap.String("operation", op),
		zap.String("table", s.config.Table),
		zap.Error(err),
	)
	return fmt.Errorf("corkboard: %s on %s: %w", op, s.config.Table, err)
}

// marshalKey converts a keys.Key to raw attribute values.
func marshalKey(k keys.Key) Item {
	return Item{
		"pk": &types.AttributeValueMemberS{Value: k.PK},
		"sk": &types.AttributeValueMemberS{Value: k.SK},
	}
}

// joinStrings joins strings with a separator (avoiding strings package import).
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for _, s := range strs[1:] {
		result += sep + s
	}
	return result
}
