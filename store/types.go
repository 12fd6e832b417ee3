package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue

// DynamoAPI is the subset of the DynamoDB client the store uses. The real
// *dynamodb.Client satisfies it; tests use an in-memory fake.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Patch maps attribute names to their new values for a partial update.
// Only named attributes change; updatedAt is always refreshed by the store.
// A nil value removes the attribute from the item. Other values are
// marshaled with attributevalue, so plain Go values work.
type Patch map[string]interface{}

// QueryInput defines parameters for querying items.
type QueryInput struct {
	// IndexName is the optional GSI to query.
	IndexName string

	// KeyCondition is the DynamoDB key condition expression.
	KeyCondition string

	// Filter is an optional non-key filter applied after the key condition.
	Filter string

	// Names maps expression attribute name placeholders.
	Names map[string]string

	// Values maps expression attribute value placeholders.
	Values map[string]types.AttributeValue
}
