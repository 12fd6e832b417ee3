// Package dynamofake is an in-memory stand-in for DynamoDB used in tests.
//
// It interprets only the expression shapes the store emits: key conditions
// built from `attr = :val` and `begins_with(attr, :val)` joined by AND,
// equality filters, SET/REMOVE update expressions with name placeholders,
// and the attribute_exists(pk) condition. Secondary indexes need no modeling
// because every index projects ALL; an index query is just a query against
// different attributes.
package dynamofake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is an in-memory DynamoDB. The zero value is not usable; call New.
type Client struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

// New creates an empty in-memory table.
func New() *Client {
	return &Client{items: make(map[string]map[string]types.AttributeValue)}
}

// Len returns the number of stored items.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func itemKey(item map[string]types.AttributeValue) string {
	return stringAttr(item, "pk") + "\x00" + stringAttr(item, "sk")
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// PutItem stores an item, overwriting any existing one with the same key.
func (c *Client) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[itemKey(in.Item)] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns the item for a key, or a nil Item when absent.
func (c *Client) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[itemKey(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// DeleteItem removes an item; absent keys are a no-op.
func (c *Client) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, itemKey(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query evaluates the key condition and optional filter against all items.
func (c *Client) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	cond, err := parseCondition(*in.KeyConditionExpression, in.ExpressionAttributeNames)
	if err != nil {
		return nil, err
	}
	var filter []clause
	if in.FilterExpression != nil {
		filter, err = parseCondition(*in.FilterExpression, in.ExpressionAttributeNames)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]types.AttributeValue
	for _, k := range c.sortedKeys() {
		item := c.items[k]
		if matches(item, cond, in.ExpressionAttributeValues) && matches(item, filter, in.ExpressionAttributeValues) {
			out = append(out, copyItem(item))
		}
	}
	return &dynamodb.QueryOutput{Items: out, Count: int32(len(out))}, nil
}

// Scan evaluates the filter expression against all items.
func (c *Client) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	var filter []clause
	if in.FilterExpression != nil {
		var err error
		filter, err = parseCondition(*in.FilterExpression, in.ExpressionAttributeNames)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]types.AttributeValue
	for _, k := range c.sortedKeys() {
		item := c.items[k]
		if matches(item, filter, in.ExpressionAttributeValues) {
			out = append(out, copyItem(item))
		}
	}
	return &dynamodb.ScanOutput{Items: out, Count: int32(len(out))}, nil
}

// UpdateItem applies a SET expression with an optional trailing REMOVE
// clause. The attribute_exists(pk) condition is honored; any other condition
// is rejected.
func (c *Client) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := itemKey(in.Key)
	item, exists := c.items[key]

	if in.ConditionExpression != nil {
		switch strings.TrimSpace(*in.ConditionExpression) {
		case "attribute_exists(pk)":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, fmt.Errorf("dynamofake: unsupported condition %q", *in.ConditionExpression)
		}
	}
	if !exists {
		// DynamoDB would upsert; the store never updates without the
		// existence condition, so treat this as a misuse.
		return nil, fmt.Errorf("dynamofake: update of missing item without condition")
	}

	expr := strings.TrimSpace(*in.UpdateExpression)
	removePart := ""
	if i := strings.Index(expr, " REMOVE "); i >= 0 {
		removePart = expr[i+len(" REMOVE "):]
		expr = expr[:i]
	}
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("dynamofake: unsupported update expression %q", expr)
	}
	updated := copyItem(item)
	for _, assign := range strings.Split(expr[len("SET "):], ",") {
		parts := strings.SplitN(assign, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("dynamofake: malformed assignment %q", assign)
		}
		name := resolveName(strings.TrimSpace(parts[0]), in.ExpressionAttributeNames)
		placeholder := strings.TrimSpace(parts[1])
		value, ok := in.ExpressionAttributeValues[placeholder]
		if !ok {
			return nil, fmt.Errorf("dynamofake: missing value %q", placeholder)
		}
		updated[name] = value
	}
	if removePart != "" {
		for _, ref := range strings.Split(removePart, ",") {
			name := resolveName(strings.TrimSpace(ref), in.ExpressionAttributeNames)
			delete(updated, name)
		}
	}
	c.items[key] = updated

	return &dynamodb.UpdateItemOutput{Attributes: copyItem(updated)}, nil
}

// BatchWriteItem applies put and delete requests for every table in the input.
func (c *Client) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, requests := range in.RequestItems {
		for _, req := range requests {
			if req.PutRequest != nil {
				c.items[itemKey(req.PutRequest.Item)] = copyItem(req.PutRequest.Item)
			}
			if req.DeleteRequest != nil {
				delete(c.items, itemKey(req.DeleteRequest.Key))
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

// TransactWriteItems applies puts and deletes atomically (trivially so, under
// one lock).
func (c *Client) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tx := range in.TransactItems {
		if tx.Put != nil {
			c.items[itemKey(tx.Put.Item)] = copyItem(tx.Put.Item)
		}
		if tx.Delete != nil {
			delete(c.items, itemKey(tx.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (c *Client) sortedKeys() []string {
	ks := make([]string, 0, len(c.items))
	for k := range c.items {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// --- expression interpretation ---

type clause struct {
	attr        string
	placeholder string
	beginsWith  bool
}

// parseCondition understands `a = :v` and `begins_with(a, :v)` joined by AND.
func parseCondition(expr string, names map[string]string) ([]clause, error) {
	var out []clause
	for _, part := range strings.Split(expr, " AND ") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "begins_with(") && strings.HasSuffix(part, ")"):
			inner := part[len("begins_with(") : len(part)-1]
			args := strings.SplitN(inner, ",", 2)
			if len(args) != 2 {
				return nil, fmt.Errorf("dynamofake: malformed begins_with %q", part)
			}
			out = append(out, clause{
				attr:        resolveName(strings.TrimSpace(args[0]), names),
				placeholder: strings.TrimSpace(args[1]),
				beginsWith:  true,
			})
		case strings.Contains(part, "="):
			sides := strings.SplitN(part, "=", 2)
			out = append(out, clause{
				attr:        resolveName(strings.TrimSpace(sides[0]), names),
				placeholder: strings.TrimSpace(sides[1]),
			})
		default:
			return nil, fmt.Errorf("dynamofake: unsupported expression %q", part)
		}
	}
	return out, nil
}

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			return resolved
		}
	}
	return name
}

func matches(item map[string]types.AttributeValue, clauses []clause, values map[string]types.AttributeValue) bool {
	for _, cl := range clauses {
		want, ok := values[cl.placeholder].(*types.AttributeValueMemberS)
		if !ok {
			return false
		}
		got := stringAttr(item, cl.attr)
		if cl.beginsWith {
			if !strings.HasPrefix(got, want.Value) {
				return false
			}
		} else if got != want.Value {
			return false
		}
	}
	return true
}
