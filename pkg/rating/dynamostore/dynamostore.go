// Package dynamostore provides a DynamoDB-backed rating.Store for
// deployments that share one rate cache across processes.
package dynamostore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Config holds store configuration.
type Config struct {
	// Table is the DynamoDB table name. The table's partition key must be
	// the string attribute "cache_key".
	Table string

	// TTL, when positive, stamps each item with an epoch-seconds "ttl"
	// attribute for DynamoDB's native expiry. Expiry is also enforced on
	// read, since DynamoDB deletes expired items lazily.
	TTL time.Duration
}

// Store implements rating.Store on DynamoDB.
type Store struct {
	client API
	config Config
}

// New creates a DynamoDB-backed store.
func New(client API, config Config) *Store {
	return &Store{client: client, config: config}
}

// record is the stored item shape.
type record struct {
	CacheKey string `dynamodbav:"cache_key"`
	Value    []byte `dynamodbav:"value"`
	TTL      int64  `dynamodbav:"ttl,omitempty"`
}

// Get retrieves a value. Items whose ttl attribute has passed are treated
// as absent even if DynamoDB has not collected them yet.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.Table),
		Key: map[string]types.AttributeValue{
			"cache_key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("dynamostore get: %w", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, false, fmt.Errorf("dynamostore unmarshal: %w", err)
	}
	if rec.TTL > 0 && rec.TTL <= time.Now().Unix() {
		return nil, false, nil
	}
	return rec.Value, true, nil
}

// Set stores a value, overwriting any previous item.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	rec := record{CacheKey: key, Value: value}
	if s.config.TTL > 0 {
		rec.TTL = time.Now().Add(s.config.TTL).Unix()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("dynamostore marshal: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamostore put: %w", err)
	}
	return nil
}
