package dynamostore_test

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordercraft/shiprate/pkg/rating/dynamostore"
)

// fakeDynamo is an in-memory stand-in for the DynamoDB API subset the
// store uses.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	key := params.Key["cache_key"].(*types.AttributeValueMemberS).Value
	item, ok := f.items[key]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key := params.Item["cache_key"].(*types.AttributeValueMemberS).Value
	f.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestStore_RoundTrip(t *testing.T) {
	store := dynamostore.New(newFakeDynamo(), dynamostore.Config{Table: "test-cache"})
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k1", []byte(`{"quote":null}`)))

	value, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"quote":null}`), value)
}

func TestStore_ExpiredTTLTreatedAsAbsent(t *testing.T) {
	fake := newFakeDynamo()
	store := dynamostore.New(fake, dynamostore.Config{Table: "test-cache", TTL: time.Second})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

	// Rewind the stored ttl attribute to the past; DynamoDB collects
	// expired items lazily, so the store must filter on read.
	fake.items["k1"]["ttl"] = &types.AttributeValueMemberN{Value: "1"}

	_, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NoTTLByDefault(t *testing.T) {
	fake := newFakeDynamo()
	store := dynamostore.New(fake, dynamostore.Config{Table: "test-cache"})

	require.NoError(t, store.Set(context.Background(), "k1", []byte("v1")))

	_, hasTTL := fake.items["k1"]["ttl"]
	assert.False(t, hasTTL)
}
