package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore keeps slots in a DynamoDB table keyed by (namespace, slot).
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
	namespace string
}

// dynamoSlot represents the DynamoDB item structure
type dynamoSlot struct {
	Namespace string `dynamodbav:"namespace"`
	Slot      string `dynamodbav:"slot"`
	Value     []byte `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoStore(client *dynamodb.Client, tableName, namespace string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		namespace: namespace,
	}
}

func (s *DynamoStore) key(slot string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"namespace": &types.AttributeValueMemberS{Value: s.namespace},
		"slot":      &types.AttributeValueMemberS{Value: slot},
	}
}

// Get retrieves a slot value with a strongly consistent read
func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get slot: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, false, nil
	}

	var item dynamoSlot
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal slot: %w", err)
	}
	return item.Value, true, nil
}

// Set overwrites a slot value
func (s *DynamoStore) Set(ctx context.Context, key string, value []byte) error {
	item := dynamoSlot{
		Namespace: s.namespace,
		Slot:      key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal slot: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put slot: %w", err)
	}
	return nil
}

// Delete removes a slot
func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

func (s *DynamoStore) Close() error {
	return nil
}
