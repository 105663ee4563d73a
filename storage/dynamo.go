package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoConfig points at the table holding the slots. Endpoint is only set
// for DynamoDB Local.
type DynamoConfig struct {
	Table    string
	Region   string
	Endpoint string
}

// Dynamo stores each key as one item: PK = "SLOT#<key>", value as a binary
// attribute.
type Dynamo struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamo creates a DynamoDB client from the default AWS credential chain.
func NewDynamo(ctx context.Context, cfg DynamoConfig) (*Dynamo, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.Endpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Dynamo{
		client:    dynamodb.NewFromConfig(awsCfg),
		tableName: cfg.Table,
	}, nil
}

func (d *Dynamo) pk(key string) string {
	return "SLOT#" + key
}

func (d *Dynamo) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: d.pk(key)},
	}
}

func (d *Dynamo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &d.tableName,
		Key:            d.itemKey(key),
		ConsistentRead: boolPtr(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("GetItem: %w", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	attr, ok := out.Item["value"]
	if !ok {
		return nil, false, fmt.Errorf("item %s has no value attribute", d.pk(key))
	}
	b, ok := attr.(*types.AttributeValueMemberB)
	if !ok {
		return nil, false, fmt.Errorf("item %s value is not binary", d.pk(key))
	}
	return b.Value, true, nil
}

func (d *Dynamo) Set(ctx context.Context, key string, value []byte) error {
	item := d.itemKey(key)
	item["value"] = &types.AttributeValueMemberB{Value: value}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem: %w", err)
	}
	return nil
}

func (d *Dynamo) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &d.tableName,
		Key:       d.itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("DeleteItem: %w", err)
	}
	return nil
}

func (d *Dynamo) Close() error { return nil }

func boolPtr(b bool) *bool { return &b }
