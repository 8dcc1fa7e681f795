package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/sari-store/sari-backend/models"
)

var (
	// ErrInventoryNotFound is returned when a product has no stock record.
	ErrInventoryNotFound = errors.New("inventory record not found")
)

// InventoryRepository is the read contract checkout needs plus the seeding
// write used by tooling. Stock decrements never go through this interface;
// they only happen inside the checkout transaction.
type InventoryRepository interface {
	GetStock(ctx context.Context, productID string) (int, error)
	Put(ctx context.Context, inv *models.Inventory) error
}

// DynamoInventoryRepository implements InventoryRepository against the
// Sari-inventory table (partition key ProductID, attribute Stock).
type DynamoInventoryRepository struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoInventoryRepository(client *dynamodb.Client, table string) *DynamoInventoryRepository {
	return &DynamoInventoryRepository{client: client, table: table}
}

type ddbInventory struct {
	ProductID string `dynamodbav:"ProductID"`
	Stock     int    `dynamodbav:"Stock"`
	UpdatedAt string `dynamodbav:"UpdatedAt,omitempty"`
}

func (r *DynamoInventoryRepository) GetStock(ctx context.Context, productID string) (int, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"ProductID": productID})
	if err != nil {
		return 0, fmt.Errorf("marshal key: %w", err)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.table,
		Key:       key,
	})
	if err != nil {
		return 0, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return 0, ErrInventoryNotFound
	}
	var di ddbInventory
	if err := attributevalue.UnmarshalMap(out.Item, &di); err != nil {
		return 0, fmt.Errorf("unmarshal inventory item: %w", err)
	}
	return di.Stock, nil
}

func (r *DynamoInventoryRepository) Put(ctx context.Context, inv *models.Inventory) error {
	di := ddbInventory{
		ProductID: inv.ProductID,
		Stock:     inv.Stock,
	}
	if !inv.UpdatedAt.IsZero() {
		di.UpdatedAt = inv.UpdatedAt.Format(time.RFC3339)
	}
	item, err := attributevalue.MarshalMap(di)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.table, Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}
