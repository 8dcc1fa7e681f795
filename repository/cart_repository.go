package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/sari-store/sari-backend/models"
)

// CartRepository is the read/write contract of the cart store. Checkout only
// uses ListByUser; the remaining operations exist for the surrounding CRUD
// adapters and tooling.
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	Add(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, itemID string) error
	ScanAll(ctx context.Context) ([]models.CartItem, error)
}

// DynamoCartRepository implements CartRepository against the legacy
// Sari-cart table. The table's partition key is the cart-line id (stored
// under the historical attribute name `OrderID`); there is no index on
// StudentID, so per-user reads are filtered scans, as in the original system.
type DynamoCartRepository struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoCartRepository(client *dynamodb.Client, table string) *DynamoCartRepository {
	return &DynamoCartRepository{client: client, table: table}
}

type ddbCartItem struct {
	ItemID    string  `dynamodbav:"OrderID"`
	UserID    string  `dynamodbav:"StudentID"`
	ProductID string  `dynamodbav:"ProductID"`
	Quantity  int     `dynamodbav:"Quantity"`
	UnitPrice float64 `dynamodbav:"Price"`
}

func (d ddbCartItem) toModel() models.CartItem {
	return models.CartItem{
		ItemID:    d.ItemID,
		UserID:    d.UserID,
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		UnitPrice: d.UnitPrice,
	}
}

func (r *DynamoCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	filterExpr := "StudentID = :sid"
	sidAV, err := attributevalue.Marshal(userID)
	if err != nil {
		return nil, fmt.Errorf("marshal user id: %w", err)
	}
	input := &dynamodb.ScanInput{
		TableName:        &r.table,
		FilterExpression: &filterExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": sidAV,
		},
	}
	return r.scan(ctx, input)
}

func (r *DynamoCartRepository) ScanAll(ctx context.Context) ([]models.CartItem, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: &r.table})
}

func (r *DynamoCartRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]models.CartItem, error) {
	var items []models.CartItem
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan cart table: %w", err)
		}
		for _, it := range page.Items {
			var di ddbCartItem
			if err := attributevalue.UnmarshalMap(it, &di); err != nil {
				return nil, fmt.Errorf("unmarshal cart item: %w", err)
			}
			items = append(items, di.toModel())
		}
	}
	return items, nil
}

func (r *DynamoCartRepository) Add(ctx context.Context, item *models.CartItem) error {
	if item.ItemID == "" {
		item.ItemID = uuid.NewString()
	}
	di := ddbCartItem{
		ItemID:    item.ItemID,
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
	av, err := attributevalue.MarshalMap(di)
	if err != nil {
		return fmt.Errorf("marshal cart item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.table, Item: av})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (r *DynamoCartRepository) Delete(ctx context.Context, itemID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"OrderID": itemID})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &r.table, Key: key})
	if err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	return nil
}
