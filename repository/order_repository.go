package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sari-store/sari-backend/models"
)

// ErrOrderNotFound is returned when no order exists for the given id.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository reads committed orders. Orders are only ever written
// through the checkout transaction, so this interface has no insert; Get
// exists so a caller facing an indeterminate checkout outcome can confirm
// whether the order was actually created before trying again.
type OrderRepository interface {
	Get(ctx context.Context, orderID string) (*models.Order, error)
}

// DynamoOrderRepository implements OrderRepository against the Sari-orders
// table.
type DynamoOrderRepository struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoOrderRepository(client *dynamodb.Client, table string) *DynamoOrderRepository {
	return &DynamoOrderRepository{client: client, table: table}
}

// ddbOrder maps to the legacy Sari-orders attribute names.
type ddbOrder struct {
	OrderID        string         `dynamodbav:"OrderID"`
	OrderDate      string         `dynamodbav:"OrderDate"`
	UserID         string         `dynamodbav:"StudentID"`
	Lines          []ddbOrderLine `dynamodbav:"Cart"`
	TotalAmount    float64        `dynamodbav:"TotalPayment"`
	PaymentMethod  string         `dynamodbav:"MOP"`
	PaymentStatus  string         `dynamodbav:"PaymentStatus"`
	DeliveryMethod string         `dynamodbav:"MOD"`
	DeliveryStatus string         `dynamodbav:"DeliveryStatus"`
	PickupLocation string         `dynamodbav:"Location"`
	ETA            string         `dynamodbav:"ETA"`
}

type ddbOrderLine struct {
	ProductID string  `dynamodbav:"ProductID"`
	Quantity  int     `dynamodbav:"Quantity"`
	UnitPrice float64 `dynamodbav:"Price"`
}

func newDDBOrder(o models.Order) ddbOrder {
	lines := make([]ddbOrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, ddbOrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return ddbOrder{
		OrderID:        o.OrderID,
		OrderDate:      o.CreatedAt.UTC().Format(time.RFC3339),
		UserID:         o.UserID,
		Lines:          lines,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		DeliveryMethod: o.DeliveryMethod,
		DeliveryStatus: o.DeliveryStatus,
		PickupLocation: o.PickupLocation,
		ETA:            o.ETA,
	}
}

func (d ddbOrder) toModel() models.Order {
	o := models.Order{
		OrderID:        d.OrderID,
		UserID:         d.UserID,
		TotalAmount:    d.TotalAmount,
		PaymentMethod:  d.PaymentMethod,
		PaymentStatus:  d.PaymentStatus,
		DeliveryMethod: d.DeliveryMethod,
		DeliveryStatus: d.DeliveryStatus,
		PickupLocation: d.PickupLocation,
		ETA:            d.ETA,
	}
	for _, l := range d.Lines {
		o.Lines = append(o.Lines, models.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	if t, err := time.Parse(time.RFC3339, d.OrderDate); err == nil {
		o.CreatedAt = t
	}
	return o
}

func (r *DynamoOrderRepository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"OrderID": orderID})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.table,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrOrderNotFound
	}
	return orderFromItem(out.Item)
}

func orderFromItem(item map[string]types.AttributeValue) (*models.Order, error) {
	// Rows written before line items were recorded hold a placeholder string
	// under Cart; drop it rather than fail the unmarshal.
	if _, ok := item["Cart"].(*types.AttributeValueMemberL); !ok {
		delete(item, "Cart")
	}
	var do ddbOrder
	if err := attributevalue.UnmarshalMap(item, &do); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	o := do.toModel()
	return &o, nil
}
