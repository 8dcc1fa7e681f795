package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sari-store/sari-backend/models"
)

// DynamoDB caps a TransactWriteItems call at 100 items. One slot is always
// taken by the order insert.
const maxTransactItems = 100

// TransactionAbortedError reports a checkout batch the store refused to
// commit: a stock precondition failed at commit time, or DynamoDB rejected
// the batch outright. No partial effects exist when this is returned.
// ProductID is set when the losing precondition could be attributed to a
// specific item.
type TransactionAbortedError struct {
	ProductID string
	Reason    string
	Err       error
}

func (e *TransactionAbortedError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("checkout transaction aborted: %s (product %s)", e.Reason, e.ProductID)
	}
	return fmt.Sprintf("checkout transaction aborted: %s", e.Reason)
}

func (e *TransactionAbortedError) Unwrap() error { return e.Err }

// TransactionExecutor submits a checkout write-set as one indivisible
// operation. Implementations must guarantee all-or-nothing visibility of the
// stock decrements and the order insert, and must never retry internally.
type TransactionExecutor interface {
	Execute(ctx context.Context, txn *models.CheckoutTransaction) error
}

// DynamoTransactionExecutor commits checkout transactions with a single
// TransactWriteItems call spanning the inventory and orders tables.
type DynamoTransactionExecutor struct {
	client         *dynamodb.Client
	inventoryTable string
	ordersTable    string
}

func NewDynamoTransactionExecutor(client *dynamodb.Client, inventoryTable, ordersTable string) *DynamoTransactionExecutor {
	return &DynamoTransactionExecutor{
		client:         client,
		inventoryTable: inventoryTable,
		ordersTable:    ordersTable,
	}
}

func (e *DynamoTransactionExecutor) Execute(ctx context.Context, txn *models.CheckoutTransaction) error {
	items, err := buildTransactItems(txn, e.inventoryTable, e.ordersTable)
	if err != nil {
		return err
	}
	_, err = e.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return abortError(txn, err)
	}
	return nil
}

// buildTransactItems translates the domain write-set into DynamoDB transact
// items: one conditional Update per decrement, the order Put last. The item
// order matters: abortError maps cancellation reasons back to products by
// index.
func buildTransactItems(txn *models.CheckoutTransaction, inventoryTable, ordersTable string) ([]types.TransactWriteItem, error) {
	if len(txn.Decrements) == 0 {
		return nil, errors.New("checkout transaction has no stock decrements")
	}
	if len(txn.Decrements)+1 > maxTransactItems {
		return nil, fmt.Errorf("checkout transaction exceeds %d items", maxTransactItems)
	}

	items := make([]types.TransactWriteItem, 0, len(txn.Decrements)+1)
	updateExpr := "SET Stock = Stock - :qty"
	condExpr := "Stock >= :qty"
	for _, dec := range txn.Decrements {
		key, err := attributevalue.MarshalMap(map[string]string{"ProductID": dec.ProductID})
		if err != nil {
			return nil, fmt.Errorf("marshal inventory key: %w", err)
		}
		qtyAV, err := attributevalue.Marshal(dec.Quantity)
		if err != nil {
			return nil, fmt.Errorf("marshal quantity: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           &inventoryTable,
				Key:                 key,
				UpdateExpression:    &updateExpr,
				ConditionExpression: &condExpr,
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":qty": qtyAV,
				},
			},
		})
	}

	orderItem, err := attributevalue.MarshalMap(newDDBOrder(txn.Order))
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName: &ordersTable,
			Item:      orderItem,
		},
	})
	return items, nil
}

// abortError wraps a TransactWriteItems failure into a TransactionAbortedError,
// attributing a failed stock precondition to its product when DynamoDB tells
// us which item cancelled the batch.
func abortError(txn *models.CheckoutTransaction, err error) error {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for i, reason := range canceled.CancellationReasons {
			if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
				continue
			}
			if i < len(txn.Decrements) {
				return &TransactionAbortedError{
					ProductID: txn.Decrements[i].ProductID,
					Reason:    "stock precondition failed",
					Err:       err,
				}
			}
		}
		return &TransactionAbortedError{Reason: "transaction canceled", Err: err}
	}

	var conflict *types.TransactionConflictException
	if errors.As(err, &conflict) {
		return &TransactionAbortedError{Reason: "transaction conflict", Err: err}
	}

	return &TransactionAbortedError{Reason: "store rejected transaction", Err: err}
}
