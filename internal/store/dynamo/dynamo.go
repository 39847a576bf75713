// Package dynamo implements the store interfaces on DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/store"
)

// batchSize is the DynamoDB BatchWriteItem limit.
const batchSize = 25

// API is the subset of the DynamoDB client used by Store, narrowed for
// testing with a fake client.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store wraps a DynamoDB client with the account and transaction tables.
type Store struct {
	client            API
	accountsTable     string
	transactionsTable string
}

// New creates a Store bound to the given tables.
func New(client API, accountsTable, transactionsTable string) *Store {
	return &Store{
		client:            client,
		accountsTable:     accountsTable,
		transactionsTable: transactionsTable,
	}
}

// accountItem is the accounts-table row shape.
type accountItem struct {
	ID    string `dynamodbav:"id"`
	Email string `dynamodbav:"email"`
}

// transactionItem is the transactions-table row shape. Dates are stored in
// ISO form and amounts as exact decimal strings.
type transactionItem struct {
	ID        string `dynamodbav:"id"`
	AccountID string `dynamodbav:"accountId"`
	Date      string `dynamodbav:"date"`
	Amount    string `dynamodbav:"transaction"`
}

// GetAccount fetches the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.accountsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting account %s from %s: %w", id, s.accountsTable, err)
	}
	if out.Item == nil {
		return nil, store.ErrNotFound
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling account %s: %w", id, err)
	}
	return &domain.Account{ID: item.ID, Email: item.Email}, nil
}

// CreateAccount writes the account with a conditional put so two concurrent
// registrations for the same id cannot both succeed.
func (s *Store) CreateAccount(ctx context.Context, acct domain.Account) error {
	item, err := attributevalue.MarshalMap(accountItem{ID: acct.ID, Email: acct.Email})
	if err != nil {
		return fmt.Errorf("marshaling account %s: %w", acct.ID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.accountsTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("saving account %s to %s: %w", acct.ID, s.accountsTable, err)
	}
	return nil
}

// DeleteAccount removes the account with the given id.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.accountsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting account %s from %s: %w", id, s.accountsTable, err)
	}
	return nil
}

// PutTransactions writes all transactions with BatchWriteItem in chunks of
// 25. Unprocessed items are retried once by resubmission; items still
// unprocessed after that surface as an error.
func (s *Store) PutTransactions(ctx context.Context, txns []domain.Transaction) error {
	for start := 0; start < len(txns); start += batchSize {
		end := start + batchSize
		if end > len(txns) {
			end = len(txns)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, txn := range txns[start:end] {
			item, err := attributevalue.MarshalMap(toItem(txn))
			if err != nil {
				return fmt.Errorf("marshaling transaction %s: %w", txn.ID, err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeBatch(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			s.transactionsTable: requests,
		},
	}

	// One resubmission pass for throttled items.
	for attempt := 0; attempt < 2; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("batch writing transactions to %s: %w", s.transactionsTable, err)
		}
		unprocessed := out.UnprocessedItems[s.transactionsTable]
		if len(unprocessed) == 0 {
			return nil
		}
		log.Printf("resubmitting %d unprocessed transaction writes", len(unprocessed))
		input.RequestItems = map[string][]types.WriteRequest{
			s.transactionsTable: unprocessed,
		}
	}
	return fmt.Errorf("batch write to %s left items unprocessed", s.transactionsTable)
}

func toItem(txn domain.Transaction) transactionItem {
	return transactionItem{
		ID:        txn.ID,
		AccountID: txn.AccountID,
		Date:      txn.Date.Format("2006-01-02T15:04:05"),
		Amount:    txn.Amount.String(),
	}
}

// fromItem is the inverse of toItem, used by tests and future read paths.
func fromItem(item transactionItem) (*domain.Transaction, error) {
	date, err := time.Parse("2006-01-02T15:04:05", item.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", item.Date, err)
	}
	amount, err := decimal.NewFromString(item.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", item.Amount, err)
	}
	return domain.NewTransaction(item.ID, item.AccountID, date, amount)
}
