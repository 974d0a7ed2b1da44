package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

// RecoveryRepo stores password-recovery tokens. Expired entries are reaped
// by the table's TTL on expires_at.
type RecoveryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRecoveryRepo(client *dynamodb.Client, tableName string) *RecoveryRepo {
	return &RecoveryRepo{client: client, tableName: tableName}
}

func (r *RecoveryRepo) Put(ctx context.Context, t *domain.RecoveryToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal recovery token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RecoveryRepo) GetByToken(ctx context.Context, token string) (*domain.RecoveryToken, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("recovery token: %w", domain.ErrNotFound)
	}
	var t domain.RecoveryToken
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a token once consumed so it cannot be replayed.
func (r *RecoveryRepo) Delete(ctx context.Context, token string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	return err
}
