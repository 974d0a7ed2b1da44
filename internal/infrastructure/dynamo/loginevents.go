package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

// LoginEventRepo stores the login-attempt audit trail that the
// alert-investigation tool correlates alerts against.
type LoginEventRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLoginEventRepo(client *dynamodb.Client, tableName string) *LoginEventRepo {
	return &LoginEventRepo{client: client, tableName: tableName}
}

func (r *LoginEventRepo) Put(ctx context.Context, ev *domain.LoginEvent) error {
	item, err := attributevalue.MarshalMap(ev)
	if err != nil {
		return fmt.Errorf("marshal login event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByEmail returns login events for one email via the
// `email-created_at-index` GSI, newest first.
func (r *LoginEventRepo) ListByEmail(ctx context.Context, email string, limit int32) ([]domain.LoginEvent, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-created_at-index"),
		KeyConditionExpression:    aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": &types.AttributeValueMemberS{Value: email}},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var events []domain.LoginEvent
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &events); err != nil {
		return nil, err
	}
	return events, nil
}
