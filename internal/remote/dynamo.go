package remote

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/caremeal/caremeal/app/internal/model/meal"
)

// dynamoAPI is the subset of the DynamoDB client the store calls.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// mealPlanRecord is one row of the meal plan table, keyed by user_id + date.
type mealPlanRecord struct {
	UserID string         `dynamodbav:"user_id"`
	Date   string         `dynamodbav:"date"`
	Plan   meal.DailyPlan `dynamodbav:"plan"`
}

// DynamoMealStore keeps meal plans in a DynamoDB table.
type DynamoMealStore struct {
	client dynamoAPI
	table  string
}

func NewDynamoMealStore(client dynamoAPI, table string) *DynamoMealStore {
	return &DynamoMealStore{client: client, table: table}
}

func (s *DynamoMealStore) FetchMealPlan(ctx context.Context, userID, date string) (*meal.DailyPlan, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
			"date":    &types.AttributeValueMemberS{Value: date},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var record mealPlanRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan: %w", err)
	}
	return &record.Plan, nil
}

func (s *DynamoMealStore) PushMealPlan(ctx context.Context, userID, date string, plan meal.DailyPlan) error {
	item, err := attributevalue.MarshalMap(mealPlanRecord{UserID: userID, Date: date, Plan: plan})
	if err != nil {
		return fmt.Errorf("failed to encode meal plan: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put meal plan: %w", err)
	}
	return nil
}
