package remote

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/caremeal/caremeal/app/internal/config"
	"github.com/caremeal/caremeal/app/internal/model/meal"
)

// MealStore is the server-side copy of the meal plans.
type MealStore interface {
	// FetchMealPlan returns nil when the server has nothing for the date.
	FetchMealPlan(ctx context.Context, userID, date string) (*meal.DailyPlan, error)
	PushMealPlan(ctx context.Context, userID, date string, plan meal.DailyPlan) error
}

// ImageStore turns an inline data URL into a hosted URL.
type ImageStore interface {
	Upload(ctx context.Context, dataURL, prefix string) (string, error)
}

// Stores bundles the optional remote collaborators.
type Stores struct {
	Meals  MealStore
	Images ImageStore
}

// Open builds the remote stores selected by cfg. httpMeals is used when the
// backend itself hosts the meal plans.
func Open(ctx context.Context, cfg config.RemoteConfig, httpMeals MealStore) (Stores, error) {
	var stores Stores

	if cfg.MealStore == config.RemoteHTTP {
		stores.Meals = httpMeals
	}

	if cfg.MealStore != config.RemoteDynamoDB && !cfg.ImagesEnabled() {
		return stores, nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Region)
	if err != nil {
		return Stores{}, err
	}

	if cfg.MealStore == config.RemoteDynamoDB {
		stores.Meals = NewDynamoMealStore(dynamodb.NewFromConfig(awsCfg), cfg.MealTable)
	}
	if cfg.ImagesEnabled() {
		stores.Images = NewS3ImageStore(s3.NewFromConfig(awsCfg), cfg.ImageBucket, cfg.Region, cfg.ImagePublicURL)
	}
	return stores, nil
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return awsCfg, nil
}
