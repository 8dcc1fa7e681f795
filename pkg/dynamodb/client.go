package dynamodb

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	awspkg "github.com/sari-store/sari-backend/pkg/aws"
)

// NewClient loads AWS config and returns a DynamoDB client. AWS_ENDPOINT
// (DynamoDB Local / LocalStack) is honored both at the config level and as
// the client's base endpoint.
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awspkg.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewClientFromConfig(cfg), nil
}

// NewClientFromConfig builds a DynamoDB client from an existing SDK config.
func NewClientFromConfig(cfg sdkaws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
			o.BaseEndpoint = sdkaws.String(endpoint)
		}
	})
}
