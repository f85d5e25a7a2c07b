package client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// NewDynamoDBClient builds one client for the given account. An endpoint
// override (local DynamoDB) also switches to static placeholder credentials;
// otherwise the default credential chain and the account's profile apply.
func NewDynamoDBClient(ctx context.Context, account models.Account) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{}

	if account.Region != "" {
		opts = append(opts, config.WithRegion(account.Region))
	}
	if account.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(account.Profile))
	}
	if account.EndpointUrl != "" {
		opts = append(opts,
			config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service string, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: account.EndpointUrl}, nil
				})),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "local")),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection config for account %s: %w", account.Name, err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}
