// Package awsclient builds the AWS service clients shared by the adapters.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Clients holds one client per AWS service the stage talks to.
type Clients struct {
	S3          *s3.Client
	DynamoDB    *dynamodb.Client
	EventBridge *eventbridge.Client
}

// Settings selects the region and optional endpoint overrides, e.g. a
// LocalStack URL. A per-service endpoint wins over the shared Endpoint.
type Settings struct {
	Region   string
	Endpoint string

	S3Endpoint       string
	DynamoDBEndpoint string
	EventsEndpoint   string
}

func (s Settings) endpoint(override string) string {
	if override != "" {
		return override
	}
	return s.Endpoint
}

// LoadConfig resolves the default credential chain for the given region.
func LoadConfig(ctx context.Context, s Settings) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// New builds every client from one resolved configuration.
func New(ctx context.Context, s Settings) (*Clients, error) {
	cfg, err := LoadConfig(ctx, s)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, s), nil
}

// FromConfig builds the clients from cfg, pointing each one at its endpoint
// override when one is set.
func FromConfig(cfg aws.Config, s Settings) *Clients {
	s3Endpoint := s.endpoint(s.S3Endpoint)
	dynamoEndpoint := s.endpoint(s.DynamoDBEndpoint)
	eventsEndpoint := s.endpoint(s.EventsEndpoint)

	return &Clients{
		S3: s3.NewFromConfig(cfg, func(o *s3.Options) {
			if s3Endpoint != "" {
				o.BaseEndpoint = aws.String(s3Endpoint)
				o.UsePathStyle = true
			}
		}),
		DynamoDB: dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if dynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(dynamoEndpoint)
			}
		}),
		EventBridge: eventbridge.NewFromConfig(cfg, func(o *eventbridge.Options) {
			if eventsEndpoint != "" {
				o.BaseEndpoint = aws.String(eventsEndpoint)
			}
		}),
	}
}
