package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	appConfig "github.com/imyashkale/mcpdashboard/internal/config"
	"github.com/imyashkale/mcpdashboard/internal/logger"
)

// Config holds the DynamoDB configuration
type Config struct {
	TableName string
	Region    string
}

// ScanAPI is the subset of the DynamoDB client the catalog needs
type ScanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// describeTableAPI is what the startup table check needs
type describeTableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Client wraps the DynamoDB client
type Client struct {
	DynamoDB  ScanAPI
	TableName string
}

// NewConfig creates a new database configuration from the application config
func NewConfig(appCfg *appConfig.Config) *Config {
	return &Config{
		TableName: appCfg.CatalogTableName,
		Region:    appCfg.AWSRegion,
	}
}

// NewClient creates a new DynamoDB client for the catalog table
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	if err := ensureTableExists(ctx, dynamoClient, cfg.TableName); err != nil {
		logger.WithField("table", cfg.TableName).Warnf("Could not verify catalog table: %v", err)
	}

	return &Client{
		DynamoDB:  dynamoClient,
		TableName: cfg.TableName,
	}, nil
}

// ensureTableExists checks that the MCP server catalog table is reachable
func ensureTableExists(ctx context.Context, client describeTableAPI, tableName string) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("catalog table %s does not exist or cannot be accessed: %w", tableName, err)
	}

	logger.WithField("table", tableName).Info("DynamoDB catalog table verified")
	return nil
}
