package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imyashkale/mcpdashboard/internal/logger"
)

// CatalogRecord is one deployed MCP server in the registry table
type CatalogRecord struct {
	Id               string `dynamodbav:"Id"`
	Name             string `dynamodbav:"Name"`
	Description      string `dynamodbav:"Description"`
	Status           string `dynamodbav:"Status"`
	ECRRepositoryURI string `dynamodbav:"ECRRepositoryURI"`
}

// ImageRef returns the container image to launch, or "" if the server has
// never been pushed.
func (r CatalogRecord) ImageRef() string {
	if r.ECRRepositoryURI == "" {
		return ""
	}
	if strings.Contains(r.ECRRepositoryURI[strings.LastIndex(r.ECRRepositoryURI, "/")+1:], ":") {
		return r.ECRRepositoryURI
	}
	return r.ECRRepositoryURI + ":latest"
}

// CatalogTable reads the registry of deployed MCP servers
type CatalogTable struct {
	client    *Client
	tableName string
}

// NewCatalogTable creates a reader for the given table
func NewCatalogTable(client *Client, tableName string) *CatalogTable {
	return &CatalogTable{
		client:    client,
		tableName: tableName,
	}
}

// ListActive scans the table and returns records whose status is active
// and that have an image to run.
func (ct *CatalogTable) ListActive(ctx context.Context) ([]CatalogRecord, error) {
	records := make([]CatalogRecord, 0)

	var startKey map[string]types.AttributeValue
	for {
		out, err := ct.client.DynamoDB.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(ct.tableName),
			FilterExpression: aws.String("#status = :active"),
			ExpressionAttributeNames: map[string]string{
				"#status": "Status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":active": &types.AttributeValueMemberS{Value: "active"},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan MCP catalog: %w", err)
		}

		for _, item := range out.Items {
			var record CatalogRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal catalog record: %w", err)
			}
			if record.Name == "" || record.ImageRef() == "" {
				logger.WithField("record_id", record.Id).Debugf("Skipping catalog record without name or image")
				continue
			}
			records = append(records, record)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	logger.WithFields(map[string]interface{}{
		"table":   ct.tableName,
		"records": len(records),
	}).Debugf("Loaded MCP catalog from DynamoDB")

	return records, nil
}
