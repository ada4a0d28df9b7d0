// Package repository looks up previously persisted reports in DynamoDB.
package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Default secondary index and its key attributes.
const (
	DefaultIndex = "GSI1"

	partitionKey = "GSI1PK"
	sortKey      = "GSI1SK"
	keyPrefix    = "REPORT#"
)

// IssueAlreadyPersisted is reported for every id found in the table.
const IssueAlreadyPersisted = "Report already exists in reports table"

// Querier is the part of the DynamoDB client the index needs.
type Querier interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// indexedReport is the projection read back from the index.
type indexedReport struct {
	ReportID string `dynamodbav:"reportId"`
}

// indexKey is the GSI1 partition and sort key value of a report.
func indexKey(reportID string) string {
	return keyPrefix + reportID
}
