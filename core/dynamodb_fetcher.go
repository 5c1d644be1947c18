package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient defines the interface needed for scanning.
type DynamoDBClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBDataFetcher implements DataFetcher using AWS DynamoDB.
// The source names the table; each item is one row of the tidy table.
type DynamoDBDataFetcher struct {
	Client DynamoDBClient
}

// NewDynamoDBDataFetcher creates a new fetcher with the given AWS config.
func NewDynamoDBDataFetcher(cfg aws.Config) *DynamoDBDataFetcher {
	return &DynamoDBDataFetcher{
		Client: dynamodb.NewFromConfig(cfg),
	}
}

// scanInput builds the scan with one equality condition per param, in key
// order. A value that parses as a number also matches a numeric attribute.
func scanInput(table string, params map[string]string) *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if len(params) == 0 {
		return input
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]string, len(keys))
	values := make(map[string]types.AttributeValue, len(keys))
	conditions := make([]string, 0, len(keys))

	for idx, k := range keys {
		v := params[k]
		// Use #k for name, :v for value to avoid reserved words conflicts
		kName := fmt.Sprintf("#k%d", idx)
		vName := fmt.Sprintf(":v%d", idx)
		names[kName] = k
		values[vName] = &types.AttributeValueMemberS{Value: v}

		if _, err := strconv.ParseFloat(v, 64); err == nil {
			nName := fmt.Sprintf(":n%d", idx)
			values[nName] = &types.AttributeValueMemberN{Value: v}
			conditions = append(conditions, fmt.Sprintf("(%s = %s OR %s = %s)", kName, vName, kName, nName))
		} else {
			conditions = append(conditions, fmt.Sprintf("%s = %s", kName, vName))
		}
	}

	input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
	input.ExpressionAttributeNames = names
	input.ExpressionAttributeValues = values
	return input
}

// Fetch scans the DynamoDB table named by source, following pagination.
func (f *DynamoDBDataFetcher) Fetch(ctx context.Context, source string, params map[string]string) ([]map[string]interface{}, error) {
	paginator := dynamodb.NewScanPaginator(f.Client, scanInput(source, params))
	var items []map[string]interface{}

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", source, err)
		}

		var pageItems []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		items = append(items, pageItems...)
	}

	return items, nil
}
