package store

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamoTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/health"
)

// IngestionRecord is one file pulled out of the watched bucket and handed to
// the platform.
type IngestionRecord struct {
	ObjectKey  string `dynamodbav:"object_key"`
	Bucket     string `dynamodbav:"bucket"`
	FolderID   string `dynamodbav:"folder_id"`
	FileSource string `dynamodbav:"file_source"`
	Size       int64  `dynamodbav:"size"`
	IngestedAt int64  `dynamodbav:"ingested_at"`
}

type IngestionStore interface {
	Record(ctx context.Context, rec IngestionRecord) error

	health.ReadinessCheck
}

type DynamoDbIngestionStore struct {
	Client    *dynamodb.Client
	TableName string
}

func NewIngestionStore(dbClient *dynamodb.Client, tableName string) *DynamoDbIngestionStore {
	return &DynamoDbIngestionStore{
		Client:    dbClient,
		TableName: tableName,
	}
}

func (s *DynamoDbIngestionStore) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.TableName),
	})

	return err
}

func (s *DynamoDbIngestionStore) Name() string {
	return "IngestionStore[ingestions]"
}

func (s *DynamoDbIngestionStore) Record(ctx context.Context, rec IngestionRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(object_key)"),
	})
	if err != nil {
		var ccf *dynamoTypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.ErrObjectConflict
		}
		return err
	}
	return nil
}
