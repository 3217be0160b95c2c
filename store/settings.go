package store

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamoTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	SettingRegistrationPolicy = "core.registration_policy"

	PolicyOpen     = "open"
	PolicyClosed   = "closed"
	PolicyApproval = "approval"
)

// SettingsStore exposes the host-level settings the gateway consults.
// Registration policy controls whether a first-time OAuth login may
// auto-provision an account.
type SettingsStore interface {
	RegistrationPolicy(ctx context.Context) (string, error)
}

type DynamoDbSettingsStore struct {
	Client        *dynamodb.Client
	TableName     string
	DefaultPolicy string
}

func NewSettingsStore(dbClient *dynamodb.Client, tableName, defaultPolicy string) *DynamoDbSettingsStore {
	return &DynamoDbSettingsStore{
		Client:        dbClient,
		TableName:     tableName,
		DefaultPolicy: defaultPolicy,
	}
}

func (s *DynamoDbSettingsStore) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.TableName),
	})

	return err
}

func (s *DynamoDbSettingsStore) Name() string {
	return "SettingsStore[settings]"
}

func (s *DynamoDbSettingsStore) RegistrationPolicy(ctx context.Context) (string, error) {
	res, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]dynamoTypes.AttributeValue{
			"key": &dynamoTypes.AttributeValueMemberS{Value: SettingRegistrationPolicy},
		},
	})
	if err != nil {
		return "", err
	}
	if res.Item == nil {
		return s.DefaultPolicy, nil
	}

	value, ok := res.Item["value"].(*dynamoTypes.AttributeValueMemberS)
	if !ok || value.Value == "" {
		return s.DefaultPolicy, nil
	}
	return value.Value, nil
}
