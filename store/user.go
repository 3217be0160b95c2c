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
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/health"
)

type UserStore interface {
	GetByLogin(ctx context.Context, login string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	GetByOAuth(ctx context.Context, provider, externalID string) (*types.User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, user types.User) error
	SetPassword(ctx context.Context, login, hash, salt string) error

	health.ReadinessCheck
}

type DynamoDbUserStore struct {
	Client    *dynamodb.Client
	TableName string
}

// userItem adds the composite linked-identity key the oauth-index GSI is
// built on. One account owns at most one link per provider, and a
// (provider, external id) pair belongs to at most one account.
type userItem struct {
	types.User
	OAuthKey string `dynamodbav:"oauth_key,omitempty"`
}

func oauthKey(provider, externalID string) string {
	return provider + "#" + externalID
}

func NewUserStore(dbClient *dynamodb.Client, tableName string) *DynamoDbUserStore {
	return &DynamoDbUserStore{
		Client:    dbClient,
		TableName: tableName,
	}
}

func (s *DynamoDbUserStore) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.TableName),
	})

	return err
}

func (s *DynamoDbUserStore) Name() string {
	return "UserStore[users]"
}

func (s *DynamoDbUserStore) GetByLogin(ctx context.Context, login string) (*types.User, error) {
	res, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]dynamoTypes.AttributeValue{
			"login": &dynamoTypes.AttributeValueMemberS{Value: login},
		},
	})
	if err != nil {
		return nil, err
	}
	if res.Item == nil {
		return nil, apperr.ErrUserNotFound
	}

	var user types.User
	if err := attributevalue.UnmarshalMap(res.Item, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *DynamoDbUserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.queryOne(ctx, "email-index", "email", email)
}

func (s *DynamoDbUserStore) GetByOAuth(ctx context.Context, provider, externalID string) (*types.User, error) {
	return s.queryOne(ctx, "oauth-index", "oauth_key", oauthKey(provider, externalID))
}

func (s *DynamoDbUserStore) queryOne(ctx context.Context, index, attr, value string) (*types.User, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.TableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]dynamoTypes.AttributeValue{
			":v": &dynamoTypes.AttributeValueMemberS{Value: value},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, apperr.ErrUserNotFound
	}

	var user types.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *DynamoDbUserStore) LoginExists(ctx context.Context, login string) (bool, error) {
	_, err := s.GetByLogin(ctx, login)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *DynamoDbUserStore) Create(ctx context.Context, user types.User) error {
	rec := userItem{User: user}
	for provider, externalID := range user.OAuth {
		rec.OAuthKey = oauthKey(provider, externalID)
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(login)"),
	})
	if err != nil {
		var ccf *dynamoTypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (s *DynamoDbUserStore) SetPassword(ctx context.Context, login, hash, salt string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]dynamoTypes.AttributeValue{
			"login": &dynamoTypes.AttributeValueMemberS{Value: login},
		},
		UpdateExpression:    aws.String("SET password = :h, salt = :s"),
		ConditionExpression: aws.String("attribute_exists(login)"),
		ExpressionAttributeValues: map[string]dynamoTypes.AttributeValue{
			":h": &dynamoTypes.AttributeValueMemberS{Value: hash},
			":s": &dynamoTypes.AttributeValueMemberS{Value: salt},
		},
	})
	if err != nil {
		var ccf *dynamoTypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	return nil
}
