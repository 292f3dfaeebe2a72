package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

// Client is the subset of the DynamoDB API the store uses
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// RSVPStore keeps RSVPs in a DynamoDB table keyed by "id"
type RSVPStore struct {
	client Client
	table  string
	schema storage.Schema
	now    func() time.Time
}

var _ storage.RSVPStore = (*RSVPStore)(nil)

// NewClient builds a DynamoDB client from the default AWS configuration
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// New creates a store on table. Items written under a schema without
// actual_guest_count omit that attribute.
func New(client Client, table string, schema storage.Schema) *RSVPStore {
	return &RSVPStore{client: client, table: table, schema: schema, now: time.Now}
}

func (s *RSVPStore) Insert(ctx context.Context, r models.RSVP) (models.RSVP, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
	if !s.schema.HasActualGuestCount() {
		r.ActualGuestCount = nil
	}

	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return models.RSVP{}, fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return models.RSVP{}, fmt.Errorf("failed to put item in table '%s': %w", s.table, err)
	}
	return r, nil
}

func (s *RSVPStore) List(ctx context.Context) ([]models.RSVP, error) {
	rsvps := make([]models.RSVP, 0)

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", s.table, err)
		}

		var page []models.RSVP
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		rsvps = append(rsvps, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	if !s.schema.HasActualGuestCount() {
		for i := range rsvps {
			rsvps[i].ActualGuestCount = nil
		}
	}

	sort.SliceStable(rsvps, func(i, j int) bool {
		return rsvps[i].CreatedAt.After(rsvps[j].CreatedAt)
	})
	return rsvps, nil
}

func (s *RSVPStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return models.ErrRSVPNotFound
		}
		return fmt.Errorf("failed to delete item from table '%s': %w", s.table, err)
	}
	return nil
}

func (s *RSVPStore) DeleteAll(ctx context.Context) error {
	rsvps, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range rsvps {
		if err := s.Delete(ctx, r.ID); err != nil && !errors.Is(err, models.ErrRSVPNotFound) {
			return err
		}
	}
	return nil
}
