package history

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDB key layout. All records of one owner share a partition; the sort
// key embeds a reversed timestamp so an ascending query is newest first.
const (
	pkPrefix = "HISTORY#"
	skPrefix = "IMAGE#"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// BlobStore holds image bytes for backends whose rows cannot carry them.
type BlobStore interface {
	Put(ctx context.Context, key, mimeType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// DynamoStore keeps history metadata in DynamoDB and image bytes in blobs.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	owner     string
	blobs     BlobStore
	ttl       time.Duration
}

var _ Store = (*DynamoStore)(nil)

// dynamoRecord is the item shape. PK, SK, and expiresAt are added on write.
type dynamoRecord struct {
	ID        string    `dynamodbav:"id"`
	Text      string    `dynamodbav:"text"`
	Prompt    string    `dynamodbav:"prompt"`
	MIMEType  string    `dynamodbav:"mimeType"`
	BlobKey   string    `dynamodbav:"blobKey"`
	CreatedAt time.Time `dynamodbav:"createdAt"`
}

// NewDynamoStore creates a store for one owner's history. A zero ttl keeps
// records forever; otherwise the table's TTL attribute expiresAt is set.
func NewDynamoStore(client DynamoAPI, tableName, owner string, blobs BlobStore, ttl time.Duration) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		owner:     owner,
		blobs:     blobs,
		ttl:       ttl,
	}
}

func (s *DynamoStore) pk() string {
	return pkPrefix + s.owner
}

// imageSK orders newer records before older ones under ascending sort.
func imageSK(createdAt time.Time, id string) string {
	return fmt.Sprintf("%s%019d#%s", skPrefix, math.MaxInt64-createdAt.UnixNano(), id)
}

func (s *DynamoStore) blobKey(img *GeneratedImage) string {
	return fmt.Sprintf("history/%s/%s%s", s.owner, img.ID, img.Ext())
}

// Add uploads the image bytes, then writes the metadata item.
func (s *DynamoStore) Add(ctx context.Context, img *GeneratedImage) error {
	key := s.blobKey(img)
	if err := s.blobs.Put(ctx, key, img.MIMEType, img.Data); err != nil {
		return fmt.Errorf("store image blob: %w", err)
	}

	item, err := attributevalue.MarshalMap(dynamoRecord{
		ID:        img.ID,
		Text:      img.Text,
		Prompt:    img.Prompt,
		MIMEType:  img.MIMEType,
		BlobKey:   key,
		CreatedAt: img.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	pk, sk := s.pk(), imageSK(img.CreatedAt, img.ID)
	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	if s.ttl > 0 {
		exp := img.CreatedAt.Add(s.ttl).Unix()
		item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(exp, 10)}
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", pk, sk, err)
	}

	log.Debug().Str("id", img.ID).Str("owner", s.owner).Msg("History record stored in DynamoDB")
	return nil
}

// List returns every record with its image bytes, newest first.
func (s *DynamoStore) List(ctx context.Context) ([]*GeneratedImage, error) {
	records, err := s.query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*GeneratedImage, 0, len(records))
	for _, rec := range records {
		img, err := s.load(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// Get finds a record by ID within the owner's partition.
func (s *DynamoStore) Get(ctx context.Context, id string) (*GeneratedImage, error) {
	records, err := s.query(ctx, &id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return s.load(ctx, records[0])
}

func (s *DynamoStore) load(ctx context.Context, rec dynamoRecord) (*GeneratedImage, error) {
	data, err := s.blobs.Get(ctx, rec.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("load image blob %s: %w", rec.BlobKey, err)
	}
	return &GeneratedImage{
		ID:        rec.ID,
		Text:      rec.Text,
		Prompt:    rec.Prompt,
		MIMEType:  rec.MIMEType,
		Data:      data,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// query reads the owner's partition in sort-key order, optionally filtered to
// a single ID. DynamoDB returns at most 1MB per call, so pages are followed.
func (s *DynamoStore) query(ctx context.Context, id *string) ([]dynamoRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: s.pk()},
			":sk": &types.AttributeValueMemberS{Value: skPrefix},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if id != nil {
		input.FilterExpression = aws.String("id = :id")
		input.ExpressionAttributeValues[":id"] = &types.AttributeValueMemberS{Value: *id}
	}

	var records []dynamoRecord
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Query PK=%s: %w", s.pk(), err)
		}
		var page []dynamoRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal history page: %w", err)
		}
		records = append(records, page...)

		if result.LastEvaluatedKey == nil || (id != nil && len(records) > 0) {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return records, nil
}
