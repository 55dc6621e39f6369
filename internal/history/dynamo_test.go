package history

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo stores items in memory and serves Query in sort-key order,
// pageSize items at a time.
type fakeDynamo struct {
	items    []map[string]types.AttributeValue
	pageSize int
	queries  int
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries++
	pk := str(in.ExpressionAttributeValues[":pk"])
	prefix := str(in.ExpressionAttributeValues[":sk"])
	start := ""
	if in.ExclusiveStartKey != nil {
		start = str(in.ExclusiveStartKey["SK"])
	}

	var matched []map[string]types.AttributeValue
	for _, it := range f.items {
		if str(it["PK"]) == pk && strings.HasPrefix(str(it["SK"]), prefix) && str(it["SK"]) > start {
			matched = append(matched, it)
		}
	}
	slices.SortFunc(matched, func(a, b map[string]types.AttributeValue) int {
		return strings.Compare(str(a["SK"]), str(b["SK"]))
	})

	out := &dynamodb.QueryOutput{}
	page := matched
	if f.pageSize > 0 && len(matched) > f.pageSize {
		page = matched[:f.pageSize]
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": page[len(page)-1]["PK"], "SK": page[len(page)-1]["SK"]}
	}
	for _, it := range page {
		if id, ok := in.ExpressionAttributeValues[":id"]; ok && str(it["id"]) != str(id) {
			continue
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}

type fakeBlobs struct {
	data map[string][]byte
	fail bool
}

func (b *fakeBlobs) Put(_ context.Context, key, _ string, data []byte) error {
	if b.fail {
		return errors.New("bucket unavailable")
	}
	if b.data == nil {
		b.data = make(map[string][]byte)
	}
	b.data[key] = data
	return nil
}

func (b *fakeBlobs) Get(_ context.Context, key string) ([]byte, error) {
	d, ok := b.data[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return d, nil
}

func TestDynamoStoreOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	db := &fakeDynamo{pageSize: 2}
	blobs := &fakeBlobs{}
	s := NewDynamoStore(db, "textfx-history", "owner-1", blobs, 0)

	base := time.Unix(1700000000, 0)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if err := s.Add(ctx, sample(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(list); !slices.Equal(got, []string{"e", "d", "c", "b", "a"}) {
		t.Errorf("unexpected order %v", got)
	}
	if db.queries != 3 {
		t.Errorf("expected 3 paged queries, got %d", db.queries)
	}
	if string(list[0].Data) != "png-e" {
		t.Errorf("image bytes not loaded from blobs: %q", list[0].Data)
	}
	if _, ok := blobs.data["history/owner-1/e.png"]; !ok {
		t.Errorf("unexpected blob keys %v", blobs.data)
	}
}

func TestDynamoStoreGet(t *testing.T) {
	ctx := context.Background()
	s := NewDynamoStore(&fakeDynamo{}, "t", "owner-1", &fakeBlobs{}, 0)
	s.Add(ctx, sample("a", time.Now()))

	got, err := s.Get(ctx, "a")
	if err != nil || got == nil || got.Prompt != "prompt a" {
		t.Fatalf("Get(a) = %+v, %v", got, err)
	}
	got, err = s.Get(ctx, "zzz")
	if err != nil || got != nil {
		t.Errorf("Get(zzz) = %+v, %v; want nil, nil", got, err)
	}
}

func TestDynamoStoreOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := &fakeDynamo{}
	blobs := &fakeBlobs{}
	NewDynamoStore(db, "t", "alice", blobs, 0).Add(ctx, sample("a", time.Now()))

	list, err := NewDynamoStore(db, "t", "bob", blobs, 0).List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("bob saw alice's history: %v, %v", ids(list), err)
	}
}

func TestDynamoStoreTTL(t *testing.T) {
	db := &fakeDynamo{}
	s := NewDynamoStore(db, "t", "o", &fakeBlobs{}, 24*time.Hour)
	at := time.Unix(1700000000, 0)
	s.Add(context.Background(), sample("a", at))

	exp, ok := db.items[0]["expiresAt"].(*types.AttributeValueMemberN)
	if !ok || exp.Value != "1700086400" {
		t.Errorf("unexpected expiresAt %v", db.items[0]["expiresAt"])
	}
}

func TestDynamoStoreBlobFailure(t *testing.T) {
	db := &fakeDynamo{}
	s := NewDynamoStore(db, "t", "o", &fakeBlobs{fail: true}, 0)
	if err := s.Add(context.Background(), sample("a", time.Now())); err == nil {
		t.Fatal("expected error")
	}
	if len(db.items) != 0 {
		t.Error("metadata written despite blob failure")
	}
}

func TestImageSKOrdersNewestFirst(t *testing.T) {
	older := imageSK(time.Unix(100, 0), "x")
	newer := imageSK(time.Unix(200, 0), "x")
	if newer >= older {
		t.Errorf("expected newer SK %q to sort before %q", newer, older)
	}
}
