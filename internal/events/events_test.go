package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

type fakeBridge struct {
	input *eventbridge.PutEventsInput
	out   *eventbridge.PutEventsOutput
	err   error
}

func (f *fakeBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.input = in
	if f.out == nil {
		f.out = &eventbridge.PutEventsOutput{}
	}
	return f.out, f.err
}

func TestEmitImageGenerated(t *testing.T) {
	client := &fakeBridge{}
	e := NewEmitter(client, "studio-bus")

	err := e.EmitImageGenerated(context.Background(), ImageGenerated{
		ImageID:    "img-1",
		Text:       "HELLO",
		ImageBytes: 42,
		CreatedAt:  time.Unix(1700000000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := client.input.Entries[0]
	if aws.ToString(entry.Source) != Source || aws.ToString(entry.DetailType) != DetailTypeImageGenerated {
		t.Errorf("unexpected entry %+v", entry)
	}
	if aws.ToString(entry.EventBusName) != "studio-bus" {
		t.Errorf("unexpected bus %q", aws.ToString(entry.EventBusName))
	}

	var detail map[string]any
	if err := json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail); err != nil {
		t.Fatal(err)
	}
	if detail["imageId"] != "img-1" || detail["imageBytes"] != float64(42) {
		t.Errorf("unexpected detail %v", detail)
	}
}

func TestEmitDefaultBus(t *testing.T) {
	client := &fakeBridge{}
	NewEmitter(client, "").EmitImageGenerated(context.Background(), ImageGenerated{ImageID: "x"})
	if client.input.Entries[0].EventBusName != nil {
		t.Error("default bus should leave EventBusName unset")
	}
}

func TestEmitFailures(t *testing.T) {
	boom := errors.New("throttled")
	if err := NewEmitter(&fakeBridge{err: boom}, "").EmitImageGenerated(context.Background(), ImageGenerated{}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}

	failed := &fakeBridge{out: &eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []eventbridgetypes.PutEventsResultEntry{{
			ErrorCode:    aws.String("InternalFailure"),
			ErrorMessage: aws.String("try again"),
		}},
	}}
	if err := NewEmitter(failed, "").EmitImageGenerated(context.Background(), ImageGenerated{}); err == nil {
		t.Error("expected error for failed entry")
	}
}
