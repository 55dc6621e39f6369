// Package events publishes studio notifications to Amazon EventBridge.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"
)

// Source is the EventBridge source of every event.
const Source = "textfx-studio"

// DetailTypeImageGenerated marks a successful generation.
const DetailTypeImageGenerated = "ImageGenerated"

// API is the subset of the EventBridge client used by Emitter.
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// ImageGenerated is the event detail. Image bytes are never included.
type ImageGenerated struct {
	SessionID  string    `json:"sessionId"`
	ImageID    string    `json:"imageId"`
	Text       string    `json:"text"`
	Prompt     string    `json:"prompt"`
	MIMEType   string    `json:"mimeType"`
	ImageBytes int       `json:"imageBytes"`
	Model      string    `json:"model"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Emitter sends events to one bus.
type Emitter struct {
	client API
	bus    string
}

// NewEmitter creates an emitter for busName ("" means the default bus).
func NewEmitter(client API, busName string) *Emitter {
	return &Emitter{client: client, bus: busName}
}

// EmitImageGenerated publishes an ImageGenerated event.
func (e *Emitter) EmitImageGenerated(ctx context.Context, event ImageGenerated) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ImageGenerated: %w", err)
	}

	entry := eventbridgetypes.PutEventsRequestEntry{
		Source:     aws.String(Source),
		DetailType: aws.String(DetailTypeImageGenerated),
		Detail:     aws.String(string(detail)),
	}
	if e.bus != "" {
		entry.EventBusName = aws.String(e.bus)
	}

	result, err := e.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{entry},
	})
	if err != nil {
		log.Error().Err(err).Str("imageId", event.ImageID).Msg("EventBridge PutEvents failed")
		return fmt.Errorf("PutEvents: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil || entry.ErrorMessage != nil {
				log.Error().
					Int("index", i).
					Str("errorCode", aws.ToString(entry.ErrorCode)).
					Str("errorMessage", aws.ToString(entry.ErrorMessage)).
					Str("imageId", event.ImageID).
					Msg("EventBridge PutEvents entry failed")
				return fmt.Errorf("PutEvents entry %d failed: %s - %s", i, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
	}

	log.Debug().Str("imageId", event.ImageID).Msg("ImageGenerated emitted to EventBridge")
	return nil
}
