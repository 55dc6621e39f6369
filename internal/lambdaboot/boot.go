// Package lambdaboot holds the AWS bootstrap shared by the Lambda handler and
// the CLI when it runs against AWS backends: config loading, client
// construction, and the SSM lookup of the Gemini API key.
package lambdaboot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/events"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/logging"
	"github.com/slicken/TextFx-Studio/internal/s3util"
)

// APIKeyParamEnv names the SSM parameter holding the Gemini API key.
const APIKeyParamEnv = "SSM_API_KEY_PARAM"

// DefaultAPIKeyParam is used when APIKeyParamEnv is unset.
const DefaultAPIKeyParam = "/textfx-studio/prod/gemini-api-key"

// HistoryBlobPrefix is the key prefix for history image bytes.
const HistoryBlobPrefix = "history-blobs"

// ParamAPI is the subset of the SSM client used here.
type ParamAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSClients holds the loaded config and the clients built from it.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds an S3 client, its presigner, and the bucket name.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// InitAWS loads the default AWS config.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}, nil
}

// InitS3 creates an S3 client and presigner for bucket.
func InitS3(cfg aws.Config, bucket string) S3Clients {
	client := s3.NewFromConfig(cfg)
	return S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

// DynamoHistory returns a constructor for per-owner DynamoDB history stores.
// Image bytes go to the given bucket under HistoryBlobPrefix.
func DynamoHistory(cfg aws.Config, table string, blobs S3Clients, ttl time.Duration) func(owner string) history.Store {
	ddb := dynamodb.NewFromConfig(cfg)
	store := &s3util.Blobs{Client: blobs.Client, Bucket: blobs.Bucket, Prefix: HistoryBlobPrefix}
	return func(owner string) history.Store {
		return history.NewDynamoStore(ddb, table, owner, store, ttl)
	}
}

// InitEmitter creates an EventBridge emitter for bus.
func InitEmitter(cfg aws.Config, bus string) *events.Emitter {
	return events.NewEmitter(eventbridge.NewFromConfig(cfg), bus)
}

// LoadGeminiKey fetches the Gemini API key from SSM Parameter Store unless
// GEMINI_API_KEY is already set, and exports it as GEMINI_API_KEY.
func LoadGeminiKey(ctx context.Context, client ParamAPI) error {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return nil
	}
	paramName := APIKeyParam()
	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to read API key from SSM parameter %s: %w", paramName, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return errors.New("SSM parameter " + paramName + " is empty")
	}
	os.Setenv("GEMINI_API_KEY", aws.ToString(result.Parameter.Value))
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("Gemini API key loaded from SSM")
	return nil
}

// APIKeyParam returns the configured SSM parameter name.
func APIKeyParam() string {
	if p := os.Getenv(APIKeyParamEnv); p != "" {
		return p
	}
	return DefaultAPIKeyParam
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
