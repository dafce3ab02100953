package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const serviceBedrock = "bedrock"

// converseAPI is the slice of the Bedrock runtime client Bedrock uses.
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockConfig configures the Bedrock Converse client.
type BedrockConfig struct {
	ModelID   string
	Region    string
	MaxTokens int
	Timeout   time.Duration
}

// Bedrock calls Claude through the AWS Bedrock Converse API.
type Bedrock struct {
	api       converseAPI
	modelID   string
	maxTokens int
	timeout   time.Duration
}

// NewBedrock loads the default AWS credential chain for cfg.Region.
func NewBedrock(ctx context.Context, cfg BedrockConfig) (*Bedrock, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("upstream: load aws config: %w", err)
	}
	return newBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func newBedrock(api converseAPI, cfg BedrockConfig) *Bedrock {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	return &Bedrock{api: api, modelID: cfg.ModelID, maxTokens: cfg.MaxTokens, timeout: cfg.Timeout}
}

func (b *Bedrock) Name() string     { return serviceBedrock }
func (b *Bedrock) Configured() bool { return b.api != nil && b.modelID != "" }

// Complete maps req onto a Converse call. Non-user roles become assistant
// turns.
func (b *Bedrock) Complete(ctx context.Context, req CompletionRequest) (out Completion, err error) {
	ctx, done := instrument(ctx, serviceBedrock, "complete")
	defer func() { done(err) }()

	if !b.Configured() {
		return Completion{}, ErrNotConfigured
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var system []brtypes.SystemContentBlock
	if s := strings.TrimSpace(req.System); s != "" {
		system = append(system, &brtypes.SystemContentBlockMemberText{Value: s})
	}
	messages := make([]brtypes.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := brtypes.ConversationRoleAssistant
		if m.Role == "user" {
			role = brtypes.ConversationRoleUser
		}
		messages = append(messages, brtypes.Message{
			Role:    role,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.Content}},
		})
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = b.maxTokens
	}

	resp, err := b.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(b.modelID),
		System:          system,
		Messages:        messages,
		InferenceConfig: &brtypes.InferenceConfiguration{MaxTokens: aws.Int32(int32(maxTokens))},
	})
	if err != nil {
		return Completion{}, bedrockError(err)
	}

	out = Completion{Model: b.modelID, StopReason: string(resp.StopReason)}
	if msg, ok := resp.Output.(*brtypes.ConverseOutputMemberMessage); ok {
		for _, block := range msg.Value.Content {
			if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
				out.Text = text.Value
				break
			}
		}
	}
	return out, nil
}

func bedrockError(err error) error {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return &Error{Service: serviceBedrock, Status: re.HTTPStatusCode(), Message: re.Err.Error(), Err: err}
	}
	return &Error{Service: serviceBedrock, Message: "converse failed", Err: err}
}
