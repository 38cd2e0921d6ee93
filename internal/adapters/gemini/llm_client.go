package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mikey/email-triage/internal/fallback"
)

// Client is a fallback model backed by Google Gemini
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewClient creates a new Gemini fallback model
func NewClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"

	return &Client{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Name returns the configured model name
func (c *Client) Name() string {
	return "gemini/" + c.modelName
}

// Complete generates content for the prompt and returns the concatenated text parts
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(system), genai.Text(prompt))
	if err != nil {
		return "", c.wrapError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%s: %w", c.Name(), fallback.ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%s: %w", c.Name(), fallback.ErrEmptyResponse)
	}

	c.logger.Debug("Gemini content generated",
		zap.String("model", c.modelName),
		zap.Int("response_size", b.Len()))

	return b.String(), nil
}

// wrapError maps REST and gRPC failures onto HTTP status codes
func (c *Client) wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &fallback.StatusError{Model: c.Name(), Code: apiErr.Code, Err: err}
	}

	switch status.Code(err) {
	case codes.NotFound:
		return &fallback.StatusError{Model: c.Name(), Code: http.StatusNotFound, Err: err}
	case codes.Unavailable:
		return &fallback.StatusError{Model: c.Name(), Code: http.StatusServiceUnavailable, Err: err}
	case codes.DeadlineExceeded:
		return &fallback.StatusError{Model: c.Name(), Code: http.StatusGatewayTimeout, Err: err}
	case codes.PermissionDenied, codes.Unauthenticated:
		return &fallback.StatusError{Model: c.Name(), Code: http.StatusForbidden, Err: err}
	}
	return fmt.Errorf("failed to generate content with Gemini: %w", err)
}
