// Package openai provides a computer-use provider backed by the OpenAI
// Responses API.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("computer-use-preview"),
//	    openai.WithDisplay(1024, 768),
//	)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := provider.Start(ctx, llm.StartRequest{Task: "Check the latest OpenAI news on bing.com."})
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/entrhq/cua-browser/pkg/llm"
	"github.com/entrhq/cua-browser/pkg/logging"
	"github.com/entrhq/cua-browser/pkg/types"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the hosted computer-use model.
	DefaultModel = "computer-use-preview"

	DefaultDisplayWidth  = 1024
	DefaultDisplayHeight = 768
	DefaultEnvironment   = "browser"
	DefaultTruncation    = "auto"

	// DefaultReasoningSummary is requested on the first turn only.
	DefaultReasoningSummary = "concise"

	// DefaultMaxRetries matches the SDK's own default.
	DefaultMaxRetries = 2
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("openai")
	if err != nil {
		debugLog.Warnf("Failed to initialize openai logger, using stderr fallback: %v", err)
	}
}

// Provider implements llm.Provider over the Responses API.
type Provider struct {
	client openai.Client

	httpClient       *http.Client
	apiKey           string
	baseURL          string
	model            string
	displayWidth     int64
	displayHeight    int64
	environment      string
	truncation       string
	reasoningSummary string
	maxRetries       int
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithDisplay sets the display size advertised in the computer tool.
// It must match the browser viewport.
func WithDisplay(width, height int) ProviderOption {
	return func(p *Provider) {
		p.displayWidth = int64(width)
		p.displayHeight = int64(height)
	}
}

// WithEnvironment sets the computer tool environment ("browser", "mac", ...).
func WithEnvironment(environment string) ProviderOption {
	return func(p *Provider) {
		p.environment = environment
	}
}

// WithTruncation sets the truncation strategy ("auto" or "disabled").
func WithTruncation(truncation string) ProviderOption {
	return func(p *Provider) {
		p.truncation = truncation
	}
}

// WithReasoningSummary sets the reasoning summary requested on Start.
// An empty value omits the reasoning block.
func WithReasoningSummary(summary string) ProviderOption {
	return func(p *Provider) {
		p.reasoningSummary = summary
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithMaxRetries sets how many times the SDK retries a failed request.
func WithMaxRetries(retries int) ProviderOption {
	return func(p *Provider) {
		p.maxRetries = retries
	}
}

// NewProvider creates a new Responses API provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY environment variable.
// If baseURL is not provided via WithBaseURL option, it will check OPENAI_BASE_URL environment variable.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		apiKey:           apiKey,
		baseURL:          DefaultBaseURL,
		model:            DefaultModel,
		displayWidth:     DefaultDisplayWidth,
		displayHeight:    DefaultDisplayHeight,
		environment:      DefaultEnvironment,
		truncation:       DefaultTruncation,
		reasoningSummary: DefaultReasoningSummary,
		maxRetries:       DefaultMaxRetries,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = envBaseURL
		}
	}
	p.baseURL = strings.TrimRight(p.baseURL, "/")

	clientOpts := []option.RequestOption{
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithMaxRetries(p.maxRetries),
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(p.httpClient))
	}
	p.client = openai.NewClient(clientOpts...)

	return p, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used for API requests.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// Start sends the task as the first user message.
func (p *Provider) Start(ctx context.Context, req llm.StartRequest) (*types.Response, error) {
	params := p.baseParams()
	params.Input = responses.ResponseNewParamsInputUnion{
		OfInputItemList: responses.ResponseInputParam{
			responses.ResponseInputItemParamOfMessage(req.Task, responses.EasyInputMessageRoleUser),
		},
	}
	if p.reasoningSummary != "" {
		params.Reasoning = responses.ReasoningParam{
			Summary: responses.ReasoningSummary(p.reasoningSummary),
		}
	}

	debugLog.Debugf("starting conversation with model %s", p.model)
	return p.create(ctx, params)
}

// SubmitScreenshot sends the screenshot as the output of the given call,
// chained to the previous response.
func (p *Provider) SubmitScreenshot(ctx context.Context, req llm.SubmitRequest) (*types.Response, error) {
	if req.PreviousResponseID == "" {
		return nil, fmt.Errorf("previous response id is required")
	}
	if req.CallID == "" {
		return nil, fmt.Errorf("call id is required")
	}

	item := responses.ResponseInputItemParamOfComputerCallOutput(req.CallID,
		responses.ResponseComputerToolCallOutputScreenshotParam{
			ImageURL: openai.String(screenshotDataURL(req.Screenshot)),
		})
	for _, check := range req.AcknowledgedSafetyChecks {
		ack := responses.ResponseInputItemComputerCallOutputAcknowledgedSafetyCheckParam{ID: check.ID}
		if check.Code != "" {
			ack.Code = openai.String(check.Code)
		}
		if check.Message != "" {
			ack.Message = openai.String(check.Message)
		}
		item.OfComputerCallOutput.AcknowledgedSafetyChecks = append(item.OfComputerCallOutput.AcknowledgedSafetyChecks, ack)
	}

	params := p.baseParams()
	params.PreviousResponseID = openai.String(req.PreviousResponseID)
	params.Input = responses.ResponseNewParamsInputUnion{
		OfInputItemList: responses.ResponseInputParam{item},
	}

	debugLog.Debugf("submitting screenshot for call %s (previous response %s, %d bytes)",
		req.CallID, req.PreviousResponseID, len(req.Screenshot))
	return p.create(ctx, params)
}

// baseParams returns the fields shared by every request.
func (p *Provider) baseParams() responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model: p.model,
		Tools: []responses.ToolUnionParam{
			responses.ToolParamOfComputerUsePreview(p.displayHeight, p.displayWidth,
				responses.ComputerToolEnvironment(p.environment)),
		},
		Truncation: responses.ResponseNewParamsTruncation(p.truncation),
	}
}

func (p *Provider) create(ctx context.Context, params responses.ResponseNewParams) (*types.Response, error) {
	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}
	converted := convertResponse(resp)
	debugLog.Debugf("response %s (%s): %d output items", converted.ID, converted.Status, len(converted.Output))
	return converted, nil
}

func screenshotDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
