// Package llm defines the contract between the interaction loop and a hosted
// computer-use model.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/entrhq/cua-browser/pkg/llm"
//	    "github.com/entrhq/cua-browser/pkg/llm/openai"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("computer-use-preview"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    resp, err := provider.Start(context.Background(), llm.StartRequest{
//	        Task: "Check the latest OpenAI news on bing.com.",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    if call := resp.NextCall(); call != nil {
//	        fmt.Println(call.Action)
//	    }
//	}
package llm

import (
	"context"

	"github.com/entrhq/cua-browser/pkg/types"
)

// StartRequest opens a new computer-use conversation.
type StartRequest struct {
	// Task is the natural-language instruction sent as the first user message.
	Task string
}

// SubmitRequest reports the outcome of one computer call back to the model.
type SubmitRequest struct {
	// PreviousResponseID chains the request to the response that issued the call.
	PreviousResponseID string

	// CallID is the call_id of the computer call that was just performed.
	CallID string

	// Screenshot is the PNG of the viewport taken after the action settled.
	Screenshot []byte

	// AcknowledgedSafetyChecks echoes pending safety checks back as accepted.
	AcknowledgedSafetyChecks []types.SafetyCheck
}

// Provider defines the interface for computer-use model integrations.
//
// Providers translate between the provider's wire format and types.Response.
// Transport and API errors are returned to the caller wrapped.
type Provider interface {
	// Start sends the task and returns the model's first response.
	Start(ctx context.Context, req StartRequest) (*types.Response, error)

	// SubmitScreenshot sends a computer_call_output carrying the screenshot
	// and returns the next response in the chain.
	SubmitScreenshot(ctx context.Context, req SubmitRequest) (*types.Response, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
