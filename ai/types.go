package ai

import "fmt"

// Generation parameters sent with every request
const (
	MaxTokens   = 60
	Temperature = 0.7
	TopP        = 0.9
)

// GenerateRequest is the body of a text-generation call
type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// GenerateResponse is the envelope returned by the generation API
type GenerateResponse struct {
	Result *struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// GenerationError wraps any failure of the generation call.
// Detail is safe to show to clients.
type GenerationError struct {
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("text generation failed: %s", e.Detail)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
