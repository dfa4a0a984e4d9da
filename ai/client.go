package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a client for a Cloudflare Workers AI style text-generation endpoint:
// POST {baseURL}/accounts/{accountID}/ai/run/{model}
type Client struct {
	client    *http.Client
	baseURL   string
	accountID string
	model     string
	apiToken  string
}

func NewClient(baseURL, accountID, model, apiToken string, timeout time.Duration) *Client {
	return &Client{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		accountID: accountID,
		model:     model,
		apiToken:  apiToken,
	}
}

// Endpoint returns the URL the client posts to
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)
}

// Generate sends prompt with the fixed generation parameters.
// Every failure is returned as *GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string) (text string, err error) {
	ctx, span := otel.Tracer("ai").Start(ctx, "ai.Generate")
	span.SetAttributes(attribute.String("ai.model", c.model))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	jsonData, err := json.Marshal(GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		TopP:        TopP,
	})
	if err != nil {
		return "", &GenerationError{Detail: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &GenerationError{Detail: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		// the URL names the account; only the transport failure is reported
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", &GenerationError{Detail: "request failed: " + err.Error(), Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		detail := fmt.Sprintf("status %d", httpResp.StatusCode)
		if s := strings.TrimSpace(string(snippet)); s != "" {
			detail += ": " + s
		}
		return "", &GenerationError{Detail: detail}
	}

	var body GenerateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&body); err != nil {
		return "", &GenerationError{Detail: "malformed response payload", Err: err}
	}
	if body.Result == nil {
		detail := "response has no result"
		if len(body.Errors) > 0 {
			detail = body.Errors[0].Message
		}
		return "", &GenerationError{Detail: detail}
	}

	text = strings.TrimSpace(body.Result.Response)
	if text == "" {
		return "", &GenerationError{Detail: "empty model response"}
	}
	return text, nil
}
