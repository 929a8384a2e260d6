// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package genai implements the client for the hosted text-generation
// endpoint. It builds a request from a system instruction and a user prompt,
// sends it over HTTPS, and extracts the first candidate's text.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 120 * time.Second

// UpstreamError reports a failed call to the generation endpoint, either a
// non-success HTTP status or a transport failure that never produced one.
type UpstreamError struct {
	StatusCode int // zero when the request never reached the endpoint
	Body       string
	Err        error // underlying transport error, nil for status failures
}

// Error implements the error interface. The message carries the status code
// so it can be surfaced to the user verbatim.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return "generation endpoint unreachable: " + e.Err.Error()
	}
	return fmt.Sprintf("generation endpoint returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client calls a fixed text-generation endpoint.
type Client struct {
	endpoint   string
	apiKey     string // optional; attached as a bearer credential when set
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint. apiKey may be empty.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// request/response shapes for the generateContent wire format.
type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction content   `json:"system_instruction"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the user prompt with the given system instruction and
// returns the first candidate's text. A response without candidates yields
// empty text, not an error; only transport failures and non-2xx statuses fail.
func (c *Client) Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	body := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []contentPart{{Text: userPrompt}}},
		},
		SystemInstruction: content{Role: "system", Parts: []contentPart{{Text: systemInstruction}}},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
