// Package vision periodically describes camera frames and feeds the
// descriptions back into the conversation.
package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"naboo-live/audio"
	"naboo-live/config"
	"naboo-live/messages"

	"github.com/bytedance/sonic"
)

// ErrNoDescription is returned when the endpoint answers with no choices
var ErrNoDescription = errors.New("vision response contained no choices")

const dataURIPrefix = "data:image/jpeg;base64,"

// Camera supplies still frames as JPEG bytes
type Camera interface {
	Capture(ctx context.Context) ([]byte, error)
}

// FrameDescriber turns one frame into a textual description
type FrameDescriber interface {
	Describe(ctx context.Context, frame []byte) (string, error)
}

// Describer calls the vision description endpoint over HTTP
type Describer struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	prompt     string
	maxTokens  int
}

// NewDescriber creates a describer from session configuration
func NewDescriber(cfg *config.Config) *Describer {
	return &Describer{
		httpClient: &http.Client{Timeout: cfg.VisionTimeout},
		url:        cfg.VisionURL,
		apiKey:     cfg.APIKey,
		model:      cfg.VisionModel,
		prompt:     cfg.VisionPrompt,
		maxTokens:  cfg.VisionMaxTokens,
	}
}

// Describe posts the frame plus the fixed prompt and returns the first
// choice's description text.
func (d *Describer) Describe(ctx context.Context, frame []byte) (string, error) {
	request := messages.NewVisionRequest(d.model, d.prompt, dataURIPrefix+audio.EncodeChunk(frame), d.maxTokens)
	body, err := sonic.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read vision response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision endpoint returned %d: %s", resp.StatusCode, respBody)
	}

	var response messages.VisionResponse
	if err := sonic.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("parse vision response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", ErrNoDescription
	}
	return response.Choices[0].Message.Content, nil
}
