// Package whisper is a client for a Whisper-compatible transcription HTTP
// API (OpenAI audio/transcriptions wire format).
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Client transcribes audio files. When serialize is set, calls are gated
// behind a single-slot mutex for backends that cannot take concurrent
// requests; other pipeline kinds are unaffected.
type Client struct {
	endpoint  string
	apiKey    string
	model     string
	http      *http.Client
	serialize bool
	mu        sync.Mutex
}

// Config configures the client.
type Config struct {
	Endpoint  string
	APIKey    string
	Model     string
	Serialize bool
}

// New validates the endpoint and returns a client. A bad endpoint is a
// startup failure: the caller runs the speech-to-text adapter in
// unavailable mode rather than crashing.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("whisper endpoint not configured")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid whisper endpoint: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		model:     model,
		http:      &http.Client{Timeout: 5 * time.Minute},
		serialize: cfg.Serialize,
	}, nil
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Transcribe uploads a normalized WAV file and returns the transcript.
func (c *Client) Transcribe(ctx context.Context, wavPath, lang string) (string, error) {
	if c.serialize {
		c.mu.Lock()
		defer c.mu.Unlock()
	}

	file, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	_ = writer.WriteField("model", c.model)
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("transcription API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API returned status %d", resp.StatusCode)
	}
	return parsed.Text, nil
}
