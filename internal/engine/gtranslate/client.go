// Package gtranslate is a client for the web translate endpoint
// (translate_a/single, the same wire format googletrans speaks).
package gtranslate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cortexhub/mediabot/internal/pipeline"
)

const defaultBaseURL = "https://translate.googleapis.com/translate_a/single"

// Client implements pipeline.Translator.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Translate requests a translation with automatic source detection. The
// detected source language is passed through verbatim.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (pipeline.Translation, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return pipeline.Translation{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pipeline.Translation{}, fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pipeline.Translation{}, fmt.Errorf("translate endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return pipeline.Translation{}, fmt.Errorf("read response: %w", err)
	}
	return parseResponse(data)
}

// parseResponse unpacks the endpoint's nested-array format:
// [[["translated","original",...],...],null,"detected",...]
func parseResponse(data []byte) (pipeline.Translation, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return pipeline.Translation{}, fmt.Errorf("parse translation: %w", err)
	}
	if len(raw) < 3 {
		return pipeline.Translation{}, fmt.Errorf("unexpected translation shape")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return pipeline.Translation{}, fmt.Errorf("parse segments: %w", err)
	}
	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	if sb.Len() == 0 {
		return pipeline.Translation{}, fmt.Errorf("empty translation")
	}

	var detected string
	if err := json.Unmarshal(raw[2], &detected); err != nil {
		detected = ""
	}
	return pipeline.Translation{Text: sb.String(), SourceLang: detected}, nil
}
