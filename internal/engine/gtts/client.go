// Package gtts is a client for the web translate_tts endpoint (the service
// gTTS wraps) producing voice-message audio.
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultBaseURL = "https://translate.google.com/translate_tts"

	// The endpoint rejects long inputs; gTTS splits at roughly this size
	// and concatenates the audio segments.
	maxChunkRunes = 200
)

// Client synthesizes speech for a fixed output voice.
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
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize voices text in the given language and returns the audio bytes.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	var audio []byte
	for _, chunk := range splitChunks(text, maxChunkRunes) {
		part, err := c.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		audio = append(audio, part...)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis produced no audio")
	}
	return audio, nil
}

func (c *Client) fetchChunk(ctx context.Context, text, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts endpoint returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return data, nil
}

// splitChunks breaks text into rune-bounded chunks, preferring whitespace
// boundaries so words are not cut mid-syllable.
func splitChunks(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	words := strings.Fields(text)
	var sb strings.Builder
	count := 0
	for _, w := range words {
		wlen := utf8.RuneCountInString(w)
		if count > 0 && count+1+wlen > maxRunes {
			chunks = append(chunks, sb.String())
			sb.Reset()
			count = 0
		}
		// A single word longer than the chunk size is split hard.
		if wlen > maxRunes {
			if count > 0 {
				chunks = append(chunks, sb.String())
				sb.Reset()
				count = 0
			}
			runes := []rune(w)
			for len(runes) > maxRunes {
				chunks = append(chunks, string(runes[:maxRunes]))
				runes = runes[maxRunes:]
			}
			w = string(runes)
			wlen = len(runes)
		}
		if count > 0 {
			sb.WriteByte(' ')
			count++
		}
		sb.WriteString(w)
		count += wlen
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}
