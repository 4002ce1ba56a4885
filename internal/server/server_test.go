package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexhub/mediabot/internal/conversation"
)

func TestHealthHandler(t *testing.T) {
	store := conversation.NewStore()
	store.Get("1")
	store.Get("2")
	s := New("127.0.0.1", 0, Status{ChannelEnabled: true, RecognizerAvailable: false}, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 2, resp.Conversations)
	assert.True(t, resp.Services["telegram"].Healthy)
	assert.False(t, resp.Services["recognizer"].Healthy)
	assert.NotEmpty(t, resp.Services["recognizer"].Message)
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	s := New("127.0.0.1", 0, Status{}, conversation.NewStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
