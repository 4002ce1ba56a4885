package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFFdata"), 0o644))
	return path
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Endpoint: "://bad"})
	assert.Error(t, err)
}

func TestTranscribe(t *testing.T) {
	var gotModel, gotLang, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		gotAuth = r.Header.Get("Authorization")
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		w.Write([]byte(`{"text": "привет мир"}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, APIKey: "secret", Model: "whisper-1"})
	require.NoError(t, err)

	text, err := c.Transcribe(context.Background(), writeWav(t), "ru")
	require.NoError(t, err)
	assert.Equal(t, "привет мир", text)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "ru", gotLang)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad audio", "type": "invalid_request"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Transcribe(context.Background(), writeWav(t), "ru")
	assert.ErrorContains(t, err, "bad audio")
}

func TestTranscribeSerialized(t *testing.T) {
	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		w.Write([]byte(`{"text": "ok"}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, Serialize: true})
	require.NoError(t, err)

	path := writeWav(t)
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := c.Transcribe(context.Background(), path, "ru")
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.Equal(t, 1, maxInFlight, "serialized client must not issue concurrent calls")
}
