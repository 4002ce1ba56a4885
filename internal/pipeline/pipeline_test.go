package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cortexhub/mediabot/internal/sandbox"
)

// stubProber returns a fixed probe result.
type stubProber struct {
	info MediaInfo
	err  error
}

func (s *stubProber) Probe(ctx context.Context, path string) (MediaInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return MediaInfo{}, err
	}
	return s.info, s.err
}

// stubTranscoder records calls and writes fixed output files.
type stubTranscoder struct {
	cropped    bool
	cropSide   int
	normalized bool
	output     []byte
	err        error
}

func (s *stubTranscoder) CropSquare(ctx context.Context, inPath, outPath string, side int) error {
	if s.err != nil {
		return s.err
	}
	s.cropped = true
	s.cropSide = side
	return os.WriteFile(outPath, s.output, 0o600)
}

func (s *stubTranscoder) NormalizePCM(ctx context.Context, inPath, outPath string) error {
	if s.err != nil {
		return s.err
	}
	s.normalized = true
	return os.WriteFile(outPath, s.output, 0o600)
}

// stubRecognizer returns a fixed transcript.
type stubRecognizer struct {
	text   string
	err    error
	called bool
}

func (s *stubRecognizer) Transcribe(ctx context.Context, wavPath, lang string) (string, error) {
	s.called = true
	return s.text, s.err
}

// stubTranslator returns a fixed translation.
type stubTranslator struct {
	result Translation
	err    error
	called bool
}

func (s *stubTranslator) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	s.called = true
	return s.result, s.err
}

// stubSynthesizer returns fixed audio bytes.
type stubSynthesizer struct {
	audio  []byte
	err    error
	called bool
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	s.called = true
	return s.audio, s.err
}

func newTestSandbox(t *testing.T) (*sandbox.Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := sandbox.NewManager(dir, nil)
	require.NoError(t, err)
	return m, dir
}

func sandboxEmpty(t *testing.T, dir string) bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries) == 0
}

var errEngine = errors.New("engine blew up")
