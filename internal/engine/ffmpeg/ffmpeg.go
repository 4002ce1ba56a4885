// Package ffmpeg shells out to ffmpeg/ffprobe for media probing and
// transcoding.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cortexhub/mediabot/internal/pipeline"
)

// Engine implements pipeline.Prober and pipeline.Transcoder.
type Engine struct {
	ffmpegPath  string
	ffprobePath string
}

func New(ffmpegPath, ffprobePath string) *Engine {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Engine{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Probe reads duration and frame geometry from a media file.
func (e *Engine) Probe(ctx context.Context, path string) (pipeline.MediaInfo, error) {
	out, err := e.run(ctx, e.ffprobePath,
		"-hide_banner",
		"-loglevel", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return pipeline.MediaInfo{}, err
	}

	info, err := parseProbe(out)
	if err != nil {
		return pipeline.MediaInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return info, nil
}

func parseProbe(out []byte) (pipeline.MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return pipeline.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := pipeline.MediaInfo{}
	if probe.Format.Duration != "" {
		info.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	}
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			if info.Duration == 0 && s.Duration != "" {
				info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
			}
			break
		}
	}
	if info.Duration == 0 {
		return info, fmt.Errorf("no duration in ffprobe output")
	}
	return info, nil
}

// CropSquare center-crops to side x side and re-encodes at 30fps with a
// moderate bitrate, the fixed format circular clips are delivered in.
func (e *Engine) CropSquare(ctx context.Context, inPath, outPath string, side int) error {
	filter := fmt.Sprintf("crop=%d:%d:(iw-%d)/2:(ih-%d)/2", side, side, side, side)
	_, err := e.run(ctx, e.ffmpegPath,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", inPath,
		"-vf", filter,
		"-r", "30",
		"-c:v", "libx264",
		"-preset", "medium",
		"-b:v", "1000k",
		"-c:a", "aac",
		outPath,
	)
	return err
}

// NormalizePCM converts any audio container to mono 16kHz linear PCM WAV,
// the sample format the recognition engine expects.
func (e *Engine) NormalizePCM(ctx context.Context, inPath, outPath string) error {
	_, err := e.run(ctx, e.ffmpegPath,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", inPath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		outPath,
	)
	return err
}

func (e *Engine) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", bin, err, detail)
		}
		return nil, fmt.Errorf("%s failed: %w", bin, err)
	}
	return stdout.Bytes(), nil
}
