package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type AudioInfo struct {
	Duration   float64 `json:"duration"`
	Codec      string  `json:"codec"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
}

// GetAudioInfo probes an audio file with ffprobe through ffmpeg-go.
func GetAudioInfo(path string) (*AudioInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	jsonOutput, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe audio: %w", err)
	}
	return parseProbeOutput(jsonOutput, fileInfo.Size())
}

func parseProbeOutput(jsonOutput string, fallbackSize int64) (*AudioInfo, error) {
	var result struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &AudioInfo{Format: "unknown"}
	hasAudio := false
	for _, stream := range result.Streams {
		if stream.CodecType == "audio" {
			hasAudio = true
			info.Codec = stream.CodecName
			info.Channels = stream.Channels
			info.SampleRate, _ = strconv.Atoi(stream.SampleRate)
			break
		}
	}
	if !hasAudio {
		return nil, ErrInvalidFileType
	}

	info.Duration, _ = strconv.ParseFloat(result.Format.Duration, 64)

	size, err := strconv.ParseInt(result.Format.Size, 10, 64)
	if err != nil {
		size = fallbackSize
	}
	info.Size = size

	if parts := strings.Split(result.Format.Format, ","); parts[0] != "" {
		info.Format = parts[0]
	}
	return info, nil
}

// GetFFmpegVersion checks that ffmpeg is installed. ffmpeg-go has no version
// command, so this shells out directly.
func GetFFmpegVersion() (string, error) {
	cmd := exec.Command("ffmpeg", "-version", "-hide_banner")
	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg not available: %v, %s", err, errOut.String())
	}

	return out.String(), nil
}
