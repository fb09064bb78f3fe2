package storage

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration reads a video's length in seconds with ffprobe.
func ProbeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeDuration([]byte(out))
}

func parseProbeDuration(raw []byte) (float64, error) {
	var p probeOutput
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if p.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", p.Format.Duration, err)
	}
	return d, nil
}
