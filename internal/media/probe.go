package media

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Metadata is what ffprobe reports about a media file
type Metadata struct {
	Duration float64
	Width    int
	Height   int
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

// Prober reads metadata of a local file
type Prober func(path string) (*Metadata, error)

// FFProbe runs ffprobe on path through ffmpeg-go
func FFProbe(path string) (*Metadata, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe([]byte(raw))
}

func parseProbe(raw []byte) (*Metadata, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	meta := &Metadata{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		meta.Duration = d
	}
	for _, s := range out.Streams {
		if s.CodecType == "video" && meta.Width == 0 {
			meta.Width = s.Width
			meta.Height = s.Height
		}
		if meta.Duration == 0 {
			if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
				meta.Duration = d
			}
		}
	}
	return meta, nil
}
