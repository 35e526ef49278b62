package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// FFprobe loads asset properties by running ffprobe.
type FFprobe struct {
	Binary string
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p FFprobe) Load(ctx context.Context, path string) (Asset, error) {
	if _, err := os.Stat(path); err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height:format=duration",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Asset{}, fmt.Errorf("%w: ffprobe error: %v, output: %s", ErrAssetUnavailable, err, stderr.String())
	}

	asset, err := parseProbe(out)
	if err != nil {
		return Asset{}, err
	}
	asset.Path = path
	return asset, nil
}

func parseProbe(data []byte) (Asset, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return Asset{}, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}

	var asset Asset
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if asset.Width == 0 {
				asset.Width, asset.Height = s.Width, s.Height
			}
		case "audio":
			asset.HasAudio = true
		}
	}
	if asset.Width == 0 || asset.Height == 0 {
		return Asset{}, fmt.Errorf("%w: no video stream", ErrAssetUnavailable)
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return Asset{}, fmt.Errorf("%w: unknown duration %q", ErrAssetUnavailable, probe.Format.Duration)
	}
	asset.Duration = duration
	return asset, nil
}
