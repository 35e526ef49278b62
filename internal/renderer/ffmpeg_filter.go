package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// GraphParams describes one export.
type GraphParams struct {
	Table        timeline.RemapTable
	Regions      []zoom.Region // output time
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
	FPS          int
	HasAudio     bool
}

// Graph is a -filter_complex value and the labels to -map.
type Graph struct {
	Filter string
	Video  string
	Audio  string
}

// BuildExportGraph cuts every enabled segment out of input 0, retimes it by
// its speed, joins the pieces in order and applies the zoom camera to the
// result.
func BuildExportGraph(p GraphParams) Graph {
	var b strings.Builder
	n := len(p.Table)

	for i, e := range p.Table {
		fmt.Fprintf(&b, "[0:v]trim=start=%.6f:end=%.6f,setpts=(PTS-STARTPTS)/%.6f[v%d];",
			e.SourceStart, e.SourceEnd, e.Speed, i)
		if p.HasAudio {
			fmt.Fprintf(&b, "[0:a]atrim=start=%.6f:end=%.6f,asetpts=PTS-STARTPTS,%s[a%d];",
				e.SourceStart, e.SourceEnd, atempoChain(e.Speed), i)
		}
	}

	video, audio := "[v0]", ""
	if p.HasAudio {
		audio = "[a0]"
	}
	if n > 1 {
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "[v%d]", i)
			if p.HasAudio {
				fmt.Fprintf(&b, "[a%d]", i)
			}
		}
		if p.HasAudio {
			fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[vcat][acat];", n)
			audio = "[acat]"
		} else {
			fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[vcat];", n)
		}
		video = "[vcat]"
	}

	sw, sh := float64(p.SourceWidth), float64(p.SourceHeight)
	keyframes := CameraKeyframes(p.Regions, p.Table.TotalOutputDuration(), sw, sh)
	if zp := GenerateZoomPanFilter(keyframes, p.FPS, sw, sh, p.Width, p.Height); zp != "" {
		fmt.Fprintf(&b, "%s%s,setsar=1[vout]", video, zp)
	} else {
		fmt.Fprintf(&b, "%sfps=%d,scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[vout]",
			video, p.FPS, p.Width, p.Height, p.Width, p.Height)
	}

	return Graph{Filter: b.String(), Video: "[vout]", Audio: audio}
}

// atempo accepts factors in [0.5, 2.0] on every ffmpeg we care about, so
// larger changes are chained.
func atempoChain(speed float64) string {
	var parts []string
	for speed > 2.0+1e-9 {
		parts = append(parts, "atempo=2.0")
		speed /= 2
	}
	for speed < 0.5-1e-9 {
		parts = append(parts, "atempo=0.5")
		speed /= 0.5
	}
	if math.Abs(speed-1) > 1e-9 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("atempo=%.6f", speed))
	}
	return strings.Join(parts, ",")
}

// GenerateZoomPanFilter creates an ffmpeg zoompan filter whose zoom and pan
// follow the keyframes. x and y are the top-left of the crop in source
// pixels.
func GenerateZoomPanFilter(keyframes []Keyframe, fps int, srcW, srcH float64, width, height int) string {
	if len(keyframes) == 0 {
		return ""
	}

	zoomExpr := buildExpression(keyframes, fps, func(kf Keyframe) float64 { return kf.Scale })
	xExpr := buildExpression(keyframes, fps, func(kf Keyframe) float64 { return kf.FocusX - srcW/(2*kf.Scale) })
	yExpr := buildExpression(keyframes, fps, func(kf Keyframe) float64 { return kf.FocusY - srcH/(2*kf.Scale) })

	return fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=1:s=%dx%d:fps=%d",
		zoomExpr, xExpr, yExpr, width, height, fps)
}

// buildExpression creates a piecewise-linear expression over the output
// frame number:
//
//	if(lte(on,f1),v0+(on-f0)/(f1-f0)*(v1-v0),if(lte(on,f2),...,vN))
func buildExpression(keyframes []Keyframe, fps int, value func(Keyframe) float64) string {
	last := value(keyframes[len(keyframes)-1])
	if len(keyframes) == 1 {
		return fmt.Sprintf("%.6f", last)
	}

	var b strings.Builder
	open := 0
	for i := 0; i < len(keyframes)-1; i++ {
		startFrame := int(math.Round(keyframes[i].Time * float64(fps)))
		endFrame := int(math.Round(keyframes[i+1].Time * float64(fps)))
		if endFrame <= startFrame {
			continue
		}
		from, to := value(keyframes[i]), value(keyframes[i+1])
		if math.Abs(to-from) < 1e-9 {
			fmt.Fprintf(&b, "if(lte(on,%d),%.6f,", endFrame, from)
		} else {
			fmt.Fprintf(&b, "if(lte(on,%d),%.6f+(on-%d)/%d*(%.6f),",
				endFrame, from, startFrame, endFrame-startFrame, to-from)
		}
		open++
	}
	fmt.Fprintf(&b, "%.6f", last)
	b.WriteString(strings.Repeat(")", open))
	return b.String()
}
