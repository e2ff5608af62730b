// Package musicgen maps an emotional state to musical generation
// parameters. The mapping is pure and total: it performs no I/O and never
// fails, falling back to a default scale for labels it does not know.
// Actual sound rendering is left to downstream consumers.
package musicgen

import (
	"math"
	"strconv"
	"strings"
)

// RGB holds color channels normalized to [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Params describes how a synthesizer would render the submitted emotion.
// Field names follow the persisted JSON layout.
type Params struct {
	// Scale is the ordered set of semitone offsets from the tonic.
	Scale []int `json:"scale"`
	// BaseFrequency is the tonic pitch in Hz, in [220, 440].
	BaseFrequency int `json:"baseFrequency"`
	// Tempo is beats per minute, in [60, 200].
	Tempo int `json:"tempo"`
	// Duration is the suggested piece length in seconds.
	Duration int `json:"duration"`
	// Color echoes the submitted color as normalized channels.
	Color RGB `json:"color"`
	// Intensity and Emotion echo the input unchanged.
	Intensity int    `json:"intensity"`
	Emotion   string `json:"emotion"`
}

const fallbackEmotion = "calm"

const fallbackDuration = 8

var emotionScales = map[string][]int{
	"happy":     {0, 2, 4, 5, 7, 9, 11},
	"sad":       {0, 3, 5, 6, 8, 10},
	"calm":      {0, 2, 4, 7, 9},
	"energetic": {0, 1, 3, 5, 6, 8, 10},
	"angry":     {0, 3, 5, 6, 7, 10},
	"nostalgic": {0, 2, 3, 5, 7, 8, 10},
}

var emotionDurations = map[string]int{
	"happy":     8,
	"sad":       12,
	"calm":      10,
	"energetic": 6,
	"angry":     5,
	"nostalgic": 10,
}

// Generate derives music parameters from an emotion label, a "#RRGGBB"
// color and an intensity in [0, 100]. Lookup is case-insensitive; unknown
// labels get the calm scale and the default duration instead of an error.
// Color syntax is expected to be validated by the caller.
func Generate(emotion, color string, intensity int) Params {
	rgb := parseHexColor(color)
	key := strings.ToLower(emotion)

	scale, ok := emotionScales[key]
	if !ok {
		scale = emotionScales[fallbackEmotion]
	}
	// Copy so callers cannot mutate the table.
	out := make([]int, len(scale))
	copy(out, scale)

	duration, ok := emotionDurations[key]
	if !ok {
		duration = fallbackDuration
	}

	brightness := (rgb.R + rgb.G + rgb.B) / 3

	return Params{
		Scale:         out,
		BaseFrequency: int(math.Round(220 + brightness*220)),
		Tempo:         int(math.Round(60 + float64(intensity)*1.4)),
		Duration:      duration,
		Color:         rgb,
		Intensity:     intensity,
		Emotion:       emotion,
	}
}

// parseHexColor splits "#RRGGBB" into normalized channels. Malformed
// channels parse as zero; the transport layer guarantees well-formed input.
func parseHexColor(color string) RGB {
	hex := strings.TrimPrefix(color, "#")
	return RGB{
		R: hexChannel(hex, 0),
		G: hexChannel(hex, 2),
		B: hexChannel(hex, 4),
	}
}

func hexChannel(hex string, offset int) float64 {
	if len(hex) < offset+2 {
		return 0
	}
	v, err := strconv.ParseUint(hex[offset:offset+2], 16, 16)
	if err != nil {
		return 0
	}
	return float64(v) / 255
}
