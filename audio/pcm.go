// Package audio turns a jittery stream of PCM chunks into gapless playback.
package audio

import (
	"encoding/binary"
	"math"
)

const (
	SampleRate     = 48000
	bytesPerSample = 4

	levelEpsilon = 1e-12
	levelFloorDb = -120
)

// DecodePCM decodes little-endian float32 mono samples. Trailing bytes that
// do not form a whole sample are dropped.
func DecodePCM(data []byte) []float32 {
	n := len(data) / bytesPerSample
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*bytesPerSample:]))
	}
	return out
}

// EncodePCM is the inverse of DecodePCM.
func EncodePCM(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s))
	}
	return dst
}

// Duration returns the playback length of n samples in seconds.
func Duration(n int) float64 {
	return float64(n) / SampleRate
}

// Level tracks an exponentially smoothed RMS level in dB.
type Level struct {
	db float64
}

func NewLevel() *Level {
	return &Level{db: levelFloorDb}
}

// Update folds chunk into the smoothed level and returns it.
func (l *Level) Update(chunk []float32) float64 {
	if len(chunk) == 0 {
		return l.db
	}
	var sum float64
	for _, s := range chunk {
		sum += float64(s) * float64(s)
	}
	db := 10 * math.Log10(sum/float64(len(chunk))+levelEpsilon)
	l.db = l.db*0.9 + db*0.1
	return l.db
}

// Db returns the current smoothed level.
func (l *Level) Db() float64 { return l.db }

// Reset returns the level to its floor.
func (l *Level) Reset() { l.db = levelFloorDb }
