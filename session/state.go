package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/corecast/client/coords"
)

// Mode is the demodulator mode requested from the server.
type Mode string

const (
	ModeWBFM Mode = "wbfm"
	ModeNBFM Mode = "nbfm"
	ModeAM   Mode = "am"
	ModeUSB  Mode = "usb"
	ModeLSB  Mode = "lsb"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeWBFM, ModeNBFM, ModeAM, ModeUSB, ModeLSB}

// Next returns the mode after m in Modes, wrapping around. Unknown modes
// return the first one.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeWBFM, ModeNBFM, ModeAM, ModeUSB, ModeLSB:
		return true
	}
	return false
}

var (
	ErrInvalidFrequency = errors.New("frequency must be finite")
	ErrInvalidBandwidth = errors.New("bandwidth must be positive")
	ErrInvalidMode      = errors.New("unknown mode")
	ErrInvalidSpan      = errors.New("span must be finite with max above min")
)

// Tuning is what the demodulator is asked to produce.
type Tuning struct {
	Freq           float64
	Mode           Mode
	Bandwidth      float64
	NoiseReduction bool
	Notch          bool
	Squelch        float64
}

// Window returns the tuned window.
func (t Tuning) Window() coords.Window {
	return coords.Window{Freq: t.Freq, Bandwidth: t.Bandwidth}
}

// WithWindow returns t retuned to w.
func (t Tuning) WithWindow(w coords.Window) Tuning {
	t.Freq = w.Freq
	t.Bandwidth = w.Bandwidth
	return t
}

func (t Tuning) validate() error {
	if math.IsNaN(t.Freq) || math.IsInf(t.Freq, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, t.Freq)
	}
	if !(t.Bandwidth > 0) || math.IsInf(t.Bandwidth, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidBandwidth, t.Bandwidth)
	}
	if !t.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, t.Mode)
	}
	return nil
}

// Display is the waterfall colour range and zoom.
type Display struct {
	MinDb float64
	MaxDb float64
	Zoom  float64
}

// tuneMessage is sent on the audio socket.
type tuneMessage struct {
	Type        string  `json:"type"`
	Freq        float64 `json:"freq"`
	Mode        Mode    `json:"mode"`
	BW          float64 `json:"bw"`
	NR          bool    `json:"nr"`
	Notch       bool    `json:"notch"`
	Sql         float64 `json:"sql"`
	UserUUID    string  `json:"user_uuid,omitempty"`
	StationUUID string  `json:"station_uuid,omitempty"`
}

// spanMessage is sent on the waterfall socket.
type spanMessage struct {
	Type string  `json:"type"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// waterfallMessage is received on the waterfall socket.
type waterfallMessage struct {
	Type string    `json:"type"`
	Data []float64 `json:"data"`
}
