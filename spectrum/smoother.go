// Package spectrum holds the per-bin smoothing and peak-hold state fed by
// waterfall frames and advanced once per display tick.
package spectrum

const (
	DefaultSmoothFrames = 8
	DefaultPeakDecay    = 0.99995
)

// Frame is one spectrum line as received from the server, one power value
// per bin.
type Frame []float64

// Smoother keeps an exponential moving average and a decaying peak hold of
// the most recent frame. Frames may arrive at any rate; Tick must be driven
// by the display loop so that the peak decay runs at a constant speed.
type Smoother struct {
	alpha    float64
	decay    float64
	raw      []float64
	smoothed []float64
	peak     []float64
}

// NewSmoother creates a smoother averaging over frames ticks with the given
// per-tick peak decay. Non-positive arguments select the defaults.
func NewSmoother(frames int, peakDecay float64) *Smoother {
	if frames <= 0 {
		frames = DefaultSmoothFrames
	}
	if peakDecay <= 0 || peakDecay > 1 {
		peakDecay = DefaultPeakDecay
	}
	return &Smoother{
		alpha: 1 / float64(frames),
		decay: peakDecay,
	}
}

// Push replaces the raw input with frame. A change in bin count reallocates
// the smoothed and peak buffers zero-filled. Empty frames are ignored.
func (s *Smoother) Push(frame Frame) {
	if len(frame) == 0 {
		return
	}
	if len(frame) != len(s.raw) {
		s.raw = make([]float64, len(frame))
		s.smoothed = make([]float64, len(frame))
		s.peak = make([]float64, len(frame))
	}
	copy(s.raw, frame)
}

// Tick advances every bin by one display frame.
func (s *Smoother) Tick() {
	a := s.alpha
	for i, v := range s.raw {
		sm := s.smoothed[i]*(1-a) + v*a
		s.smoothed[i] = sm
		s.peak[i] = max(s.peak[i]*s.decay, sm)
	}
}

// Reset drops all state.
func (s *Smoother) Reset() {
	s.raw, s.smoothed, s.peak = nil, nil, nil
}

// Len returns the current bin count.
func (s *Smoother) Len() int { return len(s.raw) }

// Smoothed returns the smoothed buffer. The slice is owned by the smoother
// and is overwritten by the next Tick.
func (s *Smoother) Smoothed() []float64 { return s.smoothed }

// Peak returns the peak-hold buffer, owned by the smoother.
func (s *Smoother) Peak() []float64 { return s.peak }

// Alpha returns the smoothing coefficient applied per tick.
func (s *Smoother) Alpha() float64 { return s.alpha }

// Decay returns the peak decay applied per tick.
func (s *Smoother) Decay() float64 { return s.decay }
