package audio

import (
	"go.uber.org/zap"
)

// Config tunes the jitter buffer.
type Config struct {
	Prebuffer float64 `dialsdesc:"seconds of audio queued before playback starts"`
	Guard     float64 `dialsdesc:"how far ahead of the output clock audio is scheduled, in seconds"`
	MaxQueue  float64 `dialsdesc:"maximum seconds of queued audio; older audio is dropped"`
}

func DefaultConfig() Config {
	return Config{
		Prebuffer: 0.4,
		Guard:     0.2,
		MaxQueue:  5,
	}
}

// Output is an audio graph that plays chunks at absolute times on its own
// clock.
type Output interface {
	// Now returns the output clock in seconds.
	Now() float64
	// Schedule plays chunk starting at the given clock time.
	Schedule(chunk []float32, at float64)
	SetVolume(gain float64)
	Suspended() bool
	Suspend() error
	Resume() error
	Close() error
}

// Scheduler moves chunks from the pending queue onto an Output, keeping a
// running timeline so consecutive chunks play back to back.
type Scheduler struct {
	cfg      Config
	log      *zap.Logger
	queue    *Queue
	timeline float64
	primed   bool
}

func NewScheduler(cfg Config, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cfg:   cfg,
		log:   log,
		queue: NewQueue(int(cfg.MaxQueue * SampleRate)),
	}
}

// Push queues a decoded chunk.
func (s *Scheduler) Push(chunk []float32) {
	if dropped := s.queue.Push(chunk); dropped > 0 {
		s.log.Warn("audio queue overflow, dropped oldest audio",
			zap.Float64("dropped_s", Duration(dropped)),
			zap.Float64("queued_s", s.queue.Duration()),
		)
	}
}

// Pump schedules queued chunks onto out until the timeline is at least the
// guard interval ahead of the output clock. Nothing is scheduled until the
// prebuffer threshold has been queued; if the queue runs dry and the
// timeline falls behind the clock, the threshold applies again. It returns
// the number of chunks scheduled.
func (s *Scheduler) Pump(out Output) int {
	if out == nil {
		return 0
	}
	now := out.Now()
	if s.primed && s.timeline < now && s.queue.Duration() < s.cfg.Prebuffer {
		s.primed = false
		s.log.Debug("audio underrun, rebuffering", zap.Float64("behind_s", now-s.timeline))
	}
	if !s.primed {
		if s.queue.Duration() < s.cfg.Prebuffer {
			return 0
		}
		s.primed = true
		s.log.Debug("prebuffer satisfied", zap.Float64("queued_s", s.queue.Duration()))
	}

	n := 0
	for s.queue.Len() > 0 && s.timeline-now < s.cfg.Guard {
		chunk, _ := s.queue.PopFront()
		at := max(s.timeline, now)
		out.Schedule(chunk, at)
		s.timeline = at + Duration(len(chunk))
		n++
	}

	if s.queue.Len() == 0 && s.timeline <= now {
		s.primed = false
		s.log.Debug("audio underrun, rebuffering")
	}
	return n
}

// Reset drops queued audio and rewinds the timeline.
func (s *Scheduler) Reset() {
	s.queue.Clear()
	s.timeline = 0
	s.primed = false
}

// Timeline returns the start time of the next chunk to be scheduled.
func (s *Scheduler) Timeline() float64 { return s.timeline }

// Queued returns the seconds of audio awaiting scheduling.
func (s *Scheduler) Queued() float64 { return s.queue.Duration() }

// Primed reports whether the prebuffer gate is open.
func (s *Scheduler) Primed() bool { return s.primed }
