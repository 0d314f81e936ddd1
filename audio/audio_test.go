package audio

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeOutput records scheduled chunks against a manually advanced clock.
type fakeOutput struct {
	now       float64
	scheduled []scheduled
	gain      float64
	suspended bool
	closed    bool
}

type scheduled struct {
	id float32
	at float64
}

func (f *fakeOutput) Now() float64 { return f.now }
func (f *fakeOutput) Schedule(chunk []float32, at float64) {
	f.scheduled = append(f.scheduled, scheduled{id: chunk[0], at: at})
}
func (f *fakeOutput) SetVolume(gain float64) { f.gain = gain }
func (f *fakeOutput) Suspended() bool        { return f.suspended }
func (f *fakeOutput) Suspend() error         { f.suspended = true; return nil }
func (f *fakeOutput) Resume() error          { f.suspended = false; return nil }
func (f *fakeOutput) Close() error           { f.closed = true; return nil }

// chunk returns 20 ms of audio whose samples all equal id.
func chunk(id float32) []float32 {
	return chunkN(id, SampleRate/50)
}

func chunkN(id float32, n int) []float32 {
	c := make([]float32, n)
	for i := range c {
		c[i] = id
	}
	return c
}

func TestDecodePCM(t *testing.T) {
	want := []float32{0, 1, -0.5, 0.25}
	data := EncodePCM(nil, want)
	data = append(data, 0xAA, 0xBB) // partial trailing sample

	got := DecodePCM(data)
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(DecodePCM([]byte{1, 2, 3})) != 0 {
		t.Fatal("short buffer decoded samples")
	}
}

func TestLevel(t *testing.T) {
	l := NewLevel()
	if l.Db() != -120 {
		t.Fatalf("initial level %v", l.Db())
	}
	// A full scale square wave has a mean square of 1, i.e. 0 dB.
	got := l.Update([]float32{1, -1, 1, -1})
	want := -120*0.9 + 10*math.Log10(1+1e-12)*0.1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("level %v, want %v", got, want)
	}
	// Silence stays finite.
	l.Reset()
	if v := l.Update(make([]float32, 64)); math.IsInf(v, 0) || math.IsNaN(v) {
		t.Fatalf("silence level %v", v)
	}
}

func TestQueueFIFOAndGrowth(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < 40; i++ {
		q.Push([]float32{float32(i)})
	}
	if q.Len() != 40 || q.Samples() != 40 {
		t.Fatalf("len=%d samples=%d", q.Len(), q.Samples())
	}
	for i := 0; i < 40; i++ {
		c, ok := q.PopFront()
		if !ok || c[0] != float32(i) {
			t.Fatalf("pop %d = %v, %v", i, c, ok)
		}
	}
	if _, ok := q.PopFront(); ok {
		t.Fatal("pop from empty queue")
	}
}

func TestQueueDropsOldest(t *testing.T) {
	q := NewQueue(3)
	q.Push([]float32{1})
	q.Push([]float32{2})
	q.Push([]float32{3})
	if dropped := q.Push([]float32{4, 4}); dropped != 2 {
		t.Fatalf("dropped %d", dropped)
	}
	if c, _ := q.Front(); c[0] != 3 {
		t.Fatalf("front = %v", c)
	}
	if q.Samples() != 3 {
		t.Fatalf("samples = %d", q.Samples())
	}
}

func TestPrebufferGate(t *testing.T) {
	s := NewScheduler(DefaultConfig(), nil)
	out := &fakeOutput{}
	for i := 1; i <= 19; i++ {
		s.Push(chunk(float32(i)))
		if n := s.Pump(out); n != 0 {
			t.Fatalf("scheduled %d chunks after %d arrivals", n, i)
		}
	}
	s.Push(chunk(20))
	if n := s.Pump(out); n == 0 {
		t.Fatal("nothing scheduled after the 20th chunk")
	}
}

func TestSchedulingOrderAndTimeline(t *testing.T) {
	s := NewScheduler(DefaultConfig(), nil)
	out := &fakeOutput{}
	next := float32(0)
	last := 0.0
	for tick := 0; tick < 300; tick++ {
		// Bursty arrivals: nothing for a while then several chunks at once.
		if tick%5 == 0 {
			for j := 0; j < 5; j++ {
				s.Push(chunk(next))
				next++
			}
		}
		s.Pump(out)
		if s.Timeline() < last {
			t.Fatalf("timeline went backwards: %v -> %v", last, s.Timeline())
		}
		last = s.Timeline()
		out.now += 1.0 / 60
	}
	if len(out.scheduled) == 0 {
		t.Fatal("nothing scheduled")
	}
	for i, sc := range out.scheduled {
		if sc.id != float32(i) {
			t.Fatalf("chunk %d scheduled as #%d", int(sc.id), i)
		}
		if i > 0 && sc.at < out.scheduled[i-1].at {
			t.Fatalf("chunk %d starts before its predecessor", i)
		}
	}
}

func TestGuardLimitsLookahead(t *testing.T) {
	s := NewScheduler(DefaultConfig(), nil)
	out := &fakeOutput{now: 1}
	// 1/16 s chunks keep the timeline arithmetic exact.
	for i := 0; i < 16; i++ {
		s.Push(chunkN(float32(i), SampleRate/16))
	}
	n := s.Pump(out)
	// Chunks are scheduled while timeline-now < 0.2: 0, 1/16, 2/16, 3/16.
	if n != 4 {
		t.Fatalf("scheduled %d chunks", n)
	}
	if out.scheduled[0].at != 1 {
		t.Fatalf("first chunk at %v, want the current clock", out.scheduled[0].at)
	}
}

func TestUnderrunRearmsPrebuffer(t *testing.T) {
	s := NewScheduler(DefaultConfig(), nil)
	out := &fakeOutput{}
	for i := 0; i < 20; i++ {
		s.Push(chunk(float32(i)))
	}
	for out.now < 1 {
		s.Pump(out)
		out.now += 1.0 / 60
	}
	if s.Primed() {
		t.Fatal("gate still open after the queue ran dry")
	}
	s.Push(chunk(100))
	if n := s.Pump(out); n != 0 {
		t.Fatalf("scheduled %d chunks while rebuffering", n)
	}
	for i := 0; i < 19; i++ {
		s.Push(chunk(float32(101 + i)))
	}
	if n := s.Pump(out); n == 0 {
		t.Fatal("playback did not resume once the prebuffer refilled")
	}
	if got := out.scheduled[20].at; got < out.now {
		t.Fatalf("resumed chunk scheduled in the past: %v < %v", got, out.now)
	}
}

func TestLateChunkWaitsForPrebuffer(t *testing.T) {
	s := NewScheduler(DefaultConfig(), nil)
	out := &fakeOutput{}
	for i := 0; i < 20; i++ {
		s.Push(chunk(float32(i)))
	}
	for s.Queued() > 0 {
		s.Pump(out)
		out.now += 0.1
	}
	// The clock overtakes the timeline and a chunk lands in the same tick.
	out.now = s.Timeline() + 1
	s.Push(chunk(100))
	if n := s.Pump(out); n != 0 {
		t.Fatalf("scheduled %d chunks after a gap without rebuffering", n)
	}
	if s.Primed() {
		t.Fatal("gate still open after the clock passed the timeline")
	}
}

func TestResetRewindsTimeline(t *testing.T) {
	s := NewScheduler(DefaultConfig(), nil)
	out := &fakeOutput{}
	for i := 0; i < 30; i++ {
		s.Push(chunk(float32(i)))
	}
	s.Pump(out)
	s.Reset()
	if s.Timeline() != 0 || s.Queued() != 0 || s.Primed() {
		t.Fatalf("after reset timeline=%v queued=%v primed=%v", s.Timeline(), s.Queued(), s.Primed())
	}
	if s.Pump(nil) != 0 {
		t.Fatal("pump without output scheduled audio")
	}
}

func TestOverflowIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := DefaultConfig()
	cfg.MaxQueue = 0.1
	s := NewScheduler(cfg, zap.New(core))
	for i := 0; i < 6; i++ {
		s.Push(chunk(float32(i)))
	}
	if s.Queued() > 0.1 {
		t.Fatalf("queued %v s over the cap", s.Queued())
	}
	if logs.Len() != 1 {
		t.Fatalf("got %d warnings", logs.Len())
	}
}

func TestRingSourcePadsGapsWithSilence(t *testing.T) {
	r := newRingSource(SampleRate, nil)
	r.schedule([]float32{0.5, 0.5}, 2)

	buf := make([]byte, 6*bytesPerSample)
	n, err := r.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("read %d, %v", n, err)
	}
	got := DecodePCM(buf)
	want := []float32{0, 0, 0.5, 0.5, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("samples %v, want %v", got, want)
		}
	}
	if r.consumed() != 6 {
		t.Fatalf("consumed %d", r.consumed())
	}

	// The clock ran past the scheduled audio; the next chunk starts at the
	// read position rather than in the past.
	r.schedule([]float32{1}, 3)
	n, _ = r.Read(buf[:bytesPerSample])
	if DecodePCM(buf[:n])[0] != 1 {
		t.Fatal("late chunk not played immediately")
	}
}
