package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/smallnest/ringbuffer"
	"go.uber.org/zap"
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   40 * time.Millisecond,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// OtoOutput plays scheduled chunks through the system audio device. Chunks
// are laid out on a sample-accurate timeline in a ring buffer that the oto
// player drains; gaps between chunks are filled with silence.
type OtoOutput struct {
	ctx       *oto.Context
	player    *oto.Player
	src       *ringSource
	suspended bool
}

// NewOtoOutput opens the audio device and starts a player with room for
// ahead seconds of scheduled audio.
func NewOtoOutput(ahead float64, log *zap.Logger) (*OtoOutput, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	src := newRingSource(int(ahead*SampleRate), log)
	o := &OtoOutput{
		ctx:    ctx,
		src:    src,
		player: ctx.NewPlayer(src),
	}
	o.player.Play()
	return o, nil
}

// Now returns the seconds of audio the device has actually played.
func (o *OtoOutput) Now() float64 {
	played := o.src.consumed() - int64(o.player.BufferedSize()/bytesPerSample)
	return Duration(int(max(played, 0)))
}

func (o *OtoOutput) Schedule(chunk []float32, at float64) {
	o.src.schedule(chunk, int64(at*SampleRate))
}

func (o *OtoOutput) SetVolume(gain float64) {
	o.player.SetVolume(gain)
}

func (o *OtoOutput) Suspended() bool {
	return o.suspended
}

// Suspend pauses the device.
func (o *OtoOutput) Suspend() error {
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspend audio: %w", err)
	}
	o.suspended = true
	return nil
}

func (o *OtoOutput) Resume() error {
	if err := o.ctx.Resume(); err != nil {
		return fmt.Errorf("resume audio: %w", err)
	}
	o.suspended = false
	return nil
}

// Close stops the player. The device context is process wide and stays
// open for the next output.
func (o *OtoOutput) Close() error {
	return o.player.Close()
}

// ringSource is the io.Reader handed to the oto player. It tracks two
// absolute sample positions: read, the next sample handed to the device, and
// written, one past the last scheduled sample. The ring holds [read,written).
type ringSource struct {
	mu      sync.Mutex
	rb      *ringbuffer.RingBuffer
	read    int64
	written int64
	scratch []byte
	log     *zap.Logger
}

func newRingSource(samples int, log *zap.Logger) *ringSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &ringSource{
		rb:  ringbuffer.New(max(samples, SampleRate/10) * bytesPerSample),
		log: log,
	}
}

// Read always fills dest, padding with silence when nothing is scheduled so
// the device clock keeps running.
func (r *ringSource) Read(dest []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dest = dest[:len(dest)/bytesPerSample*bytesPerSample]
	n, err := r.rb.Read(dest)
	if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
		return 0, err
	}
	clear(dest[n:])
	r.read += int64(len(dest) / bytesPerSample)
	if r.read > r.written {
		r.written = r.read
	}
	return len(dest), nil
}

func (r *ringSource) schedule(chunk []float32, at int64) {
	if len(chunk) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	gap := at - r.written
	if gap < 0 {
		// at is already playing; the chunk joins back to back
		gap = 0
	}
	need := int(gap+int64(len(chunk))) * bytesPerSample
	if free := r.rb.Free(); need > free {
		r.log.Warn("output ring full, dropping audio",
			zap.Int("need_bytes", need), zap.Int("free_bytes", free))
		return
	}

	r.scratch = r.scratch[:0]
	r.scratch = append(r.scratch, make([]byte, int(gap)*bytesPerSample)...)
	r.scratch = EncodePCM(r.scratch, chunk)
	n, err := r.rb.Write(r.scratch)
	if err != nil {
		r.log.Warn("output ring write", zap.Error(err))
	}
	r.written += int64(n / bytesPerSample)
}

func (r *ringSource) consumed() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read
}
