// Package session owns the audio and waterfall sockets, the audio output
// and the spectral state for one viewing session.
package session

import (
	"context"
	"fmt"
	"math"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/corecast/client/audio"
	"github.com/corecast/client/coords"
	"github.com/corecast/client/errutil"
	"github.com/corecast/client/events"
	"github.com/corecast/client/spectrum"
	"github.com/corecast/client/stream"
)

type Config struct {
	AudioURL     string `dialsdesc:"audio websocket URL" dialsflag:"audio-url"`
	WaterfallURL string `dialsdesc:"waterfall websocket URL" dialsflag:"waterfall-url"`
	StationUUID  string `dialsdesc:"station to tune, sent with every tune request" dialsflag:"station"`

	Freq      float64 `dialsdesc:"initial frequency in Hz"`
	Mode      string  `dialsdesc:"initial mode (wbfm, nbfm, am, usb, lsb)"`
	Bandwidth float64 `dialsdesc:"initial bandwidth in Hz"`
	SpanMin   float64 `dialsdesc:"initial lower edge of the visible span in Hz"`
	SpanMax   float64 `dialsdesc:"initial upper edge of the visible span in Hz"`
	MinDb     float64 `dialsdesc:"waterfall floor in dB"`
	MaxDb     float64 `dialsdesc:"waterfall ceiling in dB"`
	Volume    float64 `dialsdesc:"initial volume, 0-100"`

	SmoothFrames int     `dialsdesc:"PSD smoothing length in display frames"`
	PeakDecay    float64 `dialsdesc:"PSD peak hold decay per display frame"`

	Audio audio.Config
}

func DefaultConfig() Config {
	return Config{
		AudioURL:     "ws://localhost:8080/audio",
		WaterfallURL: "ws://localhost:8080/waterfall",
		Freq:         101e6,
		Mode:         string(ModeWBFM),
		Bandwidth:    150e3,
		SpanMin:      100e6,
		SpanMax:      102.048e6,
		MinDb:        -120,
		MaxDb:        -40,
		Volume:       30,
		SmoothFrames: spectrum.DefaultSmoothFrames,
		PeakDecay:    spectrum.DefaultPeakDecay,
		Audio:        audio.DefaultConfig(),
	}
}

// Options wire a Session to its collaborators. Zero values select the real
// implementations.
type Options struct {
	Config   Config
	UserUUID string
	Log      *zap.Logger
	Bus      *events.Bus
	Dialer   stream.Dialer
	// NewOutput creates the audio output graph when playback starts.
	NewOutput func() (audio.Output, error)
	// OnAudioChunk sees every decoded audio chunk while playing.
	OnAudioChunk func([]float32)
}

// Session is driven entirely from the display loop: Tick drains socket
// events, advances the smoother and feeds the audio output.
type Session struct {
	cfg      Config
	userUUID string
	log      *zap.Logger
	bus      *events.Bus
	ownsBus  bool

	tuning  Tuning
	span    coords.Span
	display Display
	volume  float64
	playing bool

	audioConn *stream.Conn
	wfConn    *stream.Conn
	newOutput func() (audio.Output, error)
	out       audio.Output
	sched     *audio.Scheduler
	level     *audio.Level
	onChunk   func([]float32)

	smoother *spectrum.Smoother
	frame    spectrum.Frame
}

func New(opts Options) (*Session, error) {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	s := &Session{
		cfg:      cfg,
		userUUID: opts.UserUUID,
		log:      log,
		bus:      bus,
		ownsBus:  opts.Bus == nil,
		tuning: Tuning{
			Freq:      cfg.Freq,
			Mode:      Mode(cfg.Mode),
			Bandwidth: cfg.Bandwidth,
		},
		span:      coords.Span{MinHz: cfg.SpanMin, MaxHz: cfg.SpanMax},
		display:   Display{MinDb: cfg.MinDb, MaxDb: cfg.MaxDb, Zoom: 1},
		volume:    coords.Clamp(cfg.Volume, 0, 100),
		newOutput: opts.NewOutput,
		sched:     audio.NewScheduler(cfg.Audio, log.Named("audio")),
		level:     audio.NewLevel(),
		onChunk:   opts.OnAudioChunk,
		smoother:  spectrum.NewSmoother(cfg.SmoothFrames, cfg.PeakDecay),
	}
	if err := s.tuning.validate(); err != nil {
		return nil, fmt.Errorf("initial tuning: %w", err)
	}
	if !s.span.Valid() {
		return nil, fmt.Errorf("initial span: %w", ErrInvalidSpan)
	}
	if s.newOutput == nil {
		ahead := max(1, 2*cfg.Audio.Guard)
		s.newOutput = func() (audio.Output, error) {
			return audio.NewOtoOutput(ahead, log.Named("output"))
		}
	}

	s.audioConn = stream.New(stream.Options{
		Name:      "audio",
		URL:       cfg.AudioURL,
		Dialer:    opts.Dialer,
		Log:       log,
		OnOpen:    s.tuneMessage,
		OnMessage: s.onAudio,
		OnError:   s.connError("audio"),
		OnClose:   s.audioClosed,
	})
	s.wfConn = stream.New(stream.Options{
		Name:      "waterfall",
		URL:       cfg.WaterfallURL,
		Dialer:    opts.Dialer,
		Log:       log,
		OnOpen:    s.spanMessage,
		OnMessage: s.onWaterfall,
		OnError:   s.connError("waterfall"),
	})
	return s, nil
}

// Bus returns the bus session events are published on.
func (s *Session) Bus() *events.Bus { return s.bus }

// Start connects the waterfall socket.
func (s *Session) Start(ctx context.Context) {
	s.wfConn.Open(ctx)
}

// Play starts audio: it creates the output graph if needed, resumes it,
// applies the volume and connects the audio socket, which sends the tune
// request once open.
func (s *Session) Play(ctx context.Context) error {
	if s.out == nil {
		out, err := s.newOutput()
		if err != nil {
			s.bus.Publish(events.ConnectionError{Stream: "audio", Err: err})
			return fmt.Errorf("create audio output: %w", err)
		}
		s.out = out
	}
	if s.out.Suspended() {
		if err := s.out.Resume(); err != nil {
			errutil.LogError(s.log, "resume audio output", err)
		}
	}
	s.out.SetVolume(s.gain())

	if s.audioConn.State() == stream.Open {
		s.sendTune()
	} else {
		s.audioConn.Open(ctx)
	}
	if !s.playing {
		s.playing = true
		s.bus.Publish(events.PlayStateChanged{Playing: true})
	}
	return nil
}

// Stop closes the audio socket, rewinds the timeline and releases the
// output graph. Audio still in flight is discarded.
func (s *Session) Stop() {
	s.audioConn.Close()
	s.sched.Reset()
	if s.out != nil {
		errutil.LogError(s.log, "close audio output", s.out.Close())
		s.out = nil
	}
	if s.playing {
		s.playing = false
		s.bus.Publish(events.PlayStateChanged{Playing: false})
	}
}

// SetTuning replaces the tuning. While playing the new tuning is sent on the
// existing audio connection.
func (s *Session) SetTuning(t Tuning) error {
	if err := t.validate(); err != nil {
		return err
	}
	if t == s.tuning {
		return nil
	}
	s.tuning = t
	s.bus.Publish(events.TuningChanged{Freq: t.Freq, Mode: string(t.Mode), Bandwidth: t.Bandwidth})
	if s.playing {
		s.sendTune()
	}
	return nil
}

// SetSpan replaces the visible span and tells the waterfall server,
// connecting first if needed.
func (s *Session) SetSpan(span coords.Span) error {
	if !span.Valid() {
		return ErrInvalidSpan
	}
	if span == s.span {
		return nil
	}
	s.span = span
	s.bus.Publish(events.SpanChanged{Span: span})
	s.sendSpan()
	return nil
}

// SetWaterfallDisplay replaces the waterfall colour range and zoom.
func (s *Session) SetWaterfallDisplay(d Display) {
	if d == s.display {
		return
	}
	s.display = d
	s.bus.Publish(events.DisplayChanged{MinDb: d.MinDb, MaxDb: d.MaxDb, Zoom: d.Zoom})
}

// SetVolume sets the volume in [0,100].
func (s *Session) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.volume = coords.Clamp(v, 0, 100)
	if s.out != nil {
		s.out.SetVolume(s.gain())
	}
}

func (s *Session) gain() float64 { return s.volume / 100 }

// Tick runs once per display frame.
func (s *Session) Tick() {
	s.wfConn.Poll()
	s.audioConn.Poll()
	s.smoother.Tick()
	if s.playing && s.out != nil {
		s.sched.Pump(s.out)
	}
}

// Close tears the whole session down.
func (s *Session) Close() {
	s.Stop()
	s.wfConn.Close()
	if s.ownsBus {
		s.bus.Close()
	}
}

func (s *Session) IsPlaying() bool             { return s.playing }
func (s *Session) AudioDb() float64            { return s.level.Db() }
func (s *Session) Tuning() Tuning              { return s.tuning }
func (s *Session) Span() coords.Span           { return s.span }
func (s *Session) Display() Display            { return s.display }
func (s *Session) Volume() float64             { return s.volume }
func (s *Session) LatestFrame() spectrum.Frame { return s.frame }

// Smoothed and Peak return the PSD buffers. They are overwritten by the next
// Tick.
func (s *Session) Smoothed() []float64 { return s.smoother.Smoothed() }
func (s *Session) Peak() []float64     { return s.smoother.Peak() }

// QueuedAudio returns the seconds of audio waiting to be scheduled.
func (s *Session) QueuedAudio() float64 { return s.sched.Queued() }

func (s *Session) tuneMessage() *stream.Message {
	data, err := json.Marshal(tuneMessage{
		Type:        "tune",
		Freq:        s.tuning.Freq,
		Mode:        s.tuning.Mode,
		BW:          s.tuning.Bandwidth,
		NR:          s.tuning.NoiseReduction,
		Notch:       s.tuning.Notch,
		Sql:         s.tuning.Squelch,
		UserUUID:    s.userUUID,
		StationUUID: s.cfg.StationUUID,
	})
	if err != nil {
		errutil.LogError(s.log, "marshal tune", err)
		return nil
	}
	return &stream.Message{Data: data}
}

func (s *Session) spanMessage() *stream.Message {
	data, err := json.Marshal(spanMessage{Type: "span", Min: s.span.MinHz, Max: s.span.MaxHz})
	if err != nil {
		errutil.LogError(s.log, "marshal span", err)
		return nil
	}
	return &stream.Message{Data: data}
}

func (s *Session) sendTune() {
	if msg := s.tuneMessage(); msg != nil {
		s.audioConn.Send(*msg)
	}
}

func (s *Session) sendSpan() {
	if msg := s.spanMessage(); msg != nil {
		s.wfConn.Send(*msg)
	}
}

func (s *Session) onAudio(msg stream.Message) {
	if !s.playing || !msg.Binary {
		return
	}
	chunk := audio.DecodePCM(msg.Data)
	if len(chunk) == 0 {
		return
	}
	s.bus.Publish(events.LevelChanged{Db: s.level.Update(chunk)})
	if s.onChunk != nil {
		s.onChunk(chunk)
	}
	s.sched.Push(chunk)
}

func (s *Session) onWaterfall(msg stream.Message) {
	var wm waterfallMessage
	if err := json.Unmarshal(msg.Data, &wm); err != nil {
		s.log.Debug("ignoring malformed waterfall message", zap.Error(err))
		return
	}
	if wm.Type != "waterfall" || len(wm.Data) == 0 {
		s.log.Debug("ignoring waterfall message", zap.String("type", wm.Type), zap.Int("bins", len(wm.Data)))
		return
	}
	s.frame = wm.Data
	s.smoother.Push(s.frame)
	s.bus.Publish(events.FrameReceived{Bins: s.frame})
}

// audioClosed runs when the audio socket goes down on its own. Playback
// stops and the output graph is suspended until the next Play.
func (s *Session) audioClosed() {
	s.sched.Reset()
	if s.out != nil {
		errutil.LogError(s.log, "suspend audio output", s.out.Suspend())
	}
	if s.playing {
		s.playing = false
		s.bus.Publish(events.PlayStateChanged{Playing: false})
	}
}

func (s *Session) connError(name string) func(error) {
	return func(err error) {
		s.bus.Publish(events.ConnectionError{Stream: name, Err: err})
	}
}
