package ui

import (
	"image/color"
	"sync"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/corecast/client/events"
	"github.com/corecast/client/session"
)

type widgets struct {
	Root     *widget.Container
	TopBar   *TopBar
	Display  *Display
	Controls *Controls
}

type UI struct {
	mu       sync.RWMutex
	update   bool
	exit     bool
	cfg      Config
	log      *zap.Logger
	sess     *session.Session
	pointer  *pointerRouter
	Width    int
	Height   int
	eui      *ebitenui.UI
	Widgets  widgets
	deferred []func()
}

type Config struct {
	Touch      bool `dialsdesc:"Touchscreen mode" dialsflag:"touch"`
	FPS        int  `dialsdesc:"Framerate" dialsflag:"fps"`
	Fullscreen bool `dialsdesc:"Start in fullscreen"`
}

func DefaultConfig() Config {
	return Config{FPS: 60}
}

func NewUI(cfg Config, sess *session.Session, log *zap.Logger) *UI {
	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.NRGBA{0x12, 0x23, 0x34, 0xff})),
		widget.ContainerOpts.Layout(widget.NewGridLayout(
			widget.GridLayoutOpts.Columns(1),
			widget.GridLayoutOpts.Stretch([]bool{true}, []bool{false, true, false}),
			widget.GridLayoutOpts.Padding(widget.NewInsetsSimple(4)),
			widget.GridLayoutOpts.Spacing(0, 4),
		)),
	)

	u := &UI{
		cfg:     cfg,
		log:     log,
		sess:    sess,
		pointer: newPointerRouter(sess, log.Named("pointer")),
		eui: &ebitenui.UI{
			Container: rootContainer,
		},
		Widgets: widgets{
			Root: rootContainer,
		},
	}
	u.MakeLayout()

	ebiten.SetTPS(cfg.FPS)
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1024, 640)
	ebiten.SetWindowSizeLimits(720, 480, -1, -1)
	ebiten.SetWindowTitle("CoreCast")
	if cfg.Touch {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}
	if cfg.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	return u
}

func (u *UI) MakeLayout() {
	u.Widgets.TopBar = u.MakeTopBar()
	u.Widgets.Display = u.MakeDisplay()
	u.Widgets.Controls = u.MakeControls()
	u.Widgets.Root.AddChild(u.Widgets.TopBar.Container, u.Widgets.Display.Container, u.Widgets.Controls.Container)
}

// HandleEvents applies session events on the UI goroutine. It returns when
// ch is closed.
func (u *UI) HandleEvents(ch chan events.Event) {
	for ev := range ch {
		u.Defer(func() { u.handleEvent(ev) })
	}
}

func (u *UI) handleEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.TuningChanged:
		u.Widgets.TopBar.SetTuning(e.Freq, e.Mode, e.Bandwidth)
	case events.FrameReceived:
		u.Widgets.Display.Waterfall.AddRow(e.Bins)
	case events.DisplayChanged:
		u.Widgets.Display.Waterfall.SetRange(e.MinDb, e.MaxDb)
	case events.LevelChanged:
		u.Widgets.TopBar.SetLevel(e.Db)
	case events.PlayStateChanged:
		u.SetPlaying(e.Playing)
		if e.Playing {
			u.Widgets.TopBar.SetStatus("", nil)
		}
	case events.ConnectionError:
		u.Widgets.TopBar.SetStatus(e.Stream, e.Err)
	}
}

func (u *UI) Update() error {
	if u.exit || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	u.handleRangeKeys()
	u.sess.Tick()
	u.runDeferred()
	u.Widgets.TopBar.Update(u)
	u.Widgets.Display.Update(u)
	u.eui.Update()
	u.update = true
	return nil
}

const (
	rangeStepDb = 5
	minRangeDb  = 10
)

// handleRangeKeys moves the waterfall colour range: up/down shift it, left
// and right widen and narrow it.
func (u *UI) handleRangeKeys() {
	var lo, hi float64
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		lo, hi = rangeStepDb, rangeStepDb
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		lo, hi = -rangeStepDb, -rangeStepDb
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		lo, hi = -rangeStepDb, rangeStepDb
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		lo, hi = rangeStepDb, -rangeStepDb
	default:
		return
	}
	d := u.sess.Display()
	d.MinDb += lo
	d.MaxDb += hi
	if d.MaxDb-d.MinDb < minRangeDb {
		return
	}
	u.sess.SetWaterfallDisplay(d)
}

func (u *UI) runDeferred() {
	u.mu.Lock()
	deferred := u.deferred
	u.deferred = nil
	u.mu.Unlock()
	for _, cb := range deferred {
		cb()
	}
}

func (u *UI) Draw(screen *ebiten.Image) {
	if !u.update {
		return
	}
	u.update = false
	screen.Clear()

	u.eui.Draw(screen)
}

func (u *UI) Layout(width, height int) (int, int) {
	if u.Width != width || u.Height != height {
		u.Width = width
		u.Height = height
		u.log.Debug("layout", zap.Int("width", width), zap.Int("height", height))
	}
	return width, height
}

func (u *UI) Defer(cb func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deferred = append(u.deferred, cb)
}
