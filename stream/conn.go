// Package stream manages one websocket connection whose lifecycle is driven
// from a single loop goroutine.
package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State of a Conn.
type State int

const (
	Disconnected State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	}
	return "disconnected"
}

// Message is one websocket frame.
type Message struct {
	Binary bool
	Data   []byte
}

// Socket is the part of *websocket.Conn a Conn uses.
type Socket interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens sockets.
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// WebsocketDialer dials with gorilla/websocket.
type WebsocketDialer struct {
	Dialer *websocket.Dialer
}

func (d WebsocketDialer) Dial(ctx context.Context, url string) (Socket, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	c, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Options configure a Conn. Callbacks run on the goroutine calling Poll.
type Options struct {
	Name   string
	URL    string
	Dialer Dialer
	Log    *zap.Logger

	// OnOpen returns the first message to send once connected, if any.
	OnOpen    func() *Message
	OnMessage func(Message)
	OnError   func(error)

	// OnClose runs when the connection drops without a call to Close.
	OnClose func()

	// Retries bounds dial attempts within a single Open.
	Retries         uint64
	InitialInterval time.Duration
}

type eventKind int

const (
	evOpened eventKind = iota
	evMessage
	evFailed
)

type event struct {
	gen  uint64
	kind eventKind
	sock Socket
	msg  Message
	err  error
}

// Conn is a websocket that moves Disconnected → Connecting → Open and back
// to Disconnected on error or Close. It never reconnects by itself; the next
// Open or Send starts a new attempt.
//
// All methods except the internal goroutines must be called from one
// goroutine.
type Conn struct {
	opts    Options
	log     *zap.Logger
	state   State
	gen     uint64
	sock    Socket
	ctx     context.Context
	cancel  context.CancelFunc
	base    context.Context
	pending *Message
	inbox   chan event
}

func New(opts Options) *Conn {
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Retries == 0 {
		opts.Retries = 3
	}
	if opts.InitialInterval == 0 {
		opts.InitialInterval = 250 * time.Millisecond
	}
	return &Conn{
		opts:  opts,
		log:   opts.Log.With(zap.String("stream", opts.Name), zap.String("url", opts.URL)),
		base:  context.Background(),
		inbox: make(chan event, 256),
	}
}

// State returns the connection state.
func (c *Conn) State() State { return c.state }

// Open starts connecting unless a connection exists or is pending.
func (c *Conn) Open(ctx context.Context) {
	if c.state != Disconnected {
		return
	}
	c.base = ctx
	c.state = Connecting
	c.gen++
	gen := c.gen
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.log.Debug("connecting")
	go c.dial(c.ctx, gen)
}

func (c *Conn) dial(ctx context.Context, gen uint64) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.opts.Retries), ctx)

	var sock Socket
	err := backoff.RetryNotify(func() error {
		s, err := c.opts.Dialer.Dial(ctx, c.opts.URL)
		if err != nil {
			return err
		}
		sock = s
		return nil
	}, policy, func(err error, wait time.Duration) {
		c.log.Debug("dial failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		c.post(ctx, event{gen: gen, kind: evFailed, err: fmt.Errorf("dial %s: %w", c.opts.URL, err)})
		return
	}
	if !c.post(ctx, event{gen: gen, kind: evOpened, sock: sock}) {
		sock.Close()
	}
}

func (c *Conn) read(ctx context.Context, gen uint64, sock Socket) {
	for {
		mt, data, err := sock.ReadMessage()
		if err != nil {
			c.post(ctx, event{gen: gen, kind: evFailed, err: err})
			return
		}
		if !c.post(ctx, event{gen: gen, kind: evMessage, msg: Message{Binary: mt == websocket.BinaryMessage, Data: data}}) {
			return
		}
	}
}

func (c *Conn) post(ctx context.Context, ev event) bool {
	select {
	case c.inbox <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Poll handles everything the socket goroutines have posted since the last
// call. Events from a connection that has since been closed are discarded.
func (c *Conn) Poll() {
	for {
		select {
		case ev := <-c.inbox:
			c.handle(ev)
		default:
			return
		}
	}
}

func (c *Conn) handle(ev event) {
	if ev.gen != c.gen || c.state == Disconnected {
		if ev.sock != nil {
			ev.sock.Close()
		}
		return
	}
	switch ev.kind {
	case evOpened:
		c.state = Open
		c.sock = ev.sock
		c.log.Info("connected")
		go c.read(c.ctx, c.gen, ev.sock)
		c.flush()
	case evMessage:
		if c.opts.OnMessage != nil {
			c.opts.OnMessage(ev.msg)
		}
	case evFailed:
		c.fail(ev.err)
	}
}

func (c *Conn) flush() {
	var first *Message
	if c.opts.OnOpen != nil {
		first = c.opts.OnOpen()
	}
	pending := c.pending
	c.pending = nil
	if first != nil && !c.write(*first) {
		return
	}
	if pending != nil && (first == nil || !bytes.Equal(pending.Data, first.Data)) {
		c.write(*pending)
	}
}

// fail tears the connection down after an error and reports it.
func (c *Conn) fail(err error) {
	c.teardown()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.log.Info("closed by peer", zap.Error(err))
	} else {
		c.log.Warn("connection error", zap.Error(err))
		if c.opts.OnError != nil {
			c.opts.OnError(err)
		}
	}
	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}
}

// Send writes msg when open. While connecting it replaces any message waiting
// for the open; when disconnected it also starts connecting.
func (c *Conn) Send(msg Message) {
	switch c.state {
	case Open:
		c.write(msg)
	case Connecting:
		c.pending = &msg
	case Disconnected:
		c.pending = &msg
		c.Open(c.base)
	}
}

func (c *Conn) write(msg Message) bool {
	mt := websocket.TextMessage
	if msg.Binary {
		mt = websocket.BinaryMessage
	}
	if err := c.sock.WriteMessage(mt, msg.Data); err != nil {
		c.fail(fmt.Errorf("write: %w", err))
		return false
	}
	return true
}

// Close drops the socket and any pending message. Late events from the old
// connection are ignored.
func (c *Conn) Close() {
	if c.state == Disconnected {
		return
	}
	c.teardown()
	c.log.Debug("closed")
}

func (c *Conn) teardown() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.sock != nil {
		if err := c.sock.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.log.Debug("close socket", zap.Error(err))
		}
		c.sock = nil
	}
	c.pending = nil
	c.state = Disconnected
}
