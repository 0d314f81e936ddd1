package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeSocket struct {
	in        chan []byte
	readErr   chan error
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []string
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{in: make(chan []byte, 16), readErr: make(chan error, 1), closed: make(chan struct{})}
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	select {
	case d, ok := <-s.in:
		if !ok {
			return 0, nil, errors.New("connection reset by peer")
		}
		return websocket.BinaryMessage, d, nil
	case err := <-s.readErr:
		return 0, nil, err
	case <-s.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (s *fakeSocket) WriteMessage(_ int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, string(data))
	return nil
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSocket) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *fakeSocket) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

type fakeDialer struct {
	sock    *fakeSocket
	fails   int32
	release chan struct{}
	dials   atomic.Int32
}

func (d *fakeDialer) Dial(ctx context.Context, _ string) (Socket, error) {
	n := d.dials.Add(1)
	if d.release != nil {
		select {
		case <-d.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= d.fails {
		return nil, errors.New("connection refused")
	}
	return d.sock, nil
}

func pollUntil(t *testing.T, c *Conn, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		c.Poll()
		time.Sleep(time.Millisecond)
	}
}

func newTestConn(d Dialer, opts Options) *Conn {
	opts.Name = "test"
	opts.URL = "ws://example.invalid/"
	opts.Dialer = d
	opts.InitialInterval = time.Millisecond
	return New(opts)
}

func TestOpenSendsFirstMessageThenPending(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket(), release: make(chan struct{})}
	c := newTestConn(d, Options{
		OnOpen: func() *Message { return &Message{Data: []byte("hello")} },
	})

	c.Open(context.Background())
	if c.State() != Connecting {
		t.Fatalf("state = %v", c.State())
	}
	c.Open(context.Background())
	c.Send(Message{Data: []byte("first")})
	c.Send(Message{Data: []byte("latest")})
	close(d.release)

	pollUntil(t, c, func() bool { return c.State() == Open })
	if n := d.dials.Load(); n != 1 {
		t.Fatalf("dialed %d times", n)
	}
	c.Send(Message{Data: []byte("live")})

	got := strings.Join(d.sock.sent(), ",")
	if got != "hello,latest,live" {
		t.Fatalf("sent %q", got)
	}
}

func TestPendingSameAsFirstIsNotRepeated(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket()}
	c := newTestConn(d, Options{
		OnOpen: func() *Message { return &Message{Data: []byte("span")} },
	})
	c.Send(Message{Data: []byte("span")})
	if c.State() != Connecting {
		t.Fatalf("send while disconnected did not connect: %v", c.State())
	}
	pollUntil(t, c, func() bool { return c.State() == Open })
	if got := d.sock.sent(); len(got) != 1 {
		t.Fatalf("sent %q", got)
	}
}

func TestMessagesDelivered(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket()}
	var got []Message
	c := newTestConn(d, Options{OnMessage: func(m Message) { got = append(got, m) }})
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return c.State() == Open })

	d.sock.in <- []byte{1, 2, 3, 4}
	d.sock.in <- []byte{5}
	pollUntil(t, c, func() bool { return len(got) == 2 })
	if !got[0].Binary || len(got[0].Data) != 4 || got[1].Data[0] != 5 {
		t.Fatalf("got %+v", got)
	}
}

func TestDialRetriesThenSucceeds(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket(), fails: 2}
	c := newTestConn(d, Options{})
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return c.State() == Open })
	if n := d.dials.Load(); n != 3 {
		t.Fatalf("dialed %d times", n)
	}
}

func TestDialGivesUp(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket(), fails: 100}
	var errs []error
	c := newTestConn(d, Options{OnError: func(err error) { errs = append(errs, err) }})
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return len(errs) > 0 })
	if c.State() != Disconnected {
		t.Fatalf("state = %v", c.State())
	}
	if n := d.dials.Load(); n != 4 {
		t.Fatalf("dialed %d times, want one attempt plus three retries", n)
	}
	// No reconnection happens without another Open or Send.
	time.Sleep(20 * time.Millisecond)
	c.Poll()
	if n := d.dials.Load(); n != 4 {
		t.Fatalf("reconnected by itself: %d dials", n)
	}
}

func TestCloseDiscardsLateMessages(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket()}
	delivered := 0
	c := newTestConn(d, Options{OnMessage: func(Message) { delivered++ }})
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return c.State() == Open })

	d.sock.in <- []byte{1}
	time.Sleep(10 * time.Millisecond)
	c.Close()
	c.Poll()

	if delivered != 0 {
		t.Fatalf("%d messages delivered after close", delivered)
	}
	if !d.sock.isClosed() {
		t.Fatal("socket left open")
	}
	if c.State() != Disconnected {
		t.Fatalf("state = %v", c.State())
	}
}

func TestCloseWhileConnecting(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket(), release: make(chan struct{})}
	c := newTestConn(d, Options{})
	c.Open(context.Background())
	c.Close()
	close(d.release)
	time.Sleep(10 * time.Millisecond)
	c.Poll()
	if c.State() != Disconnected {
		t.Fatalf("state = %v", c.State())
	}
}

func TestPeerErrorDisconnects(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket()}
	var errs []error
	c := newTestConn(d, Options{OnError: func(err error) { errs = append(errs, err) }})
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return c.State() == Open })

	close(d.sock.in)
	pollUntil(t, c, func() bool { return c.State() == Disconnected })
	if len(errs) != 1 {
		t.Fatalf("got %d errors", len(errs))
	}
}

func TestPeerCloseReportsClose(t *testing.T) {
	d := &fakeDialer{sock: newFakeSocket()}
	var errs []error
	closes := 0
	c := newTestConn(d, Options{
		OnError: func(err error) { errs = append(errs, err) },
		OnClose: func() { closes++ },
	})
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return c.State() == Open })

	d.sock.readErr <- &websocket.CloseError{Code: websocket.CloseNormalClosure}
	pollUntil(t, c, func() bool { return c.State() == Disconnected })
	if len(errs) != 0 {
		t.Fatalf("normal close reported as error: %v", errs)
	}
	if closes != 1 {
		t.Fatalf("OnClose ran %d times", closes)
	}

	d.sock = newFakeSocket()
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return c.State() == Open })
	c.Close()
	if closes != 1 {
		t.Fatal("OnClose ran for a local Close")
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var got []Message
	c := New(Options{
		Name:      "echo",
		URL:       "ws" + strings.TrimPrefix(srv.URL, "http"),
		OnOpen:    func() *Message { return &Message{Data: []byte(`{"type":"span"}`)} },
		OnMessage: func(m Message) { got = append(got, m) },
	})
	defer c.Close()
	c.Open(context.Background())
	pollUntil(t, c, func() bool { return len(got) == 1 })
	if string(got[0].Data) != `{"type":"span"}` || !got[0].Binary {
		t.Fatalf("got %+v", got[0])
	}

	c.Send(Message{Data: []byte(`{"min":1}`)})
	pollUntil(t, c, func() bool { return len(got) == 2 })
	if string(got[1].Data) != `{"min":1}` {
		t.Fatalf("got %q", got[1].Data)
	}
}
