package events

import (
	"errors"
	"testing"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)

	bus.Publish(PlayStateChanged{Playing: true})

	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		ps, ok := ev.(PlayStateChanged)
		if !ok || !ps.Playing {
			t.Fatalf("got %#v", ev)
		}
	}
}

func TestPublishSkipsFullSubscriber(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(1)

	bus.Publish(LevelChanged{Db: -40})
	bus.Publish(ConnectionError{Stream: "audio", Err: errors.New("boom")})

	if ev := <-ch; ev != (LevelChanged{Db: -40}) {
		t.Fatalf("got %#v", ev)
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected second event %#v", ev)
	default:
	}
}

func TestCloseEndsSubscribers(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(4)
	bus.Close()
	bus.Publish(LevelChanged{Db: -10})
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Close")
	}
	if _, ok := <-bus.Subscribe(1); ok {
		t.Fatal("subscribing after Close returned an open channel")
	}
	bus.Close()
}
