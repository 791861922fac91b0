package sse

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/laguz/internal/models"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return ""
}

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()

	b.Publish(Event{Type: "ping", Data: map[string]string{"k": "v"}})

	msg := recv(t, ch)
	if !strings.Contains(msg, "event: ping") {
		t.Errorf("missing event type in %q", msg)
	}
	if !strings.Contains(msg, `"k":"v"`) {
		t.Errorf("missing payload in %q", msg)
	}
}

func TestBroker_PassSummaryEvents(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()

	b.PublishPassSummary(models.PassSummary{FilesCopied: 3, LinksUnresolved: 1})

	first := recv(t, ch)
	if !strings.Contains(first, "event: pass.completed") {
		t.Errorf("expected pass.completed, got %q", first)
	}

	second := recv(t, ch)
	if !strings.Contains(second, "event: links.unresolved") {
		t.Errorf("expected links.unresolved, got %q", second)
	}
	if !strings.Contains(second, `"count":1`) {
		t.Errorf("missing unresolved count in %q", second)
	}
}

func TestBroker_TreeUpdatedThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()

	b.PublishPassSummary(models.PassSummary{})
	recv(t, ch) // pass.completed

	// First summary within the window emits tree.updated.
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: tree.updated") {
		t.Errorf("expected tree.updated, got %q", msg)
	}

	b.PublishPassSummary(models.PassSummary{})
	msg = recv(t, ch)
	if !strings.Contains(msg, "event: pass.completed") {
		t.Errorf("expected pass.completed, got %q", msg)
	}

	// Second tree.updated suppressed by the throttle; next event after
	// another summary is again pass.completed.
	b.PublishPassSummary(models.PassSummary{})
	msg = recv(t, ch)
	if !strings.Contains(msg, "event: pass.completed") {
		t.Errorf("throttle leaked an extra event: %q", msg)
	}
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
}

func TestBroker_ClientCount(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Fatalf("expected 0 clients, got %d", n)
	}

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()

	if n := b.ClientCount(); n != 2 {
		t.Errorf("expected 2 clients, got %d", n)
	}

	b.Unsubscribe(ch1)
	b.Unsubscribe(ch2)

	if n := b.ClientCount(); n != 0 {
		t.Errorf("expected 0 clients after unsubscribe, got %d", n)
	}
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	b := NewBroker(time.Hour)

	ch := b.Subscribe()
	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close")
	}

	// Operations after Close must not block.
	b.Publish(Event{Type: "x"})
	if n := b.ClientCount(); n != 0 {
		t.Errorf("expected 0 clients after close, got %d", n)
	}
}
