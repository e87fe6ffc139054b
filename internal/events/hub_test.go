package events

import (
	"testing"
	"time"
)

func TestPublishReachesTopicSubscribers(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(CallTopic("c1"))
	other := h.Subscribe(CallTopic("c2"))
	defer h.Unsubscribe(other)

	h.Publish(CallTopic("c1"), Event{Type: TranscriptionStarted, CallID: "c1"})

	select {
	case ev := <-sub.C():
		if ev.Type != TranscriptionStarted || ev.CallID != "c1" {
			t.Errorf("event = %+v", ev)
		}
		if ev.Timestamp.IsZero() {
			t.Error("timestamp should be stamped on publish")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case ev := <-other.C():
		t.Errorf("other topic received %+v", ev)
	default:
	}

	h.Unsubscribe(sub)
	if _, ok := <-sub.C(); ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	h := NewHub()
	// Must not panic or block.
	h.Publish(CallTopic("nobody"), Event{Type: CallUploaded})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(CallTopic("c1"))
	defer h.Unsubscribe(sub)

	// Overfill the buffer; the publisher must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			h.Publish(CallTopic("c1"), Event{Type: AnalysisStarted, CallID: "c1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	var received int
	for {
		select {
		case <-sub.C():
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received > 16 {
		t.Errorf("received = %d, want between 1 and the buffer size", received)
	}
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(CallTopic("c1"))
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
}
