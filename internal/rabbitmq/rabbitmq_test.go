package rabbitmq

import (
	"context"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

// startLocalHandler wires the listener and workers to a test-owned
// delivery channel, standing in for a broker connection. Jobs without a
// code field are rejected before reaching the engine, so none is needed.
func startLocalHandler(workers int) (*Handler, chan amqp.Delivery) {
	h := NewHandler(HandlerConfig{WorkersCount: workers}, nil, nil)
	del := make(chan amqp.Delivery)
	h.listeners.Add(1)
	go h.listener(del)
	for i := 0; i < workers; i++ {
		h.workers.Add(1)
		go h.worker()
	}
	return h, del
}

func TestCloseDrainsDeliveriesBeforeClosingJobs(t *testing.T) {
	h, del := startLocalHandler(1)

	closed := make(chan struct{})
	go func() {
		h.Close()
		close(closed)
	}()

	// Close must stay blocked on the listener while the delivery stream
	// is still open.
	select {
	case <-closed:
		t.Fatal("Close returned while deliveries could still arrive")
	case <-time.After(50 * time.Millisecond):
	}

	// A message landing mid-shutdown must be forwarded to a worker, not
	// sent on a closed job channel.
	del <- amqp.Delivery{Body: []byte(`{"id":"late","kind":"execute"}`)}
	close(del)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not finish after the delivery stream ended")
	}
}

func TestListenerSkipsMalformedMessages(t *testing.T) {
	h, del := startLocalHandler(1)

	del <- amqp.Delivery{Body: []byte("not json")}
	del <- amqp.Delivery{Body: []byte(`{"id":"ok","kind":"execute"}`)}
	close(del)

	done := make(chan struct{})
	go func() {
		h.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("a malformed message stalled the listener")
	}
}

func TestProcessRequiresCode(t *testing.T) {
	h := NewHandler(HandlerConfig{}, nil, nil)

	resp := h.process(context.Background(), &model.Job{ID: "1", Kind: model.JobExecute})
	if resp.Error != "code is required" {
		t.Fatalf("Error = %q, want code is required", resp.Error)
	}
	if resp.Execution != nil || resp.Validation != nil || resp.Tests != nil {
		t.Fatalf("rejected job carried a payload: %+v", resp)
	}
}

func TestProcessUnknownKind(t *testing.T) {
	h := NewHandler(HandlerConfig{}, nil, nil)

	code := "print(1)"
	resp := h.process(context.Background(), &model.Job{ID: "1", Kind: "bogus", Code: &code})
	if !strings.Contains(resp.Error, "bogus") {
		t.Fatalf("Error = %q, want the unknown kind named", resp.Error)
	}
}

// send must be safe before Start has opened a producer channel.
func TestSendWithoutProducerIsNoop(t *testing.T) {
	h := NewHandler(HandlerConfig{}, nil, nil)
	h.send(&model.JobResponse{ID: "x"})
}
