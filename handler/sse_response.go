package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// EventStream writes server-sent events.
type EventStream interface {
	// Send writes one event with data encoded as JSON and flushes it.
	Send(event string, data any) error
	// Done is closed when the client disconnects.
	Done() <-chan struct{}
}

// SSEHandler runs for the lifetime of the stream.
type SSEHandler func(stream EventStream) error

type sseResponse struct {
	handler   SSEHandler
	heartbeat time.Duration
}

// SSE streams events until the handler returns or the client goes away.
// A comment line is written every heartbeat to keep proxies from closing it.
func SSE(h SSEHandler, heartbeat time.Duration) Response {
	return sseResponse{handler: h, heartbeat: heartbeat}
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingNotSupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := &eventStream{w: w, flusher: flusher, done: r.Context().Done()}

	if s.heartbeat > 0 {
		stop := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			stream.keepAlive(s.heartbeat, stop)
		}()
		defer wg.Wait()
		defer close(stop)
	}

	// headers are already sent; errors can only end the stream
	_ = s.handler(stream)
	return nil
}

type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	done    <-chan struct{}
	mu      sync.Mutex // serializes handler writes and heartbeats
}

func (s *eventStream) Done() <-chan struct{} { return s.done }

func (s *eventStream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *eventStream) keepAlive(every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			_, _ = fmt.Fprint(s.w, ": ping\n\n")
			s.flusher.Flush()
			s.mu.Unlock()
		}
	}
}
