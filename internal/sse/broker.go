// Package sse streams import notifications to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types broadcast by the broker.
const (
	EventDecisionsImported = "decisions.imported"
	EventImportFailed      = "decisions.import_failed"
	EventGraphUpdated      = "graph.updated"
)

// ImportSummary is the payload of a decisions.imported event.
type ImportSummary struct {
	BatchID   string   `json:"batch_id"`
	Decisions int      `json:"decisions"`
	Links     int      `json:"links"`
	Changed   []string `json:"changed"`
}

// Defaults used by NewBroker.
const (
	DefaultHistory   = 32
	DefaultKeepAlive = 25 * time.Second
)

// message is one framed event with its sequence number.
type message struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch    chan []byte
	after uint64 // replay history with ids above this; 0 means none
}

// Broker fans import events out to connected SSE clients.
//
// A single event loop owns the client set, the replay history and the
// graph throttle timestamp; public methods talk to it over channels.
// Every broadcast event carries an increasing id so a reconnecting client
// can send Last-Event-ID and receive what it missed, as long as it is
// still in the history.
type Broker struct {
	graphMin  time.Duration
	history   int
	keepAlive time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	importCh      chan ImportSummary
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithHistory sets how many past events are kept for replay.
func WithHistory(n int) Option {
	return func(b *Broker) {
		if n >= 0 {
			b.history = n
		}
	}
}

// WithKeepAlive sets the interval of comment pings on idle streams.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.keepAlive = d
		}
	}
}

// NewBroker creates a broker that emits graph.updated at most once per
// graphThrottle.
func NewBroker(graphThrottle time.Duration, opts ...Option) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}

	b := &Broker{
		graphMin:      graphThrottle,
		history:       DefaultHistory,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		importCh:      make(chan ImportSummary, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastGraph time.Time
		seq       uint64
		past      []message
	)

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// Slow client; drop rather than stall the loop.
		}
	}

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		m := message{
			id:  seq,
			raw: []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload)),
		}
		if b.history > 0 {
			past = append(past, m)
			if len(past) > b.history {
				past = past[len(past)-b.history:]
			}
		}
		for ch := range clients {
			send(ch, m.raw)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.after > 0 {
				for _, m := range past {
					if m.id > sub.after {
						send(sub.ch, m.raw)
					}
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case summary := <-b.importCh:
			if summary.Changed == nil {
				summary.Changed = []string{}
			}
			broadcast(Event{Type: EventDecisionsImported, Data: summary})

			// Unchanged imports do not alter the graph.
			if len(summary.Changed) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(lastGraph) >= b.graphMin {
				lastGraph = now
				broadcast(Event{Type: EventGraphUpdated, Data: map[string]string{"batch_id": summary.BatchID}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel. Events in the replay
// history with an id above lastEventID are delivered first; pass 0 for
// live events only.
func (b *Broker) Subscribe(lastEventID uint64) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, after: lastEventID}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishImportEvent publishes a completed import. When the import changed
// any decision a graph.updated event follows, throttled to one per
// graph interval.
func (b *Broker) PublishImportEvent(summary ImportSummary) {
	if b.closed.Load() {
		return
	}
	select {
	case b.importCh <- summary:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events). A
// Last-Event-ID header resumes from the replay history.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var lastID uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		lastID, _ = strconv.ParseUint(v, 10, 64)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(lastID)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
