package telemetry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/overlaycast/overlaycast/internal/overlay"
	"github.com/overlaycast/overlaycast/internal/redial"
	"github.com/overlaycast/overlaycast/internal/textutil"
)

// traceMax bounds the length of per-publish trace log lines.
const traceMax = 300

// Publisher maintains the bridge's WebSocket connection to the fan-out
// endpoint and transmits one envelope per publish request. While the
// endpoint is unreachable publishes are dropped: every frame is a full
// snapshot, so the next one after reconnect carries the current state.
type Publisher struct {
	url string
	log zerolog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	started   bool

	writeMu sync.Mutex
}

// NewPublisher creates an unstarted publisher for the endpoint at url.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{
		url: url,
		log: log.With().Str("component", "telemetry").Logger(),
	}
}

// Start launches the connect loop. It is non-blocking and idempotent; the
// loop runs until ctx is canceled.
func (p *Publisher) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.run(ctx)
}

// IsConnected reports whether the endpoint is currently reachable.
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Publish encodes snap and sends it as one text frame. It is safe to call
// from any goroutine and never blocks on a dead endpoint.
func (p *Publisher) Publish(snap overlay.Snapshot) {
	payload, err := json.Marshal(NewEnvelope(snap))
	if err != nil {
		return
	}

	p.mu.Lock()
	conn, connected := p.conn, p.connected
	p.mu.Unlock()
	if !connected {
		p.log.Debug().Msg("publish dropped: endpoint disconnected")
		return
	}

	p.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, payload)
	p.writeMu.Unlock()
	if err != nil {
		// The read drain observes the broken socket and redials;
		// this publish is simply lost.
		p.log.Warn().Err(err).Msg("publish failed")
		conn.Close()
		return
	}
	p.log.Debug().Str("payload", textutil.Ellipsize(string(payload), traceMax)).Msg("published")
}

func (p *Publisher) run(ctx context.Context) {
	bo := redial.New()
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := bo.NextBackOff()
			p.log.Warn().Err(err).Dur("retry_in", delay).Msg("endpoint unreachable")
			if !redial.Sleep(ctx, delay) {
				return
			}
			continue
		}

		bo.Reset()
		p.log.Info().Str("endpoint", p.url).Msg("endpoint connected")
		p.setConn(conn)

		err = p.drainUntilClosed(ctx, conn)
		p.clearConn(conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		delay := bo.NextBackOff()
		p.log.Warn().Err(err).Dur("retry_in", delay).Msg("endpoint connection lost")
		if !redial.Sleep(ctx, delay) {
			return
		}
	}
}

// drainUntilClosed discards inbound frames until the connection breaks. The
// endpoint pushes nothing the bridge consumes; reading is what surfaces peer
// closes and keeps control frames flowing.
func (p *Publisher) drainUntilClosed(ctx context.Context, conn *websocket.Conn) error {
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func (p *Publisher) setConn(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = conn
	p.connected = true
}

func (p *Publisher) clearConn(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == conn {
		p.conn = nil
		p.connected = false
	}
}
