package mcp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/overlaycast/overlaycast/internal/redial"
	"github.com/overlaycast/overlaycast/internal/textutil"
)

const (
	// readChunkSize is how much is pulled off the socket per read.
	readChunkSize = 32 * 1024

	// dialTimeout bounds a single connection attempt.
	dialTimeout = 5 * time.Second

	// traceMax bounds the length of per-message trace log lines.
	traceMax = 300
)

// Handler receives every decoded message, synchronously and in arrival
// order. It must not block for long: the socket is not read while the
// handler runs.
type Handler func(Message)

// Client maintains the outbound TCP connection to the producer and feeds
// each decoded JSON-RPC message to its handler. The socket is read-only;
// the bridge never writes on it.
type Client struct {
	addr    string
	handler Handler
	log     zerolog.Logger

	mu      sync.Mutex
	started bool
}

// NewClient creates an unstarted ingress client dialing addr.
func NewClient(addr string, handler Handler, log zerolog.Logger) *Client {
	return &Client{
		addr:    addr,
		handler: handler,
		log:     log.With().Str("component", "mcp").Logger(),
	}
}

// Start launches the connect/read loop. It is non-blocking and idempotent;
// the loop runs until ctx is canceled.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	go c.run(ctx)
}

func (c *Client) run(ctx context.Context) {
	bo := redial.New()
	dialer := &net.Dialer{Timeout: dialTimeout}
	for {
		conn, err := dialer.DialContext(ctx, "tcp", c.addr)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := bo.NextBackOff()
			c.log.Warn().Err(err).Dur("retry_in", delay).Msg("producer unreachable")
			if !redial.Sleep(ctx, delay) {
				return
			}
			continue
		}

		bo.Reset()
		c.log.Info().Str("addr", c.addr).Msg("producer connected")

		err = c.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		delay := bo.NextBackOff()
		c.log.Warn().Err(err).Dur("retry_in", delay).Msg("producer connection lost")
		if !redial.Sleep(ctx, delay) {
			return
		}
	}
}

// readLoop pumps the socket through a fresh decoder until the connection
// drops. Partially framed bytes die with the connection; there is no
// cross-connection framing continuity.
func (c *Client) readLoop(ctx context.Context, conn net.Conn) error {
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	dec := &Decoder{}
	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			c.drain(dec)
		}
		if err != nil {
			return err
		}
	}
}

func (c *Client) drain(dec *Decoder) {
	for {
		unit, ok := dec.Next()
		if !ok {
			return
		}
		msg, err := ParseMessage(unit)
		if err != nil {
			c.log.Debug().Err(err).Str("frame", textutil.Ellipsize(string(unit), traceMax)).Msg("discarding undecodable frame")
			continue
		}
		c.log.Debug().Str("msg", textutil.Ellipsize(string(unit), traceMax)).Msg("producer message")
		c.handler(msg)
	}
}
