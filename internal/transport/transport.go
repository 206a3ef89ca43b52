// Package transport owns the one-shot socket exchange with the
// property service.
//
// Ownership boundary:
// - unix stream dial/close per operation
// - single request record send
// - reply record receive loop until peer close
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/danmuck/sysprops/internal/propmsg"
)

var (
	ErrFrameSize = errors.New("transport: reply frame size mismatch")
)

// Outcome reports what the service did with one exchange.
//
// Confirmed is true once at least one reply record arrived. The stock
// init applies requests silently and closes; a service that replies is
// actively confirming, and GET/LIST results are only trustworthy from
// a confirming service. Last holds the final reply record, which for
// GET carries the resolved value.
type Outcome struct {
	Confirmed bool
	Last      propmsg.Message
}

// Transport speaks the fixed-record protocol to a property service
// socket. Every Exchange dials a fresh connection: the protocol has no
// multiplexing, one request per connection.
type Transport struct {
	socketPath  string
	dialTimeout time.Duration
}

func New(socketPath string, dialTimeout time.Duration) *Transport {
	return &Transport{socketPath: socketPath, dialTimeout: dialTimeout}
}

// Exchange sends msg and drains reply records until the peer closes,
// handing each record to onReply in arrival order. A reply that is not
// exactly one record long aborts with ErrFrameSize. The protocol
// itself carries no timeout; a ctx deadline, when present, is applied
// to the connection.
func (t *Transport) Exchange(ctx context.Context, msg propmsg.Message, onReply func(propmsg.Message)) (Outcome, error) {
	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("transport: dial %s: %w", t.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(msg.Encode()); err != nil {
		return Outcome{}, fmt.Errorf("transport: send: %w", err)
	}

	var out Outcome
	buf := make([]byte, propmsg.MessageSize)
	for {
		_, err := io.ReadFull(conn, buf)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Outcome{}, fmt.Errorf("%w: short trailing frame", ErrFrameSize)
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("transport: recv: %w", err)
		}

		reply, err := propmsg.Decode(buf)
		if err != nil {
			return Outcome{}, err
		}
		out.Confirmed = true
		out.Last = reply
		if onReply != nil {
			onReply(reply)
		}
	}
}
