// Package propsvc runs an in-test property service speaking the
// fixed-record protocol over a unix socket.
package propsvc

import (
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danmuck/sysprops/internal/propmsg"
)

// Options shape how the stub answers requests.
type Options struct {
	// Props answered to GET; SET stores into it.
	Props map[string]string
	// ListEntries emitted for LIST, in order.
	ListEntries []propmsg.Message
	// Mute mimics the stock init: apply and close, never reply.
	Mute bool
	// ShortFrame trims reply records to provoke a framing error.
	ShortFrame int
}

// Server is one stub service bound to a socket under the test's TempDir.
type Server struct {
	path string
	ln   net.Listener
	opts Options

	mu       sync.Mutex
	props    map[string]string
	received []propmsg.Message
}

func Start(t testing.TB, opts Options) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "property_service")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen %s: %v", path, err)
	}

	props := make(map[string]string, len(opts.Props))
	for k, v := range opts.Props {
		props[k] = v
	}
	s := &Server{path: path, ln: ln, opts: opts, props: props}

	go s.acceptLoop()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

// SocketPath is the endpoint to hand to the client under test.
func (s *Server) SocketPath() string { return s.path }

// Received returns every request record seen so far, in arrival order.
func (s *Server) Received() []propmsg.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]propmsg.Message, len(s.received))
	copy(out, s.received)
	return out
}

// Close stops accepting; in-flight connections finish on their own.
func (s *Server) Close() { _ = s.ln.Close() }

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, propmsg.MessageSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return
	}
	msg, err := propmsg.Decode(buf)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.received = append(s.received, msg)
	s.mu.Unlock()

	switch msg.Cmd {
	case propmsg.CmdSet:
		s.mu.Lock()
		s.props[msg.Name] = msg.Value
		s.mu.Unlock()
		if !s.opts.Mute {
			s.reply(conn, msg)
		}
	case propmsg.CmdGet:
		if s.opts.Mute {
			return
		}
		s.mu.Lock()
		msg.Value = s.props[msg.Name]
		s.mu.Unlock()
		s.reply(conn, msg)
	case propmsg.CmdList:
		if s.opts.Mute {
			return
		}
		for _, entry := range s.opts.ListEntries {
			s.reply(conn, entry)
		}
	}
}

func (s *Server) reply(conn net.Conn, msg propmsg.Message) {
	rec := msg.Encode()
	if s.opts.ShortFrame > 0 && s.opts.ShortFrame < len(rec) {
		rec = rec[:s.opts.ShortFrame]
	}
	_, _ = conn.Write(rec)
}
