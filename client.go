package sysprops

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/sysprops/internal/logging"
	"github.com/danmuck/sysprops/internal/propmsg"
	"github.com/danmuck/sysprops/internal/staticsrc"
	"github.com/danmuck/sysprops/internal/transport"
)

// Bounds on property names and values. Both are exclusive: a valid
// name is strictly shorter than NameMax. They mirror the service's
// compiled-in buffer widths and must not drift from them.
const (
	NameMax  = propmsg.PropNameMax
	ValueMax = propmsg.PropValueMax
)

// Client resolves and mutates system properties. Zero state is kept
// between calls; each operation opens and closes its own connection.
type Client struct {
	transport *transport.Transport
	file      staticsrc.File
	cmdline   staticsrc.Cmdline
}

func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.ConfigureRuntime()
	return &Client{
		transport: transport.New(cfg.SocketPath, cfg.DialTimeout),
		file:      staticsrc.File{Path: cfg.BuildPropPath},
		cmdline:   staticsrc.Cmdline{Path: cfg.CmdlinePath},
	}, nil
}

// Get resolves key through the fallback chain: service, build property
// file, kernel command line, then def. Absence is not an error; the
// only error is a key at or past the name bound, checked before any
// I/O. A service answering with an empty value also resolves to def.
func (c *Client) Get(ctx context.Context, key, def string) (string, error) {
	if len(key) >= NameMax {
		return "", fmt.Errorf("%w: %q", ErrNameTooLong, key)
	}

	out, err := c.transport.Exchange(ctx, propmsg.Message{Cmd: propmsg.CmdGet, Name: key}, nil)
	if err == nil && out.Confirmed {
		value := out.Last.Value
		if value == "" {
			value = def
		}
		return value, nil
	}
	if err == nil {
		// Connected, but the service applied and closed without a
		// reply; nothing came back to trust for a read.
		err = ErrNoReply
	}
	log.Debug().Err(err).Str("key", key).Msg("property service miss, trying static sources")

	if value, ok := c.file.Lookup(key); ok {
		return value, nil
	}
	if value, ok := c.cmdline.Lookup(key); ok {
		return value, nil
	}
	return def, nil
}

// Set sends key=value to the service. Bounds are checked before any
// I/O; past that the result is the transport outcome alone. A clean
// close without a reply still counts as success, matching services
// that apply silently. There is no fallback sink for writes.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if len(key) >= NameMax {
		return fmt.Errorf("%w: %q", ErrNameTooLong, key)
	}
	if len(value) >= ValueMax {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLong, len(value))
	}

	msg := propmsg.Message{Cmd: propmsg.CmdSet, Name: key, Value: value}
	if _, err := c.transport.Exchange(ctx, msg, nil); err != nil {
		return fmt.Errorf("sysprops: set %q: %w", key, err)
	}
	return nil
}

// List streams the service's live property snapshot, invoking visit
// once per entry in server emission order. It is one-shot: no
// pagination, no fallback to the static sources, which cannot stand in
// for the authoritative store. An unreachable or silent service is a
// failure and visit is never called for it.
func (c *Client) List(ctx context.Context, visit func(name, value string)) error {
	out, err := c.transport.Exchange(ctx, propmsg.Message{Cmd: propmsg.CmdList}, func(m propmsg.Message) {
		if visit != nil {
			visit(m.Name, m.Value)
		}
	})
	if err != nil {
		return fmt.Errorf("sysprops: list: %w", err)
	}
	if !out.Confirmed {
		return fmt.Errorf("sysprops: list: %w", ErrNoReply)
	}
	return nil
}
