package propmsg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Field widths and command values from the property service wire
// contract. Both ends must compile with identical widths: the record
// carries no length prefix or version tag, so a mismatched build
// produces silent corruption rather than a negotiated error.
const (
	PropNameMax  = 32
	PropValueMax = 92

	MessageSize = 4 + PropNameMax + PropValueMax
)

const (
	CmdSet  uint32 = 1
	CmdGet  uint32 = 2
	CmdList uint32 = 3
)

var ErrSizeMismatch = errors.New("propmsg: record size mismatch")

// Message is one property service record: a command discriminant plus
// zero-padded name and value buffers.
type Message struct {
	Cmd   uint32
	Name  string
	Value string
}

// Encode renders m as one fixed-size wire record. The command is a
// little-endian uint32; the service reads it as a native C int and
// every supported target is little-endian. Over-long fields are
// truncated to their width; callers enforce bounds before I/O.
func (m Message) Encode() []byte {
	buf := make([]byte, MessageSize)
	binary.LittleEndian.PutUint32(buf[0:4], m.Cmd)
	putField(buf[4:4+PropNameMax], m.Name)
	putField(buf[4+PropNameMax:], m.Value)
	return buf
}

// Decode parses one wire record. Anything other than exactly
// MessageSize bytes is a protocol error, never a partial success.
func Decode(b []byte) (Message, error) {
	if len(b) != MessageSize {
		return Message{}, fmt.Errorf("%w: got %d want %d", ErrSizeMismatch, len(b), MessageSize)
	}
	return Message{
		Cmd:   binary.LittleEndian.Uint32(b[0:4]),
		Name:  field(b[4 : 4+PropNameMax]),
		Value: field(b[4+PropNameMax:]),
	}, nil
}

// putField copies s into dst capped one short of the width, so the
// buffer always keeps a terminating NUL inside its bound.
func putField(dst []byte, s string) {
	if max := len(dst) - 1; len(s) > max {
		s = s[:max]
	}
	copy(dst, s)
}

func field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
