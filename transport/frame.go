// Package transport implements the length-prefixed JSON frame wire protocol
// shared by every socket in the system: player<->broker, broker<->game-server
// control channel, and broker<->game-server data channels opened per chatroom.
package transport

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// ErrPeerClosed signals that the remote end of a connection closed, either
// cleanly (EOF on a frame boundary) or by an errored read/write. It is not a
// protocol error: every caller with a peer transport is expected to treat it
// as a normal session-termination signal.
var ErrPeerClosed = errors.New("transport: peer closed")

// ErrProtocolError signals a malformed frame: a header that isn't a JSON
// object, a missing "content-length" field, or content that isn't a JSON
// object. Fatal for the containing connection.
var ErrProtocolError = errors.New("transport: protocol error")

// ErrReadTimeout signals that Receive was interrupted by a deadline set via
// SetReadDeadline rather than by the peer actually closing the connection.
// Unlike ErrPeerClosed, the connection remains usable: callers race a
// Receive against some other event and use SetReadDeadline to abandon the
// losing Receive without tearing down the socket.
var ErrReadTimeout = errors.New("transport: read interrupted by deadline")

// headerLengthSize is the width, in bytes, of the big-endian length prefix
// that precedes the JSON header section of every frame.
const headerLengthSize = 2

// Frame is the sole unit exchanged on the wire: a header map (which always
// carries "content-length") and a content map (which always carries
// "type").
type Frame struct {
	Header  map[string]any
	Content map[string]any
}

// Type returns the frame's content "type" field, or "" if absent or not a
// string.
func (f Frame) Type() string {
	t, _ := f.Content["type"].(string)
	return t
}

// NewFrame builds a Frame from a content map with an empty header; Send adds
// "content-length" when the frame is written.
func NewFrame(content map[string]any) Frame {
	return Frame{Header: map[string]any{}, Content: content}
}

// Transport owns exactly one net.Conn. Concurrent Send calls are serialized
// with each other, as are concurrent Receive calls; Send and Receive run
// independently of one another.
type Transport struct {
	conn net.Conn

	sendMu sync.Mutex
	recvMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// New wraps an already-connected net.Conn.
func New(conn net.Conn) *Transport {
	return &Transport{conn: conn}
}

// Conn exposes the underlying connection, e.g. for RemoteAddr().
func (t *Transport) Conn() net.Conn {
	return t.conn
}

// Send serializes content, computes content-length, and writes the header
// length prefix, header, and content in one call, atomically with respect
// to other Send callers on this Transport.
func (t *Transport) Send(f Frame) error {
	contentBytes, err := json.Marshal(f.Content)
	if err != nil {
		return fmt.Errorf("%w: encoding content: %v", ErrProtocolError, err)
	}

	header := map[string]any{"content-length": len(contentBytes)}
	for k, v := range f.Header {
		if k == "content-length" {
			continue
		}
		header[k] = v
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("%w: encoding header: %v", ErrProtocolError, err)
	}
	if len(headerBytes) > 0xFFFF {
		return fmt.Errorf("%w: header too large", ErrProtocolError)
	}

	lengthPrefix := make([]byte, headerLengthSize)
	binary.BigEndian.PutUint16(lengthPrefix, uint16(len(headerBytes)))

	payload := make([]byte, 0, len(lengthPrefix)+len(headerBytes)+len(contentBytes))
	payload = append(payload, lengthPrefix...)
	payload = append(payload, headerBytes...)
	payload = append(payload, contentBytes...)

	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	if _, err := t.conn.Write(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}
	return nil
}

// Receive reads one frame, looping on short reads until each section is
// fully read or the peer closes the connection.
func (t *Transport) Receive() (Frame, error) {
	t.recvMu.Lock()
	defer t.recvMu.Unlock()

	lengthPrefix, err := t.readFull(headerLengthSize)
	if err != nil {
		return Frame{}, err
	}
	headerLen := int(binary.BigEndian.Uint16(lengthPrefix))

	headerBytes, err := t.readFull(headerLen)
	if err != nil {
		return Frame{}, err
	}
	var header map[string]any
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return Frame{}, fmt.Errorf("%w: decoding header: %v", ErrProtocolError, err)
	}

	contentLenF, ok := header["content-length"].(float64)
	if !ok {
		return Frame{}, fmt.Errorf("%w: missing content-length", ErrProtocolError)
	}
	contentLen := int(contentLenF)

	contentBytes, err := t.readFull(contentLen)
	if err != nil {
		return Frame{}, err
	}
	var content map[string]any
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return Frame{}, fmt.Errorf("%w: decoding content: %v", ErrProtocolError, err)
	}
	if _, ok := content["type"]; !ok {
		return Frame{}, fmt.Errorf("%w: content missing \"type\"", ErrProtocolError)
	}

	return Frame{Header: header, Content: content}, nil
}

// readFull reads exactly n bytes, looping on short reads; n==0 returns at
// once without reading. A deadline expiry surfaces as ErrReadTimeout, since
// the connection is still live; any other read error, including EOF before
// n bytes arrived, surfaces as ErrPeerClosed.
func (t *Transport) readFull(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := t.conn.Read(buf[read:])
		read += m
		if err != nil {
			if errors.Is(err, io.EOF) && read == n {
				break
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, fmt.Errorf("%w: %v", ErrReadTimeout, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrPeerClosed, err)
		}
	}
	return buf, nil
}

// SetReadDeadline arranges for a pending or future Receive to abort with
// ErrReadTimeout at t. Pass the zero time.Time to clear any deadline.
func (t *Transport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

// Close releases the underlying socket. Idempotent.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
