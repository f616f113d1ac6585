package sftpclient

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-sftp/sftpclient/sshfx"
	"github.com/pkg/errors"
)

// result is what a parked continuation receives: either a decoded
// response frame or the error that ended the wait (spec §4.6 dispatch).
type result struct {
	pkt *sshfx.RawPacket
	err error
}

// conn is the request multiplexer (spec §4.6): it owns id allocation,
// the correlation table, and the single reader goroutine that demuxes
// inbound frames to parked continuations. It has no knowledge of SFTP
// operation semantics; client.go builds on top of it.
//
// Grounded on the teacher's clientConn (pkg-sftp client.go): a channel
// per outstanding request replaces the original spec's callback
// triples, per the design note in spec §9.
type conn struct {
	w io.Writer
	r io.Reader

	nextID uint32 // atomic; first non-handshake id is 2 (spec §3)

	mu       sync.Mutex
	inflight map[uint32]chan<- result
	closed   chan struct{}
	closeErr error

	maxPacket uint32
	logger    *slog.Logger

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
}

func newConn(rw io.ReadWriter, maxPacket uint32, logger *slog.Logger) *conn {
	return &conn{
		w:         rw,
		r:         rw,
		nextID:    2,
		inflight:  make(map[uint32]chan<- result),
		closed:    make(chan struct{}),
		maxPacket: maxPacket,
		logger:    logger,
	}
}

// allocID returns the next monotonic request id, wrapping modulo 2^32
// and skipping the reserved id 0 (spec §3).
func (c *conn) allocID() uint32 {
	for {
		id := atomic.AddUint32(&c.nextID, 1) - 1
		if id != 0 {
			return id
		}
	}
}

// park registers ch as the continuation for id, asserting the
// uniqueness invariant of spec §3: a duplicate id is a programming
// error and aborts the session.
func (c *conn) park(id uint32, ch chan<- result) error {
	c.mu.Lock()
	select {
	case <-c.closed:
		c.mu.Unlock()
		return sshfx.NewKindError(sshfx.KindENOTCONN, "no connection", sshfx.CommandInfo{})
	default:
	}
	if _, dup := c.inflight[id]; dup {
		c.mu.Unlock()
		err := fmt.Errorf("sshfx: duplicate request id %d: protocol invariant violated", id)
		c.disconnect(err)
		return err
	}
	c.inflight[id] = ch
	c.mu.Unlock()
	return nil
}

// unpark removes and returns the continuation for id, if any.
func (c *conn) unpark(id uint32) (chan<- result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.inflight[id]
	if ok {
		delete(c.inflight, id)
	}
	return ch, ok
}

// send writes a finished frame (header plus optional oversized payload,
// e.g. a WRITE body) to the channel, updating the sent-byte counter.
func (c *conn) send(id uint32, header, payload []byte) error {
	select {
	case <-c.closed:
		return sshfx.NewKindError(sshfx.KindENOTCONN, "no connection", sshfx.CommandInfo{})
	default:
	}
	if _, err := c.w.Write(header); err != nil {
		c.disconnect(err)
		return err
	}
	n := len(header)
	if len(payload) > 0 {
		if _, err := c.w.Write(payload); err != nil {
			c.disconnect(err)
			return err
		}
		n += len(payload)
	}
	c.bytesSent.Add(uint64(n))
	if c.logger != nil {
		c.logger.Debug("sftp: dispatched request", "id", id, "bytes", n)
	}
	return nil
}

// dispatch parks ch for id, sends the frame, and returns; the caller
// receives the result asynchronously on ch (spec §4.6, §5 suspension
// points).
func (c *conn) dispatch(id uint32, header, payload []byte, ch chan<- result) error {
	if err := c.park(id, ch); err != nil {
		return err
	}
	if err := c.send(id, header, payload); err != nil {
		// send() already called disconnect(), which drains and fails
		// every parked id (including this one) via teardown.
		return err
	}
	return nil
}

// fail delivers err to id's parked continuation, if still present, and
// reports whether one was found.
func (c *conn) fail(id uint32, err error) bool {
	ch, ok := c.unpark(id)
	if !ok {
		return false
	}
	ch <- result{err: err}
	return true
}

// deliver routes pkt to its request id's parked continuation. Receipt
// of an unknown id is a protocol violation and aborts the session
// (spec §4.6).
func (c *conn) deliver(pkt *sshfx.RawPacket) error {
	ch, ok := c.unpark(pkt.RequestID)
	if !ok {
		err := fmt.Errorf("sshfx: response for unknown request id %d", pkt.RequestID)
		c.disconnect(err)
		return err
	}
	ch <- result{pkt: pkt}
	return nil
}

// disconnect is teardown (spec §4.6): it closes the channel exactly
// once, drains the correlation table, and fails every parked
// continuation with CONNECTION_LOST/ESHUTDOWN.
func (c *conn) disconnect(err error) {
	c.mu.Lock()
	select {
	case <-c.closed:
		c.mu.Unlock()
		return
	default:
	}
	if err == nil {
		err = io.ErrClosedPipe
	}
	c.closeErr = err
	close(c.closed)
	inflight := c.inflight
	c.inflight = make(map[uint32]chan<- result)
	c.mu.Unlock()

	statusErr := sshfx.NewStatusError(sshfx.StatusConnectionLost, err.Error(), sshfx.CommandInfo{})
	if c.logger != nil {
		c.logger.Warn("sftp: connection torn down, failing parked requests", "count", len(inflight), "error", err)
	}
	for id, ch := range inflight {
		ch <- result{err: errors.Wrapf(statusErr, "request %d", id)}
	}
	if closer, ok := c.w.(io.Closer); ok {
		_ = closer.Close()
	}
}

// recvLoop is the single reader goroutine: it reads frames until error
// and demuxes each to its parked continuation (spec §5's "single
// dispatch" contract — only this goroutine ever calls deliver).
func (c *conn) recvLoop() {
	buf := make([]byte, 4+c.maxPacket)
	for {
		pkt := &sshfx.RawPacket{}
		if err := pkt.ReadFrom(c.r, buf, c.maxPacket); err != nil {
			c.disconnect(err)
			return
		}
		c.bytesReceived.Add(uint64(4 + pkt.Data.Len()))
		if c.logger != nil {
			c.logger.Debug("sftp: dispatched response", "id", pkt.RequestID, "type", pkt.Type.String())
		}
		if !pkt.Type.HasRequestID() {
			// VERSION only ever arrives as the first frame, handled by
			// the caller of handshake() directly reading c.r; reaching
			// here means a second, unsolicited handshake-shaped frame.
			c.disconnect(fmt.Errorf("sshfx: unexpected %s after handshake", pkt.Type))
			return
		}
		if err := c.deliver(pkt); err != nil {
			return
		}
	}
}

// readVersionFrame reads exactly one handshake-shaped frame
// (INIT/VERSION) directly, bypassing the id-keyed correlation table
// since handshake frames carry a version instead of a request id.
func readVersionFrame(r io.Reader, maxPacket uint32) (*sshfx.RawPacket, error) {
	pkt := &sshfx.RawPacket{}
	buf := make([]byte, 4096)
	if err := pkt.ReadFrom(r, buf, maxPacket); err != nil {
		return nil, err
	}
	return pkt, nil
}
