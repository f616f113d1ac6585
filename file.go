package sftpclient

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-sftp/sftpclient/sshfx"
)

// File is an open remote file, wrapping a session-bound Handle. Its
// io-style methods (Read, Write, ReadAt, WriteAt, ReadFrom) take a
// context, so File does not satisfy the io interfaces of those names;
// it does not attempt to be a full os.File replacement (that belongs to
// the out-of-scope higher-level layer).
type File struct {
	c    *Client
	h    Handle
	path string

	mu     sync.Mutex
	offset int64
}

// Open opens path for reading (spec §4.7 "open" with the default "r"
// mode), matching the teacher's Client.Open.
func (c *Client) Open(ctx context.Context, path string) (*File, error) {
	return c.OpenFile(ctx, path, "r")
}

// Create opens path for writing, creating it and truncating any
// existing contents.
func (c *Client) Create(ctx context.Context, path string) (*File, error) {
	return c.OpenFile(ctx, path, "w")
}

// OpenFile opens path with the given symbolic mode spec (spec §4.2's
// ToNumber vocabulary, e.g. "r", "w+", "ax").
func (c *Client) OpenFile(ctx context.Context, path, mode string) (*File, error) {
	path = normalizePath(path)
	pflags, err := sshfx.ToNumber(mode)
	if err != nil {
		return nil, err
	}
	req := &sshfx.OpenPacket{Filename: path, PFlags: pflags}
	info := sshfx.CommandInfo{Command: "open", Path: path}
	pkt, err := c.roundTrip(ctx, sshfx.PacketTypeOpen, req, 64)
	if err != nil {
		return nil, err
	}
	h, err := c.decodeHandle(pkt, info)
	if err != nil {
		return nil, err
	}
	return &File{c: c, h: h, path: path}, nil
}

func (c *Client) decodeHandle(pkt *sshfx.RawPacket, info sshfx.CommandInfo) (Handle, error) {
	if pkt.Type == sshfx.PacketTypeStatus {
		return Handle{}, c.decodeStatus(pkt, info)
	}
	if pkt.Type != sshfx.PacketTypeHandle {
		return Handle{}, sshfx.NewStatusError(sshfx.StatusBadMessage, fmt.Sprintf("expected HANDLE, got %s", pkt.Type), info)
	}
	hp := &sshfx.HandlePacket{}
	if err := hp.UnmarshalFrom(pkt.Data); err != nil {
		return Handle{}, err
	}
	return Handle{token: hp.Handle, session: c.sessionID}, nil
}

// Close closes the remote file handle.
func (f *File) Close(ctx context.Context) error {
	if err := f.c.checkHandle(f.h, "close", f.path); err != nil {
		return err
	}
	return f.c.expectStatus(ctx, sshfx.PacketTypeClose, &sshfx.ClosePacket{Handle: f.h.token},
		sshfx.CommandInfo{Command: "close", Path: f.path, Handle: f.h.token})
}

// Stat fstat's the open file.
func (f *File) Stat(ctx context.Context) (sshfx.Attributes, error) {
	if err := f.c.checkHandle(f.h, "fstat", f.path); err != nil {
		return sshfx.Attributes{}, err
	}
	info := sshfx.CommandInfo{Command: "fstat", Path: f.path, Handle: f.h.token}
	pkt, err := f.c.roundTrip(ctx, sshfx.PacketTypeFStat, &sshfx.FStatPacket{Handle: f.h.token}, 64)
	if err != nil {
		return sshfx.Attributes{}, err
	}
	return f.c.decodeAttrs(pkt, info)
}

// SetStat fsetstat's the open file.
func (f *File) SetStat(ctx context.Context, attrs sshfx.Attributes) error {
	if err := f.c.checkHandle(f.h, "fsetstat", f.path); err != nil {
		return err
	}
	req := &sshfx.FSetstatPacket{Handle: f.h.token, Attrs: attrs}
	return f.c.expectStatus(ctx, sshfx.PacketTypeFSetstat, req, sshfx.CommandInfo{Command: "fsetstat", Path: f.path, Handle: f.h.token})
}

// Read reads into b starting at the file's current sequential offset,
// advancing it by the number of bytes read. Callers doing random access
// should use ReadAt directly instead.
func (f *File) Read(ctx context.Context, b []byte) (int, error) {
	f.mu.Lock()
	off := f.offset
	f.mu.Unlock()

	n, err := f.ReadAt(ctx, b, off)
	if n > 0 {
		f.mu.Lock()
		f.offset += int64(n)
		f.mu.Unlock()
	}
	return n, err
}

// Write writes b at the file's current sequential offset, advancing it
// by len(b). Callers doing random access should use WriteAt directly.
func (f *File) Write(ctx context.Context, b []byte) (int, error) {
	f.mu.Lock()
	off := f.offset
	f.mu.Unlock()

	n, err := f.WriteAt(ctx, b, off)
	if n > 0 {
		f.mu.Lock()
		f.offset += int64(n)
		f.mu.Unlock()
	}
	return n, err
}

// ReadAt reads len(b) bytes starting at off, applying spec §4.7's
// zero-byte-DATA retry policy (up to readRetryLimit retries, then
// EIO(55)) and the op table's EOF-on-STATUS handling.
func (f *File) ReadAt(ctx context.Context, b []byte, off int64) (int, error) {
	if err := f.c.checkHandle(f.h, "read", f.path); err != nil {
		return 0, err
	}
	info := sshfx.CommandInfo{Command: "read", Path: f.path, Handle: f.h.token}
	if off < 0 {
		return 0, sshfx.NewKindError(sshfx.KindEFAILURE, "negative offset", info)
	}
	want := uint32(len(b))
	if max := f.c.maxReadLength; want > max {
		want = max
	}

	for attempt := 0; ; attempt++ {
		req := &sshfx.ReadPacket{Handle: f.h.token, Offset: off, Length: want}
		pkt, err := f.c.roundTrip(ctx, sshfx.PacketTypeRead, req, 32)
		if err != nil {
			return 0, err
		}
		if pkt.Type == sshfx.PacketTypeStatus {
			sp := &sshfx.StatusPacket{}
			if err := sp.UnmarshalFrom(pkt.Data); err != nil {
				return 0, err
			}
			if sp.StatusCode == sshfx.StatusEOF {
				return 0, io.EOF
			}
			return 0, sshfx.NewStatusError(sp.StatusCode, sp.ErrorMessage, info)
		}
		if pkt.Type != sshfx.PacketTypeData {
			return 0, sshfx.NewStatusError(sshfx.StatusBadMessage, fmt.Sprintf("expected DATA, got %s", pkt.Type), info)
		}
		dp := &sshfx.DataPacket{}
		if err := dp.UnmarshalFrom(pkt.Data); err != nil {
			return 0, err
		}
		if len(dp.Data) == 0 {
			if attempt >= readRetryLimit {
				return 0, sshfx.NewKindError(sshfx.KindEIO, "empty DATA reply after retry limit", info)
			}
			continue
		}
		n := copy(b, dp.Data)
		return n, nil
	}
}

// WriteAt writes b at off in a single WRITE request. Per spec.md §4.7's
// write row, a length exceeding maxWriteLength is rejected at the facade
// as a precondition violation, not silently split into several packets;
// callers with more than maxWriteLength bytes to send should chunk it
// themselves, or use ReadFrom to stream an arbitrarily long source.
func (f *File) WriteAt(ctx context.Context, b []byte, off int64) (int, error) {
	if err := f.c.checkHandle(f.h, "write", f.path); err != nil {
		return 0, err
	}
	info := sshfx.CommandInfo{Command: "write", Path: f.path, Handle: f.h.token}
	if off < 0 {
		return 0, sshfx.NewKindError(sshfx.KindEFAILURE, "negative offset", info)
	}
	if uint32(len(b)) > f.c.maxWriteLength {
		return 0, sshfx.NewKindError(sshfx.KindEFAILURE,
			fmt.Sprintf("write length %d exceeds maxWriteLength %d", len(b), f.c.maxWriteLength), info)
	}

	req := &sshfx.WritePacket{Handle: f.h.token, Offset: off, Data: b}
	if err := f.writeOne(ctx, req); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (f *File) writeOne(ctx context.Context, req *sshfx.WritePacket) error {
	id := f.c.conn.allocID()
	header, payload, err := req.MarshalPacket(id)
	if err != nil {
		return err
	}
	ch := make(chan result, 1)
	if err := f.c.conn.dispatch(id, header, payload, ch); err != nil {
		return err
	}
	select {
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		return f.c.decodeStatus(r.pkt, sshfx.CommandInfo{Command: "write", Path: f.path, Handle: f.h.token})
	case <-ctx.Done():
		f.c.conn.unpark(id)
		return ctx.Err()
	}
}

// ReadFrom drains r into the file starting at offset 0: a distinct
// streaming convenience from WriteAt, for a source of unbounded or
// unknown length. It takes a context, so it does not satisfy
// io.ReaderFrom.
// It reads r in maxWriteLength chunks and pipelines their WRITE requests
// concurrently (SPEC_FULL.md §SUPPLEMENTED BEHAVIOR item 4) — this is
// independent requests fanned out with distinct ids, the in-flight
// parallelism spec.md §1 allows, not a single oversized write reshaped
// into several; a caller wanting the plain write op precondition uses
// WriteAt directly.
func (f *File) ReadFrom(ctx context.Context, r io.Reader) (int64, error) {
	chunkSize := int(f.c.maxWriteLength)
	if chunkSize <= 0 {
		chunkSize = int(sshfx.MaxWriteBlockLength)
	}

	var total int64
	sem := make(chan struct{}, f.c.maxInflight)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	var firstErrOff int64

	for {
		buf := make([]byte, chunkSize)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			offset := total
			total += int64(n)
			sem <- struct{}{}
			wg.Add(1)
			go func(offset int64, data []byte) {
				defer wg.Done()
				defer func() { <-sem }()
				req := &sshfx.WritePacket{Handle: f.h.token, Offset: offset, Data: data}
				if werr := f.writeOne(ctx, req); werr != nil {
					mu.Lock()
					if firstErr == nil || offset < firstErrOff {
						firstErr, firstErrOff = werr, offset
					}
					mu.Unlock()
				}
			}(offset, buf[:n])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			wg.Wait()
			return total, err
		}
	}
	wg.Wait()
	if firstErr != nil {
		return total, firstErr
	}
	return total, nil
}
