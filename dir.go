package sftpclient

import (
	"context"
	"fmt"

	"github.com/go-sftp/sftpclient/sshfx"
)

// Dir is an open remote directory enumeration, wrapping a session-bound
// Handle returned by OpenDir.
type Dir struct {
	c    *Client
	h    Handle
	path string
	done bool
}

// OpenDir opens path for enumeration via READDIR.
func (c *Client) OpenDir(ctx context.Context, path string) (*Dir, error) {
	path = normalizePath(path)
	info := sshfx.CommandInfo{Command: "opendir", Path: path}
	pkt, err := c.roundTrip(ctx, sshfx.PacketTypeOpenDir, &sshfx.OpenDirPacket{Path: path}, 64)
	if err != nil {
		return nil, err
	}
	h, err := c.decodeHandle(pkt, info)
	if err != nil {
		return nil, err
	}
	return &Dir{c: c, h: h, path: path}, nil
}

// Close closes the directory handle.
func (d *Dir) Close(ctx context.Context) error {
	if err := d.c.checkHandle(d.h, "close", d.path); err != nil {
		return err
	}
	return d.c.expectStatus(ctx, sshfx.PacketTypeClose, &sshfx.ClosePacket{Handle: d.h.token},
		sshfx.CommandInfo{Command: "close", Path: d.path, Handle: d.h.token})
}

// Next returns the next batch of entries from one READDIR request, and
// a false ok once the server reports EOF (spec §4.7's readdir row:
// "surface false on STATUS=EOF").
func (d *Dir) Next(ctx context.Context) (entries []*sshfx.NameEntry, ok bool, err error) {
	if d.done {
		return nil, false, nil
	}
	if err := d.c.checkHandle(d.h, "readdir", d.path); err != nil {
		return nil, false, err
	}
	info := sshfx.CommandInfo{Command: "readdir", Path: d.path, Handle: d.h.token}
	pkt, err := d.c.roundTrip(ctx, sshfx.PacketTypeReadDir, &sshfx.ReadDirPacket{Handle: d.h.token}, 64)
	if err != nil {
		return nil, false, err
	}
	if pkt.Type == sshfx.PacketTypeStatus {
		sp := &sshfx.StatusPacket{}
		if uerr := sp.UnmarshalFrom(pkt.Data); uerr != nil {
			return nil, false, uerr
		}
		if sp.StatusCode == sshfx.StatusEOF {
			d.done = true
			return nil, false, nil
		}
		return nil, false, sshfx.NewStatusError(sp.StatusCode, sp.ErrorMessage, info)
	}
	if pkt.Type != sshfx.PacketTypeName {
		return nil, false, sshfx.NewStatusError(sshfx.StatusBadMessage, fmt.Sprintf("expected NAME, got %s", pkt.Type), info)
	}
	np := &sshfx.NamePacket{}
	if uerr := np.UnmarshalFrom(pkt.Data); uerr != nil {
		return nil, false, uerr
	}
	return np.Entries, true, nil
}

// ReadDir opens path, drains every READDIR batch, closes the handle,
// and returns the full entry list — a convenience over Dir.Next, in the
// same spirit as the teacher's ReadDir (SPEC_FULL.md §SUPPLEMENTED
// BEHAVIOR item 5).
func (c *Client) ReadDir(ctx context.Context, path string) ([]*sshfx.NameEntry, error) {
	d, err := c.OpenDir(ctx, path)
	if err != nil {
		return nil, err
	}
	defer d.Close(ctx)

	var all []*sshfx.NameEntry
	for {
		batch, ok, err := d.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if !ok {
			break
		}
	}
	return all, nil
}

// Readdir is an alias for ReadDir kept for API familiarity with the
// teacher's naming (pkg-sftp exposes both Readdir and ReadDir).
func (c *Client) Readdir(ctx context.Context, path string) ([]*sshfx.NameEntry, error) {
	return c.ReadDir(ctx, path)
}
