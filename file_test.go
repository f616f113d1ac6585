package sftpclient

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/go-sftp/sftpclient/sshfx"
	"github.com/stretchr/testify/require"
)

// TestOpenCloseRoundTrip is concrete scenario 2 of spec §8: an
// open("/a", "r") followed by a close on the returned handle.
func TestOpenCloseRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	c := &Client{
		conn:          newConn(clientConn, sshfx.MaxPacketLength, nil),
		sessionID:     newSessionID(),
		features:      make(map[Feature]bool),
		maxReadLength: sshfx.MaxReadBlockLength,
	}
	go c.conn.recvLoop()

	go func() {
		buf := make([]byte, 256)

		openPkt := &sshfx.RawPacket{}
		if err := openPkt.ReadFrom(serverConn, buf, sshfx.MaxPacketLength); err != nil {
			return
		}
		var req sshfx.OpenPacket
		if err := req.UnmarshalFrom(openPkt.Data); err != nil {
			return
		}
		if req.Filename != "/a" {
			return
		}
		hp := &sshfx.HandlePacket{Handle: "srv-handle-1"}
		frame, err := sshfx.MarshalPacket(sshfx.PacketTypeHandle, openPkt.RequestID, hp, 32)
		if err != nil {
			return
		}
		if _, err := serverConn.Write(frame); err != nil {
			return
		}

		closePkt := &sshfx.RawPacket{}
		if err := closePkt.ReadFrom(serverConn, buf, sshfx.MaxPacketLength); err != nil {
			return
		}
		var creq sshfx.ClosePacket
		if err := creq.UnmarshalFrom(closePkt.Data); err != nil {
			return
		}
		if creq.Handle != "srv-handle-1" {
			return
		}
		sp := &sshfx.StatusPacket{StatusCode: sshfx.StatusOK}
		cframe, err := sshfx.MarshalPacket(sshfx.PacketTypeStatus, closePkt.RequestID, sp, 32)
		if err != nil {
			return
		}
		_, _ = serverConn.Write(cframe)
	}()

	f, err := c.Open(context.Background(), "/a")
	require.NoError(t, err)
	require.Equal(t, "srv-handle-1", f.h.token)
	require.Equal(t, c.sessionID, f.h.session)

	require.NoError(t, f.Close(context.Background()))
}

// TestReadReturnsEOFOnStatusEOF is concrete scenario 3 of spec §8: a
// STATUS=EOF reply to READ surfaces as io.EOF with zero bytes.
func TestReadReturnsEOFOnStatusEOF(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	c := &Client{
		conn:          newConn(clientConn, sshfx.MaxPacketLength, nil),
		sessionID:     newSessionID(),
		features:      make(map[Feature]bool),
		maxReadLength: sshfx.MaxReadBlockLength,
	}
	go c.conn.recvLoop()

	go func() {
		buf := make([]byte, 256)
		pkt := &sshfx.RawPacket{}
		if err := pkt.ReadFrom(serverConn, buf, sshfx.MaxPacketLength); err != nil {
			return
		}
		sp := &sshfx.StatusPacket{StatusCode: sshfx.StatusEOF}
		frame, err := sshfx.MarshalPacket(sshfx.PacketTypeStatus, pkt.RequestID, sp, 32)
		if err != nil {
			return
		}
		_, _ = serverConn.Write(frame)
	}()

	f := &File{c: c, h: Handle{token: "h", session: c.sessionID}, path: "/x"}
	n, err := f.ReadAt(context.Background(), make([]byte, 16), 0)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}
