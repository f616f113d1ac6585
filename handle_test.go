package sftpclient

import (
	"context"
	"net"
	"testing"

	"github.com/go-sftp/sftpclient/sshfx"
	"github.com/stretchr/testify/require"
)

// TestHandleRejectedByForeignSession exercises spec §4.7's handle
// validation rule: a Handle minted by one Client must never be accepted
// by another, and the check must happen before any wire activity.
func TestHandleRejectedByForeignSession(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	readAttempted := make(chan struct{}, 1)
	go func() {
		buf := make([]byte, 4)
		_, _ = serverConn.Read(buf)
		readAttempted <- struct{}{}
	}()

	owner := &Client{
		conn:      newConn(clientConn, sshfx.MaxPacketLength, nil),
		sessionID: newSessionID(),
		features:  make(map[Feature]bool),
	}
	stranger := &Client{
		conn:      newConn(clientConn, sshfx.MaxPacketLength, nil),
		sessionID: newSessionID(),
		features:  make(map[Feature]bool),
	}

	h := Handle{token: "server-issued-token", session: owner.sessionID}
	f := &File{c: stranger, h: h, path: "/x"}

	_, err := f.ReadAt(context.Background(), make([]byte, 8), 0)
	require.Error(t, err)
	se, ok := asStatusError(err)
	require.True(t, ok)
	require.Equal(t, sshfx.KindEFAILURE, se.Kind)

	select {
	case <-readAttempted:
		t.Fatal("a handle-ownership violation must be rejected before any wire activity")
	default:
	}
}
