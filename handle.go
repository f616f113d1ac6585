package sftpclient

import (
	"sync/atomic"

	"github.com/go-sftp/sftpclient/sshfx"
)

// sessionCounter hands out a distinct identity to every Client so that a
// Handle can remember which session issued it (spec §3, §4.7 "Handle
// validation"). Grounded on the teacher's session-reference-inside-handle
// idea, but as a plain comparable id rather than a pointer back to the
// session, per the cleaner design spec §9 recommends — this avoids a
// cyclic reference between Client and Handle.
var sessionCounter atomic.Uint64

func newSessionID() uint64 {
	return sessionCounter.Add(1)
}

// Handle is an opaque server-issued token wrapped with the identity of
// the session that obtained it. A Handle minted by one Client must never
// be accepted by another.
type Handle struct {
	token   string
	session uint64
}

// checkHandle verifies that h was issued by c, per spec §4.7's handle
// validation rule: this runs before any wire activity.
func (c *Client) checkHandle(h Handle, command, path string) error {
	if h.session != c.sessionID {
		return sshfx.NewKindError(sshfx.KindEFAILURE, "invalid handle: wrong session", sshfx.CommandInfo{
			Command: command,
			Path:    path,
			Handle:  h.token,
		})
	}
	return nil
}
