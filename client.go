// Package sftpclient implements the core of an SFTP version 3 client:
// packet codec (sshfx), request multiplexer, and protocol engine,
// exposed through a filesystem facade. SSH transport/auth, the local
// filesystem, the server side, and higher-level walk/copy helpers are
// out of scope — see SPEC_FULL.md.
package sftpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-sftp/sftpclient/sshfx"
	"github.com/go-sftp/sftpclient/sshfx/openssh"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// Feature names the engine derives from the negotiated extension map
// (spec §3 "Feature set").
type Feature string

const (
	FeatureHardlink         Feature = "HARDLINK"
	FeaturePosixRename      Feature = "POSIX_RENAME"
	FeatureCopyData         Feature = "COPY_DATA"
	FeatureCheckFileHandle  Feature = "CHECK_FILE_HANDLE"
)

// readRetryLimit bounds the empty-DATA retry policy of spec §4.7/§7;
// kept as an internal tunable per SPEC_FULL.md's Open Question (b)
// decision, not a public ClientOption.
const readRetryLimit = 4

// Client is the bound protocol engine and filesystem facade (spec
// §4.7, §4.8). Construct with NewClientPipe or NewClient.
type Client struct {
	conn      *conn
	sessionID uint64

	maxPacket      uint32
	maxReadLength  uint32
	maxWriteLength uint32
	maxInflight    int

	extensions map[string]string
	features   map[Feature]bool

	logger *slog.Logger
}

// ClientOption configures a Client at construction time, matching the
// teacher's functional-options pattern (pkg-sftp client.go).
type ClientOption func(*Client) error

// WithMaxPacketLength bounds the largest frame the engine will read or
// write, overriding the default sshfx.MaxPacketLength.
func WithMaxPacketLength(n uint32) ClientOption {
	return func(c *Client) error {
		if n == 0 {
			return fmt.Errorf("sftpclient: max packet length must be positive")
		}
		c.maxPacket = n
		return nil
	}
}

// WithMaxDataLength bounds the per-request READ/WRITE block length,
// overriding the spec §4.7 defaults (256 KiB read, 32 KiB write).
func WithMaxDataLength(read, write uint32) ClientOption {
	return func(c *Client) error {
		if read == 0 || write == 0 {
			return fmt.Errorf("sftpclient: max data length must be positive")
		}
		c.maxReadLength, c.maxWriteLength = read, write
		return nil
	}
}

// WithMaxInflight bounds the number of concurrent in-flight WRITE
// requests a single File's ReadFrom pipelining will issue.
func WithMaxInflight(n int) ClientOption {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("sftpclient: max inflight must be positive")
		}
		c.maxInflight = n
		return nil
	}
}

// WithLogger attaches a structured logger; see SPEC_FULL.md's ambient
// logging section. A nil logger disables logging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClientPipe binds a Client to an already-open byte-stream channel
// (the "host_channel" collaborator of spec §3) and performs the version
// handshake before returning.
func NewClientPipe(ctx context.Context, rw io.ReadWriter, opts ...ClientOption) (*Client, error) {
	c := &Client{
		sessionID:      newSessionID(),
		maxPacket:      sshfx.MaxPacketLength,
		maxReadLength:  sshfx.MaxReadBlockLength,
		maxWriteLength: sshfx.MaxWriteBlockLength,
		maxInflight:    64,
		features:       make(map[Feature]bool),
		logger:         defaultLogger(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.conn = newConn(rw, c.maxPacket, c.logger)

	if err := c.handshake(ctx); err != nil {
		c.conn.disconnect(err)
		return nil, err
	}
	go c.conn.recvLoop()
	return c, nil
}

// NewClient is the golang.org/x/crypto/ssh convenience constructor
// (SPEC_FULL.md's DOMAIN STACK): it opens the "sftp" subsystem on an
// already-authenticated ssh.Client and binds a Client to the resulting
// pipe. SSH transport and authentication themselves remain out of
// scope; this is the one seam where the engine touches golang.org/x/crypto.
func NewClient(ctx context.Context, sshConn *ssh.Client, opts ...ClientOption) (*Client, error) {
	session, err := sshConn.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "sftpclient: opening ssh session")
	}
	wIn, err := session.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "sftpclient: stdin pipe")
	}
	rOut, err := session.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "sftpclient: stdout pipe")
	}
	if err := session.RequestSubsystem("sftp"); err != nil {
		return nil, errors.Wrap(err, "sftpclient: requesting sftp subsystem")
	}
	return NewClientPipe(ctx, &sshPipe{w: wIn, r: rOut, session: session}, opts...)
}

// sshPipe adapts an ssh.Session's split stdin/stdout pipes, plus the
// session itself for teardown, to the pipe interface.
type sshPipe struct {
	w       interface{ Write([]byte) (int, error) }
	r       interface{ Read([]byte) (int, error) }
	session *ssh.Session
}

func (p *sshPipe) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *sshPipe) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *sshPipe) Close() error                { return p.session.Close() }

// handshake performs spec §4.7's initialization: send INIT(version=3),
// expect VERSION(version=3), then fold in the extension list, applying
// the @openssh.com comma-dedup rule before populating the feature map.
func (c *Client) handshake(ctx context.Context) error {
	init := &sshfx.InitPacket{Version: sshfx.Version}
	frame, err := init.MarshalPacket()
	if err != nil {
		return err
	}
	if _, err := c.conn.w.Write(frame); err != nil {
		return errors.Wrap(err, "sftpclient: sending INIT")
	}

	pkt, err := readVersionFrame(c.conn.r, c.maxPacket)
	if err != nil {
		return errors.Wrap(err, "sftpclient: reading VERSION")
	}
	if pkt.Type != sshfx.PacketTypeVersion {
		return sshfx.NewStatusError(sshfx.StatusBadMessage,
			fmt.Sprintf("expected VERSION, got %s", pkt.Type), sshfx.CommandInfo{Command: "handshake"})
	}
	version, err := pkt.Data.ConsumeUint32()
	if err != nil {
		return err
	}
	if version != sshfx.Version {
		return sshfx.NewStatusError(sshfx.StatusBadMessage,
			fmt.Sprintf("unsupported server version %d", version), sshfx.CommandInfo{Command: "handshake"})
	}

	vpkt := &sshfx.VersionPacket{Version: version}
	if err := vpkt.UnmarshalExtensions(pkt.Data); err != nil {
		return err
	}

	c.extensions = make(map[string]string, len(vpkt.Extensions))
	for _, e := range vpkt.Extensions {
		if strings.HasSuffix(e.Name, "@openssh.com") {
			if prev, ok := c.extensions[e.Name]; ok {
				c.extensions[e.Name] = prev + "," + e.Data
				continue
			}
		}
		c.extensions[e.Name] = e.Data
	}

	if sshfx.ExtensionContains(c.extensions["hardlink@openssh.com"], "1") {
		c.features[FeatureHardlink] = true
	}
	if sshfx.ExtensionContains(c.extensions["posix-rename@openssh.com"], "1") {
		c.features[FeaturePosixRename] = true
	}
	c.features[FeatureCopyData] = true
	c.features[FeatureCheckFileHandle] = true

	if c.logger != nil {
		c.logger.Debug("sftp: handshake complete", "version", version, "extensions", len(c.extensions))
	}
	return nil
}

// HasFeature reports whether the server advertised the named capability
// during handshake (spec §3 "Feature set").
func (c *Client) HasFeature(f Feature) bool {
	return c.features[f]
}

// Close tears down the session (spec §4.6 Teardown): every parked
// continuation is failed with CONNECTION_LOST, and no further submit
// will succeed afterward.
func (c *Client) Close() error {
	c.conn.disconnect(nil)
	return nil
}

// normalizePath rewrites a leading "~" per spec §4.7's path
// normalization rule; full tilde-expansion remains the server's job.
func normalizePath(p string) string {
	switch {
	case p == "~":
		return "."
	case strings.HasPrefix(p, "~/"):
		return "." + p[1:]
	default:
		return p
	}
}

// roundTrip dispatches a request and blocks for its response or for ctx
// cancellation, implementing spec §5's "asynchronous completion
// delivered via the caller's continuation" contract on top of conn's
// channel-based correlation table.
func (c *Client) roundTrip(ctx context.Context, t sshfx.PacketType, m sshfx.Marshaler, sizeHint int) (*sshfx.RawPacket, error) {
	id := c.conn.allocID()
	frame, err := sshfx.MarshalPacket(t, id, m, sizeHint)
	if err != nil {
		return nil, err
	}
	ch := make(chan result, 1)
	if err := c.conn.dispatch(id, frame, nil, ch); err != nil {
		return nil, err
	}
	select {
	case r := <-ch:
		return r.pkt, r.err
	case <-ctx.Done():
		c.conn.unpark(id)
		return nil, ctx.Err()
	}
}

// expectStatus parks a request whose only valid non-error response is
// STATUS==OK (spec §4.7's uniform response-type check).
func (c *Client) expectStatus(ctx context.Context, t sshfx.PacketType, m sshfx.Marshaler, info sshfx.CommandInfo) error {
	pkt, err := c.roundTrip(ctx, t, m, 64)
	if err != nil {
		return err
	}
	return c.decodeStatus(pkt, info)
}

func (c *Client) decodeStatus(pkt *sshfx.RawPacket, info sshfx.CommandInfo) error {
	if pkt.Type != sshfx.PacketTypeStatus {
		return sshfx.NewStatusError(sshfx.StatusBadMessage,
			fmt.Sprintf("expected STATUS, got %s", pkt.Type), info)
	}
	sp := &sshfx.StatusPacket{}
	if err := sp.UnmarshalFrom(pkt.Data); err != nil {
		return err
	}
	if sp.StatusCode == sshfx.StatusOK {
		return nil
	}
	return sshfx.NewStatusError(sp.StatusCode, sp.ErrorMessage, info)
}

// --- Filesystem facade (spec §4.8) ---

// Mkdir creates a directory with default attributes.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	path = normalizePath(path)
	req := &sshfx.MkdirPacket{Path: path}
	return c.expectStatus(ctx, sshfx.PacketTypeMkdir, req, sshfx.CommandInfo{Command: "mkdir", Path: path})
}

// MkdirAll creates path and any missing parents, tolerating an
// already-exists error on any component — a thin convenience layered on
// Mkdir and Stat, per SPEC_FULL.md §SUPPLEMENTED BEHAVIOR item 5.
func (c *Client) MkdirAll(ctx context.Context, path string) error {
	path = normalizePath(path)
	if path == "" || path == "." || path == "/" {
		return nil
	}
	if fi, err := c.Stat(ctx, path); err == nil {
		if fi.Permissions&sshfx.ModeFmt == sshfx.ModeDir {
			return nil
		}
		return sshfx.NewKindError(sshfx.KindEFAILURE, "not a directory", sshfx.CommandInfo{Command: "mkdirall", Path: path})
	}
	parent := parentDir(path)
	if parent != "" && parent != path {
		if err := c.MkdirAll(ctx, parent); err != nil {
			return err
		}
	}
	err := c.Mkdir(ctx, path)
	if err == nil {
		return nil
	}
	if se, ok := asStatusError(err); ok && se.Code == sshfx.StatusFailure {
		if fi, statErr := c.Stat(ctx, path); statErr == nil && fi.Permissions&sshfx.ModeFmt == sshfx.ModeDir {
			return nil
		}
	}
	return err
}

func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

func asStatusError(err error) (*sshfx.StatusError, bool) {
	se, ok := errors.Cause(err).(*sshfx.StatusError)
	return se, ok
}

// Remove removes path, trying REMOVE then RMDIR and disambiguating a
// mismatched pair of errors with a STAT, matching the teacher's
// Client.Remove (SPEC_FULL.md §SUPPLEMENTED BEHAVIOR item 6).
func (c *Client) Remove(ctx context.Context, path string) error {
	path = normalizePath(path)
	err := c.expectStatus(ctx, sshfx.PacketTypeRemove, &sshfx.RemovePacket{Filename: path},
		sshfx.CommandInfo{Command: "remove", Path: path})
	if err == nil {
		return nil
	}
	rmdirErr := c.expectStatus(ctx, sshfx.PacketTypeRmdir, &sshfx.RmdirPacket{Path: path},
		sshfx.CommandInfo{Command: "rmdir", Path: path})
	if rmdirErr == nil {
		return nil
	}
	if fi, statErr := c.Stat(ctx, path); statErr == nil {
		if fi.Permissions&sshfx.ModeFmt == sshfx.ModeDir {
			return rmdirErr
		}
		return err
	}
	return err
}

// RealPath resolves path to a canonical absolute path.
func (c *Client) RealPath(ctx context.Context, path string) (string, error) {
	path = normalizePath(path)
	pkt, err := c.roundTrip(ctx, sshfx.PacketTypeRealpath, &sshfx.RealpathPacket{Path: path}, 64)
	if err != nil {
		return "", err
	}
	info := sshfx.CommandInfo{Command: "realpath", Path: path}
	name, err := c.singleName(pkt, info)
	if err != nil {
		return "", err
	}
	return name.Filename, nil
}

// ReadLink reads the target of a symbolic link.
func (c *Client) ReadLink(ctx context.Context, path string) (string, error) {
	path = normalizePath(path)
	pkt, err := c.roundTrip(ctx, sshfx.PacketTypeReadlink, &sshfx.ReadlinkPacket{Path: path}, 64)
	if err != nil {
		return "", err
	}
	info := sshfx.CommandInfo{Command: "readlink", Path: path}
	name, err := c.singleName(pkt, info)
	if err != nil {
		return "", err
	}
	return name.Filename, nil
}

func (c *Client) singleName(pkt *sshfx.RawPacket, info sshfx.CommandInfo) (*sshfx.NameEntry, error) {
	if pkt.Type == sshfx.PacketTypeStatus {
		return nil, c.decodeStatus(pkt, info)
	}
	if pkt.Type != sshfx.PacketTypeName {
		return nil, sshfx.NewStatusError(sshfx.StatusBadMessage, fmt.Sprintf("expected NAME, got %s", pkt.Type), info)
	}
	np := &sshfx.NamePacket{}
	if err := np.UnmarshalFrom(pkt.Data); err != nil {
		return nil, err
	}
	if len(np.Entries) != 1 {
		return nil, sshfx.NewStatusError(sshfx.StatusBadMessage,
			fmt.Sprintf("expected exactly one NAME entry, got %d", len(np.Entries)), info)
	}
	return np.Entries[0], nil
}

// Symlink creates link at linkpath pointing at target.
func (c *Client) Symlink(ctx context.Context, target, linkpath string) error {
	target, linkpath = normalizePath(target), normalizePath(linkpath)
	req := &sshfx.SymlinkPacket{Targetpath: target, Linkpath: linkpath}
	return c.expectStatus(ctx, sshfx.PacketTypeSymlink, req,
		sshfx.CommandInfo{Command: "symlink", Path: linkpath, Target: target})
}

// Link creates a hard link at newname pointing at oldname, gated by the
// HARDLINK feature (spec §4.7).
func (c *Client) Link(ctx context.Context, oldname, newname string) error {
	oldname, newname = normalizePath(oldname), normalizePath(newname)
	info := sshfx.CommandInfo{Command: "link", Path: oldname, Target: newname}
	if !c.HasFeature(FeatureHardlink) {
		return sshfx.NewStatusError(sshfx.StatusOpUnsupported, "server does not support hardlink@openssh.com", info)
	}
	ext := &sshfx.ExtendedPacket{Data: &openssh.HardlinkExtendedPacket{Oldpath: oldname, Newpath: newname}}
	return c.expectStatus(ctx, sshfx.PacketTypeExtended, ext, info)
}

// Rename renames oldpath to newpath. flags==0 uses the plain RENAME
// request; RenameOverwrite routes through posix-rename@openssh.com and
// fails OP_UNSUPPORTED if the feature is absent; any other flag value
// fails OP_UNSUPPORTED before any packet is sent (spec §4.7).
func (c *Client) Rename(ctx context.Context, oldpath, newpath string, flags uint32) error {
	oldpath, newpath = normalizePath(oldpath), normalizePath(newpath)
	info := sshfx.CommandInfo{Command: "rename", Path: oldpath, Target: newpath}
	switch flags {
	case 0:
		req := &sshfx.RenamePacket{OldPath: oldpath, NewPath: newpath}
		return c.expectStatus(ctx, sshfx.PacketTypeRename, req, info)
	case sshfx.RenameOverwrite:
		if !c.HasFeature(FeaturePosixRename) {
			return sshfx.NewStatusError(sshfx.StatusOpUnsupported, "server does not support posix-rename@openssh.com", info)
		}
		ext := &sshfx.ExtendedPacket{Data: &openssh.PosixRenameExtendedPacket{Oldpath: oldpath, Newpath: newpath}}
		return c.expectStatus(ctx, sshfx.PacketTypeExtended, ext, info)
	default:
		return sshfx.NewStatusError(sshfx.StatusOpUnsupported, fmt.Sprintf("unsupported rename flags %#x", flags), info)
	}
}

// Stat, LStat follow/do-not-follow symlinks respectively; both clear
// the flags field before surfacing Attributes to callers (spec §4.7).
func (c *Client) Stat(ctx context.Context, path string) (sshfx.Attributes, error) {
	return c.statByPath(ctx, sshfx.PacketTypeStat, path)
}

func (c *Client) LStat(ctx context.Context, path string) (sshfx.Attributes, error) {
	return c.statByPath(ctx, sshfx.PacketTypeLStat, path)
}

func (c *Client) statByPath(ctx context.Context, t sshfx.PacketType, path string) (sshfx.Attributes, error) {
	path = normalizePath(path)
	info := sshfx.CommandInfo{Command: t.String(), Path: path}
	var req sshfx.Marshaler
	if t == sshfx.PacketTypeStat {
		req = &sshfx.StatPacket{Path: path}
	} else {
		req = &sshfx.LStatPacket{Path: path}
	}
	pkt, err := c.roundTrip(ctx, t, req, 64)
	if err != nil {
		return sshfx.Attributes{}, err
	}
	return c.decodeAttrs(pkt, info)
}

func (c *Client) decodeAttrs(pkt *sshfx.RawPacket, info sshfx.CommandInfo) (sshfx.Attributes, error) {
	if pkt.Type == sshfx.PacketTypeStatus {
		return sshfx.Attributes{}, c.decodeStatus(pkt, info)
	}
	if pkt.Type != sshfx.PacketTypeAttrs {
		return sshfx.Attributes{}, sshfx.NewStatusError(sshfx.StatusBadMessage, fmt.Sprintf("expected ATTRS, got %s", pkt.Type), info)
	}
	ap := &sshfx.AttrsPacket{}
	if err := ap.UnmarshalFrom(pkt.Data); err != nil {
		return sshfx.Attributes{}, err
	}
	attrs := ap.Attrs
	attrs.Flags = 0
	return attrs, nil
}

// SetStat applies attrs to path.
func (c *Client) SetStat(ctx context.Context, path string, attrs sshfx.Attributes) error {
	path = normalizePath(path)
	req := &sshfx.SetstatPacket{Path: path, Attrs: attrs}
	return c.expectStatus(ctx, sshfx.PacketTypeSetstat, req, sshfx.CommandInfo{Command: "setstat", Path: path})
}

// Truncate, Chmod, Chown, and Chtimes are thin SetStat wrappers, as in
// the teacher.
func (c *Client) Truncate(ctx context.Context, path string, size int64) error {
	return c.SetStat(ctx, path, sshfx.Attributes{Flags: sshfx.AttrSize, Size: uint64(size)})
}

func (c *Client) Chmod(ctx context.Context, path string, mode uint32) error {
	return c.SetStat(ctx, path, sshfx.Attributes{Flags: sshfx.AttrPermissions, Permissions: mode})
}

func (c *Client) Chown(ctx context.Context, path string, uid, gid uint32) error {
	return c.SetStat(ctx, path, sshfx.Attributes{Flags: sshfx.AttrUIDGID, UID: uid, GID: gid})
}

func (c *Client) Chtimes(ctx context.Context, path string, atime, mtime uint32) error {
	return c.SetStat(ctx, path, sshfx.Attributes{Flags: sshfx.AttrACModTime, ATime: atime, MTime: mtime})
}

// Copy issues fcopy via the copy-data extension (spec §4.7's #if FULL
// op table row), gated by COPY_DATA.
func (c *Client) Copy(ctx context.Context, from Handle, fromOffset, length int64, to Handle, toOffset int64) error {
	info := sshfx.CommandInfo{Command: "fcopy", Handle: from.token, Target: to.token}
	if err := c.checkHandle(from, "fcopy", ""); err != nil {
		return err
	}
	if err := c.checkHandle(to, "fcopy", ""); err != nil {
		return err
	}
	if !c.HasFeature(FeatureCopyData) {
		return sshfx.NewStatusError(sshfx.StatusOpUnsupported, "server does not support copy-data", info)
	}
	ext := &sshfx.ExtendedPacket{Data: &openssh.CopyDataExtendedPacket{
		ReadFromHandle: from.token, ReadFromOffset: fromOffset, Length: length,
		WriteToHandle: to.token, WriteToOffset: toOffset,
	}}
	return c.expectStatus(ctx, sshfx.PacketTypeExtended, ext, info)
}

// Hash issues fhash via the check-file-handle extension, gated by
// CHECK_FILE_HANDLE.
func (c *Client) Hash(ctx context.Context, h Handle, algorithms string, offset, length int64, blockLength uint32) (*openssh.CheckFileHandleReply, error) {
	info := sshfx.CommandInfo{Command: "fhash", Handle: h.token}
	if err := c.checkHandle(h, "fhash", ""); err != nil {
		return nil, err
	}
	if !c.HasFeature(FeatureCheckFileHandle) {
		return nil, sshfx.NewStatusError(sshfx.StatusOpUnsupported, "server does not support check-file-handle", info)
	}
	ext := &sshfx.ExtendedPacket{Data: &openssh.CheckFileHandleExtendedPacket{
		Handle: h.token, AlgorithmList: algorithms, Offset: offset, Length: length, BlockLength: blockLength,
	}}
	pkt, err := c.roundTrip(ctx, sshfx.PacketTypeExtended, ext, 128)
	if err != nil {
		return nil, err
	}
	if pkt.Type == sshfx.PacketTypeStatus {
		return nil, c.decodeStatus(pkt, info)
	}
	if pkt.Type != sshfx.PacketTypeExtendedReply {
		return nil, sshfx.NewStatusError(sshfx.StatusBadMessage, fmt.Sprintf("expected EXTENDED_REPLY, got %s", pkt.Type), info)
	}
	reply := &openssh.CheckFileHandleReply{}
	if err := reply.UnmarshalFrom(pkt.Data); err != nil {
		return nil, err
	}
	return reply, nil
}
