package sshfx

import (
	"fmt"
	"io/fs"
)

// ErrorKind is the symbolic error classification a Status maps to
// (spec §4.5).
type ErrorKind string

// Error kinds and their conventional errno-style numbers, per spec §4.5.
const (
	KindEOF        ErrorKind = "EOF"
	KindENOENT     ErrorKind = "ENOENT"
	KindEACCES     ErrorKind = "EACCES"
	KindENOTCONN   ErrorKind = "ENOTCONN"
	KindESHUTDOWN  ErrorKind = "ESHUTDOWN"
	KindENOSYS     ErrorKind = "ENOSYS"
	KindEFAILURE   ErrorKind = "EFAILURE"
	KindEIO        ErrorKind = "EIO"
	KindUnknown    ErrorKind = "UNKNOWN"
)

var errnoByKind = map[ErrorKind]int{
	KindEOF:       1,
	KindENOENT:    34,
	KindEACCES:    3,
	KindENOTCONN:  31,
	KindESHUTDOWN: 46,
	KindENOSYS:    35,
	KindEFAILURE:  -2,
	KindEIO:       55,
	KindUnknown:   -1,
}

// classify implements spec §4.5's status-to-kind table.
func classify(code Status) ErrorKind {
	switch code {
	case StatusEOF:
		return KindEOF
	case StatusNoSuchFile:
		return KindENOENT
	case StatusPermissionDenied:
		return KindEACCES
	case StatusNoConnection:
		return KindENOTCONN
	case StatusConnectionLost:
		return KindESHUTDOWN
	case StatusOpUnsupported:
		return KindENOSYS
	case StatusOK, StatusFailure, StatusBadMessage:
		return KindEFAILURE
	default:
		return KindUnknown
	}
}

// CommandInfo enriches a StatusError with the operation that triggered
// it, matching the correlation entry's "command info" (spec §3, §4.5).
type CommandInfo struct {
	Command string
	Path    string
	Handle  string
	Target  string
}

// StatusError is the leaf error type surfaced for any non-OK SFTP
// status, or for a client-side condition mapped onto a status-shaped
// kind/errno pair (e.g. a handle-ownership violation).
type StatusError struct {
	Code    Status
	Kind    ErrorKind
	Errno   int
	Message string
	Info    CommandInfo
}

// NewStatusError builds a StatusError from a numeric status and message,
// classifying it per spec §4.5.
func NewStatusError(code Status, message string, info CommandInfo) *StatusError {
	kind := classify(code)
	return &StatusError{
		Code:    code,
		Kind:    kind,
		Errno:   errnoByKind[kind],
		Message: message,
		Info:    info,
	}
}

// NewKindError builds a StatusError for a kind that has no corresponding
// wire status, such as EIO(55) on read-retry exhaustion.
func NewKindError(kind ErrorKind, message string, info CommandInfo) *StatusError {
	return &StatusError{
		Kind:    kind,
		Errno:   errnoByKind[kind],
		Message: message,
		Info:    info,
	}
}

func (e *StatusError) Error() string {
	if e.Info.Command == "" {
		return fmt.Sprintf("sftp: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("sftp: %s %q: %s (%s): %s", e.Info.Command, e.Info.Path, e.Kind, e.Code, e.Message)
}

// Is supports errors.Is(err, &sshfx.StatusError{Kind: sshfx.KindEOF})
// style matching against the
// symbolic kind without caring about the numeric status or wrapping, and
// also matches the fs.ErrNotExist/fs.ErrPermission sentinels for
// KindENOENT/KindEACCES so callers can use the standard library's own
// filesystem-error vocabulary without importing sshfx.
func (e *StatusError) Is(target error) bool {
	if other, ok := target.(*StatusError); ok {
		return e.Kind == other.Kind
	}
	switch target {
	case fs.ErrNotExist:
		return e.Kind == KindENOENT
	case fs.ErrPermission:
		return e.Kind == KindEACCES
	}
	return false
}
