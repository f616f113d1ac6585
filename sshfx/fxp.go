package sshfx

import "fmt"

// PacketType is the wire type byte that opens every SFTP frame.
type PacketType uint8

// Packet types defined by the protocol (spec §6).
const (
	PacketTypeInit     PacketType = 1
	PacketTypeVersion  PacketType = 2
	PacketTypeOpen     PacketType = 3
	PacketTypeClose    PacketType = 4
	PacketTypeRead     PacketType = 5
	PacketTypeWrite    PacketType = 6
	PacketTypeLStat    PacketType = 7
	PacketTypeFStat    PacketType = 8
	PacketTypeSetstat  PacketType = 9
	PacketTypeFSetstat PacketType = 10
	PacketTypeOpenDir  PacketType = 11
	PacketTypeReadDir  PacketType = 12
	PacketTypeRemove   PacketType = 13
	PacketTypeMkdir    PacketType = 14
	PacketTypeRmdir    PacketType = 15
	PacketTypeRealpath PacketType = 16
	PacketTypeStat     PacketType = 17
	PacketTypeRename   PacketType = 18
	PacketTypeReadlink PacketType = 19
	PacketTypeSymlink  PacketType = 20

	PacketTypeStatus        PacketType = 101
	PacketTypeHandle        PacketType = 102
	PacketTypeData          PacketType = 103
	PacketTypeName          PacketType = 104
	PacketTypeAttrs         PacketType = 105
	PacketTypeExtended      PacketType = 200
	PacketTypeExtendedReply PacketType = 201
)

func (t PacketType) String() string {
	switch t {
	case PacketTypeInit:
		return "SSH_FXP_INIT"
	case PacketTypeVersion:
		return "SSH_FXP_VERSION"
	case PacketTypeOpen:
		return "SSH_FXP_OPEN"
	case PacketTypeClose:
		return "SSH_FXP_CLOSE"
	case PacketTypeRead:
		return "SSH_FXP_READ"
	case PacketTypeWrite:
		return "SSH_FXP_WRITE"
	case PacketTypeLStat:
		return "SSH_FXP_LSTAT"
	case PacketTypeFStat:
		return "SSH_FXP_FSTAT"
	case PacketTypeSetstat:
		return "SSH_FXP_SETSTAT"
	case PacketTypeFSetstat:
		return "SSH_FXP_FSETSTAT"
	case PacketTypeOpenDir:
		return "SSH_FXP_OPENDIR"
	case PacketTypeReadDir:
		return "SSH_FXP_READDIR"
	case PacketTypeRemove:
		return "SSH_FXP_REMOVE"
	case PacketTypeMkdir:
		return "SSH_FXP_MKDIR"
	case PacketTypeRmdir:
		return "SSH_FXP_RMDIR"
	case PacketTypeRealpath:
		return "SSH_FXP_REALPATH"
	case PacketTypeStat:
		return "SSH_FXP_STAT"
	case PacketTypeRename:
		return "SSH_FXP_RENAME"
	case PacketTypeReadlink:
		return "SSH_FXP_READLINK"
	case PacketTypeSymlink:
		return "SSH_FXP_SYMLINK"
	case PacketTypeStatus:
		return "SSH_FXP_STATUS"
	case PacketTypeHandle:
		return "SSH_FXP_HANDLE"
	case PacketTypeData:
		return "SSH_FXP_DATA"
	case PacketTypeName:
		return "SSH_FXP_NAME"
	case PacketTypeAttrs:
		return "SSH_FXP_ATTRS"
	case PacketTypeExtended:
		return "SSH_FXP_EXTENDED"
	case PacketTypeExtendedReply:
		return "SSH_FXP_EXTENDED_REPLY"
	default:
		return fmt.Sprintf("PacketType(%d)", uint8(t))
	}
}

// HasRequestID reports whether frames of type t carry a request id.
// INIT and VERSION carry a 32-bit protocol version in its place; every
// other type carries a request id.
func (t PacketType) HasRequestID() bool {
	return t != PacketTypeInit && t != PacketTypeVersion
}
