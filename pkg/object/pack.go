package object

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

const (
	packHeaderSize       = 12
	packChecksumSize     = 4
	supportedPackVersion = 2
)

var packMagic = [4]byte{'P', 'A', 'C', 'K'}

// PackObjectType is the type code stored in bits 6-4 of an entry header.
type PackObjectType uint8

const (
	PackCommit   PackObjectType = 1
	PackTree     PackObjectType = 2
	PackBlob     PackObjectType = 3
	PackTag      PackObjectType = 4
	PackOfsDelta PackObjectType = 6
	PackRefDelta PackObjectType = 7
)

// ObjectType maps a pack type code to an ObjectType. Delta encodings and
// reserved codes are not resolved and map to TypeUnknown.
func (t PackObjectType) ObjectType() ObjectType {
	switch t {
	case PackCommit:
		return TypeCommit
	case PackTree:
		return TypeTree
	case PackBlob:
		return TypeBlob
	case PackTag:
		return TypeTag
	default:
		return TypeUnknown
	}
}

// PackObjectTypeOf is the inverse of PackObjectType.ObjectType for the four
// storable types.
func PackObjectTypeOf(t ObjectType) (PackObjectType, bool) {
	switch t {
	case TypeCommit:
		return PackCommit, true
	case TypeTree:
		return PackTree, true
	case TypeBlob:
		return PackBlob, true
	case TypeTag:
		return PackTag, true
	default:
		return 0, false
	}
}

// PackHeader is the fixed-size pack header.
//
// Bytes:
//   - 0..3:  "PACK"
//   - 4..7:  version (big-endian)
//   - 8..11: number of objects (big-endian)
type PackHeader struct {
	Version    uint32
	NumObjects uint32
}

// Marshal serializes the header to the canonical 12-byte pack header.
func (h PackHeader) Marshal() []byte {
	buf := make([]byte, packHeaderSize)
	copy(buf[:4], packMagic[:])
	binary.BigEndian.PutUint32(buf[4:8], h.Version)
	binary.BigEndian.PutUint32(buf[8:12], h.NumObjects)
	return buf
}

// UnmarshalPackHeader parses a pack header. A signature mismatch is reported
// as BadSignature even when the input is shorter than a full header; input
// that is a prefix of a valid header is TooSmall.
func UnmarshalPackHeader(data []byte) (*PackHeader, error) {
	sigLen := min(len(data), len(packMagic))
	if !bytes.Equal(data[:sigLen], packMagic[:sigLen]) {
		e := newError(BadSignature)
		e.Expected = strconv.Quote(string(packMagic[:]))
		e.Actual = strconv.Quote(string(data[:sigLen]))
		return nil, e
	}
	if len(data) < packHeaderSize {
		e := newError(TooSmall)
		e.Expected = strconv.Itoa(packHeaderSize) + " bytes"
		e.Actual = strconv.Itoa(len(data)) + " bytes"
		return nil, e
	}

	version := binary.BigEndian.Uint32(data[4:8])
	if version != supportedPackVersion {
		e := newError(UnsupportedVersion)
		e.Expected = strconv.Itoa(supportedPackVersion)
		e.Actual = strconv.FormatUint(uint64(version), 10)
		return nil, e
	}

	return &PackHeader{
		Version:    version,
		NumObjects: binary.BigEndian.Uint32(data[8:12]),
	}, nil
}

// encodePackEntryHeader encodes the variable-length entry header: the first
// byte carries the type code and 4 size bits, each continuation byte 7 more.
func encodePackEntryHeader(objType PackObjectType, size uint64) []byte {
	b := byte((objType & 0x7) << 4)
	b |= byte(size & 0x0f)
	size >>= 4

	out := make([]byte, 0, 10)
	if size > 0 {
		b |= 0x80
	}
	out = append(out, b)

	for size > 0 {
		next := byte(size & 0x7f)
		size >>= 7
		if size > 0 {
			next |= 0x80
		}
		out = append(out, next)
	}

	return out
}

// decodePackEntryHeader decodes an entry header, returning the type code, the
// declared size and the bytes consumed. ok is false when data ends before a
// byte with the continuation bit clear.
func decodePackEntryHeader(data []byte) (objType PackObjectType, size uint64, consumed int, ok bool) {
	if len(data) == 0 {
		return 0, 0, 0, false
	}

	b := data[0]
	objType = PackObjectType((b >> 4) & 0x7)
	size = uint64(b & 0x0f)
	shift := uint(4)
	consumed = 1

	for b&0x80 != 0 {
		if consumed >= len(data) {
			return objType, size, consumed, false
		}
		b = data[consumed]
		if shift < 64 {
			size |= uint64(b&0x7f) << shift
		}
		shift += 7
		consumed++
	}

	return objType, size, consumed, true
}
