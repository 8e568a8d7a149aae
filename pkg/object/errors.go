package object

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies integrity failures reported by the readers and the
// commit parser. An ErrorKind is itself an error so it can be used as an
// errors.Is target:
//
//	if errors.Is(err, object.ChecksumMismatch) { ... }
type ErrorKind uint8

const (
	NotFound ErrorKind = iota + 1
	CorruptCompression
	MalformedHeader
	SizeMismatch
	IdentityMismatch
	TooSmall
	BadSignature
	UnsupportedVersion
	TruncatedHeader
	TruncatedEntry
	ChecksumMismatch
	WrongObjectKind
)

var errorKindNames = map[ErrorKind]string{
	NotFound:           "object not found",
	CorruptCompression: "corrupt zlib data",
	MalformedHeader:    "malformed object header",
	SizeMismatch:       "size mismatch",
	IdentityMismatch:   "SHA-1 mismatch",
	TooSmall:           "packfile too small",
	BadSignature:       "invalid packfile signature",
	UnsupportedVersion: "unsupported packfile version",
	TruncatedHeader:    "truncated entry header",
	TruncatedEntry:     "truncated entry data",
	ChecksumMismatch:   "CRC mismatch",
	WrongObjectKind:    "wrong object kind",
}

func (k ErrorKind) Error() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

func (k ErrorKind) String() string { return k.Error() }

// Error is a typed integrity failure carrying enough context to locate and
// reproduce it. Offset is the byte position the failure was detected at, and
// Entry/EntryOffset identify the pack entry being decoded; all three are -1
// when not applicable.
type Error struct {
	Kind        ErrorKind
	Path        string
	Entry       int
	EntryOffset int64
	Offset      int64
	Expected    string
	Actual      string
	Err         error
}

func newError(kind ErrorKind) *Error {
	return &Error{Kind: kind, Entry: -1, EntryOffset: -1, Offset: -1}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Entry >= 0 {
		fmt.Fprintf(&b, "entry %d (offset %d): ", e.Entry, e.EntryOffset)
	}
	b.WriteString(e.Kind.Error())
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an ErrorKind target against e.Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindOf extracts the ErrorKind from the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
