package object

import "fmt"

// Hash is a 40-character hex-encoded SHA-1 object identifier.
type Hash string

// HashHexSize is the length of a hex-encoded Hash.
const HashHexSize = 40

// Short returns the abbreviated 7-character form of h.
func (h Hash) Short() string {
	if len(h) < 7 {
		return string(h)
	}
	return string(h[:7])
}

// ObjectType identifies the kind of object stored. The set is closed:
// anything outside blob, tree, commit and tag is TypeUnknown.
type ObjectType uint8

const (
	TypeUnknown ObjectType = iota
	TypeBlob
	TypeTree
	TypeCommit
	TypeTag
)

var objectTypeNames = [...]string{
	TypeUnknown: "unknown",
	TypeBlob:    "blob",
	TypeTree:    "tree",
	TypeCommit:  "commit",
	TypeTag:     "tag",
}

func (t ObjectType) String() string {
	if int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return fmt.Sprintf("ObjectType(%d)", uint8(t))
}

// ParseObjectType maps a header type token to an ObjectType. Unrecognized
// tokens yield TypeUnknown and ok=false.
func ParseObjectType(token string) (ObjectType, bool) {
	switch token {
	case "blob":
		return TypeBlob, true
	case "tree":
		return TypeTree, true
	case "commit":
		return TypeCommit, true
	case "tag":
		return TypeTag, true
	default:
		return TypeUnknown, false
	}
}

// Object is a validated repository object. ID is always recomputed from the
// "<type> <len>\0" header and Payload, never copied from outside.
type Object struct {
	Type    ObjectType
	Payload []byte
	ID      Hash
}
