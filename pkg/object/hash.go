package object

import (
	"encoding/hex"
	"strconv"

	"github.com/pjbgf/sha1cd"
)

// HashBytes computes the SHA-1 of data and returns it as a lowercase
// hex-encoded Hash.
func HashBytes(data []byte) Hash {
	h := sha1cd.New()
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashObject computes the SHA-1 of the envelope "type len\0content",
// mirroring Git's object hashing.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1cd.New()
	h.Write(envelopeHeader(objType.String(), len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

func envelopeHeader(token string, size int) []byte {
	header := make([]byte, 0, len(token)+22)
	header = append(header, token...)
	header = append(header, ' ')
	header = strconv.AppendInt(header, int64(size), 10)
	return append(header, 0)
}

// IsValidHash reports whether s is a 40-character lowercase hex identifier.
func IsValidHash(s string) bool {
	if len(s) != HashHexSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
