package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
)

// ReadLoose reads, inflates and validates the loose object at path. The last
// two path segments must spell the object's identifier: a 2-character fan-out
// directory followed by the remaining 38 characters.
func ReadLoose(path string) (*Object, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e := newError(NotFound)
			e.Path = path
			return nil, e
		}
		return nil, fmt.Errorf("read loose object %s: %w", path, err)
	}

	obj, err := DecodeLoose(compressed, filepath.Base(filepath.Dir(path))+filepath.Base(path))
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = path
		}
		return nil, err
	}
	return obj, nil
}

// DecodeLoose validates the compressed bytes of a loose object against the
// identifier it is stored under.
func DecodeLoose(compressed []byte, name string) (*Object, error) {
	raw, err := inflate(compressed)
	if err != nil {
		e := newError(CorruptCompression)
		e.Err = err
		return nil, e
	}

	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		e := newError(MalformedHeader)
		e.Err = fmt.Errorf("missing NUL separator")
		return nil, e
	}
	header := raw[:nulIdx]
	body := raw[nulIdx+1:]
	if len(header) == 0 || len(body) == 0 {
		e := newError(MalformedHeader)
		e.Err = fmt.Errorf("missing header or body")
		return nil, e
	}

	token, declared, err := parseEnvelopeHeader(header)
	if err != nil {
		e := newError(MalformedHeader)
		e.Err = err
		return nil, e
	}

	if declared != uint64(len(body)) {
		e := newError(SizeMismatch)
		e.Expected = strconv.FormatUint(declared, 10)
		e.Actual = strconv.Itoa(len(body))
		return nil, e
	}

	computed := HashBytes(raw)
	if string(computed) != name {
		e := newError(IdentityMismatch)
		e.Expected = name
		e.Actual = string(computed)
		return nil, e
	}

	objType, _ := ParseObjectType(token)
	return &Object{Type: objType, Payload: body, ID: computed}, nil
}

// parseEnvelopeHeader splits "<type> <decimal-length>".
func parseEnvelopeHeader(header []byte) (string, uint64, error) {
	if !utf8.Valid(header) {
		return "", 0, fmt.Errorf("header is not valid UTF-8")
	}
	token, sizeStr, ok := strings.Cut(string(header), " ")
	if !ok || token == "" || sizeStr == "" {
		return "", 0, fmt.Errorf("invalid header %q", header)
	}
	for i := 0; i < len(sizeStr); i++ {
		if sizeStr[i] < '0' || sizeStr[i] > '9' {
			return "", 0, fmt.Errorf("invalid length %q", sizeStr)
		}
	}
	size, err := strconv.ParseUint(sizeStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid length %q: %w", sizeStr, err)
	}
	return token, size, nil
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	return raw, nil
}

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
