package object

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

// minZlibStreamSize is the shortest complete zlib stream: a 2-byte header,
// one empty final block and the Adler-32 trailer.
const minZlibStreamSize = 8

// minPackEntrySize is the smallest possible entry: one header byte, an empty
// zlib stream and the trailing CRC-32.
const minPackEntrySize = 1 + minZlibStreamSize + packChecksumSize

const maxSizeHint = 1 << 20

// PackFile is the decoded content of a pack container.
type PackFile struct {
	Header  PackHeader
	Objects []Object
}

// packEntry is one entry as laid out on disk.
type packEntry struct {
	objType    PackObjectType
	size       uint64
	compressed []byte
	next       int
}

// ReadPackFile reads and validates the pack container at path.
func ReadPackFile(path string) (*PackFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e := newError(NotFound)
			e.Path = path
			return nil, e
		}
		return nil, fmt.Errorf("read pack %s: %w", path, err)
	}

	pf, err := ReadPack(data)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = path
		}
		return pf, err
	}
	return pf, nil
}

// ReadPack parses a full pack container and validates every entry in file
// order. Reading stops at the first invalid entry: the returned PackFile then
// holds only the entries decoded before it, alongside the error.
func ReadPack(data []byte) (*PackFile, error) {
	header, err := UnmarshalPackHeader(data)
	if err != nil {
		return nil, err
	}

	capHint := min(int(header.NumObjects), (len(data)-packHeaderSize)/minPackEntrySize)
	pf := &PackFile{
		Header:  *header,
		Objects: make([]Object, 0, max(capHint, 0)),
	}

	offset := packHeaderSize
	for i := uint32(0); i < header.NumObjects; i++ {
		entry, err := readPackEntry(data, offset, int(header.NumObjects-i-1))
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Entry = int(i)
				e.EntryOffset = int64(offset)
			}
			return pf, err
		}

		raw, err := inflateSized(entry.compressed, entry.size)
		if err != nil {
			e := newError(CorruptCompression)
			e.Entry = int(i)
			e.EntryOffset = int64(offset)
			e.Offset = int64(offset)
			e.Err = err
			return pf, e
		}

		objType := entry.objType.ObjectType()
		pf.Objects = append(pf.Objects, Object{
			Type:    objType,
			Payload: raw,
			ID:      HashObject(objType, raw),
		})
		offset = entry.next
	}

	return pf, nil
}

// readPackEntry decodes the entry starting at offset and verifies its CRC-32.
// The compressed span carries no length prefix, so it is located by inflating
// until the zlib stream reports completion; the next 4 bytes are the stored
// checksum. The inflated bytes are discarded here and only decoded for use
// once the checksum has matched. following is the number of entries the
// header promises after this one.
func readPackEntry(data []byte, offset, following int) (packEntry, error) {
	if offset >= len(data) {
		return packEntry{}, entryError(TruncatedHeader, offset, fmt.Errorf("unexpected end of packfile"))
	}

	objType, size, n, ok := decodePackEntryHeader(data[offset:])
	if !ok {
		return packEntry{}, entryError(TruncatedHeader, offset, nil)
	}
	dataStart := offset + n

	spanLen, err := zlibStreamLength(data[dataStart:])
	if err != nil {
		return packEntry{}, classifyBrokenSpan(data, dataStart, following, err)
	}

	crcOffset := dataStart + spanLen
	if crcOffset+packChecksumSize > len(data) {
		e := entryError(TruncatedEntry, offset, fmt.Errorf("missing checksum"))
		e.Expected = strconv.Itoa(crcOffset+packChecksumSize) + " bytes"
		e.Actual = strconv.Itoa(len(data)) + " bytes"
		return packEntry{}, e
	}

	compressed := data[dataStart:crcOffset]
	stored := binary.BigEndian.Uint32(data[crcOffset:])
	if computed := crc32.ChecksumIEEE(compressed); computed != stored {
		e := entryError(ChecksumMismatch, crcOffset, nil)
		e.Expected = fmt.Sprintf("%08x", stored)
		e.Actual = fmt.Sprintf("%08x", computed)
		return packEntry{}, e
	}

	return packEntry{
		objType:    objType,
		size:       size,
		compressed: compressed,
		next:       crcOffset + packChecksumSize,
	}, nil
}

// zlibStreamLength returns how many bytes of data the zlib stream at its
// start occupies, Adler-32 trailer included.
func zlibStreamLength(data []byte) (int, error) {
	br := bytes.NewReader(data)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(io.Discard, zr); err != nil {
		_ = zr.Close()
		return 0, err
	}
	if err := zr.Close(); err != nil {
		return 0, err
	}
	return len(data) - br.Len(), nil
}

// classifyBrokenSpan decides why the stream at dataStart could not be
// inflated. If some prefix of the remaining bytes is followed by its own
// CRC-32, the span was stored intact and the stream itself is malformed.
//
// Otherwise the span was altered after its checksum was taken, unless the
// file provably ends inside this entry: the stream ran out of input and the
// bytes left cannot hold even the smallest completion of this entry plus the
// entries that follow. A damaged stream can also run on to the end of the
// file, so running out of input alone is not evidence of truncation.
func classifyBrokenSpan(data []byte, dataStart, following int, cause error) *Error {
	if _, found := locateChecksum(data, dataStart); found {
		return entryError(CorruptCompression, dataStart, cause)
	}
	ranOut := errors.Is(cause, io.ErrUnexpectedEOF) || errors.Is(cause, io.EOF)
	if ranOut && len(data)-dataStart < minEntryTail(following) {
		e := entryError(TruncatedEntry, dataStart, cause)
		e.Expected = "at least " + strconv.Itoa(dataStart+minEntryTail(following)) + " bytes"
		e.Actual = strconv.Itoa(len(data)) + " bytes"
		return e
	}
	return entryError(ChecksumMismatch, dataStart, fmt.Errorf("no stored checksum matches the compressed span: %w", cause))
}

// minEntryTail is the fewest bytes a complete file holds from the start of an
// entry's span: the shortest zlib stream, its CRC-32 and the smallest
// encoding of every following entry.
func minEntryTail(following int) int {
	return minZlibStreamSize + packChecksumSize + following*minPackEntrySize
}

// locateChecksum scans forward from start keeping a running CRC-32 and
// returns the first end offset whose following 4 bytes equal the CRC of
// data[start:end].
func locateChecksum(data []byte, start int) (int, bool) {
	var crc uint32
	for end := start + 1; end+packChecksumSize <= len(data); end++ {
		crc = crc32.Update(crc, crc32.IEEETable, data[end-1:end])
		if crc == binary.BigEndian.Uint32(data[end:]) {
			return end, true
		}
	}
	return 0, false
}

// inflateSized inflates a span. The declared size only presizes the buffer,
// capped at maxSizeHint.
func inflateSized(compressed []byte, declared uint64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(int(min(declared, maxSizeHint)))
	if _, err := buf.ReadFrom(zr); err != nil {
		_ = zr.Close()
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func entryError(kind ErrorKind, offset int, cause error) *Error {
	e := newError(kind)
	e.Offset = int64(offset)
	e.Err = cause
	return e
}
