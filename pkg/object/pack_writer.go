package object

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

type packCountedWriter struct {
	w io.Writer
	n uint64
}

func (cw *packCountedWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n)
	return n, err
}

func (cw *packCountedWriter) Count() uint64 {
	return cw.n
}

// PackWriter writes pack containers: the 12-byte header followed by entries
// of the form <varint header><zlib span><big-endian CRC-32 of the span>.
type PackWriter struct {
	counter  *packCountedWriter
	expected uint32
	written  uint32
	finished bool
}

// NewPackWriter initializes a new writer and writes the fixed pack header.
func NewPackWriter(out io.Writer, numObjects uint32) (*PackWriter, error) {
	pw := &PackWriter{
		counter:  &packCountedWriter{w: out},
		expected: numObjects,
	}

	header := PackHeader{
		Version:    supportedPackVersion,
		NumObjects: numObjects,
	}
	if _, err := pw.counter.Write(header.Marshal()); err != nil {
		return nil, fmt.Errorf("write pack header: %w", err)
	}
	return pw, nil
}

// CurrentOffset returns the current byte offset in the pack stream.
func (p *PackWriter) CurrentOffset() uint64 {
	return p.counter.Count()
}

// WriteObject appends obj using the pack type code for its ObjectType.
func (p *PackWriter) WriteObject(obj Object) error {
	code, ok := PackObjectTypeOf(obj.Type)
	if !ok {
		return fmt.Errorf("write pack entry: object type %s has no pack type code", obj.Type)
	}
	return p.WriteEntry(code, obj.Payload)
}

// WriteEntry appends one entry to the pack stream. The header records the
// uncompressed size of data.
func (p *PackWriter) WriteEntry(objType PackObjectType, data []byte) error {
	if p.finished {
		return fmt.Errorf("pack writer already finished")
	}
	if p.written >= p.expected {
		return fmt.Errorf("pack object count exceeded: expected %d", p.expected)
	}

	compressed, err := deflate(data)
	if err != nil {
		return fmt.Errorf("compress pack entry: %w", err)
	}

	header := encodePackEntryHeader(objType, uint64(len(data)))
	if _, err := p.counter.Write(header); err != nil {
		return fmt.Errorf("write pack entry header: %w", err)
	}
	if _, err := p.counter.Write(compressed); err != nil {
		return fmt.Errorf("write compressed pack entry: %w", err)
	}
	var crc [packChecksumSize]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(compressed))
	if _, err := p.counter.Write(crc[:]); err != nil {
		return fmt.Errorf("write pack entry checksum: %w", err)
	}

	p.written++
	return nil
}

// Finish validates the object count and returns the total bytes written.
func (p *PackWriter) Finish() (uint64, error) {
	if p.finished {
		return 0, fmt.Errorf("pack writer already finished")
	}
	if p.written != p.expected {
		return 0, fmt.Errorf("pack object count mismatch: wrote %d, expected %d", p.written, p.expected)
	}
	p.finished = true
	return p.counter.Count(), nil
}
