package object

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is a loose object store with a 2-character fan-out directory layout:
// objects/ab/cdef0123...
type Store struct {
	root string
}

// NewStore creates a Store rooted at a git directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the git directory the store is rooted at.
func (s *Store) Root() string {
	return s.root
}

// ObjectsDir returns the path of the objects/ directory.
func (s *Store) ObjectsDir() string {
	return filepath.Join(s.root, "objects")
}

// ObjectPath returns the filesystem path for a given hash.
func (s *Store) ObjectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains a loose object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.ObjectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The on-disk format
// is the zlib-compressed envelope "type len\0content". Writes are atomic:
// data is written to a temp file and then renamed into place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	raw := append(envelopeHeader(objType.String(), len(data)), data...)
	h := HashBytes(raw)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	compressed, err := deflate(raw)
	if err != nil {
		return "", fmt.Errorf("object write compress: %w", err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.ObjectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves and validates the loose object stored under h.
func (s *Store) Read(h Hash) (*Object, error) {
	if len(h) < 3 {
		return nil, fmt.Errorf("object read: invalid hash %q", h)
	}
	return ReadLoose(s.ObjectPath(h))
}
