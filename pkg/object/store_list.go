package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LooseObjectPaths lists every regular file inside a 2-character fan-out
// directory under objects/. Names are not filtered for hex so that misnamed
// files surface as identity failures instead of being skipped.
func (s *Store) LooseObjectPaths() ([]string, error) {
	objectsDir := s.ObjectsDir()
	fanoutDirs, err := os.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read objects dir: %w", err)
	}

	paths := make([]string, 0)
	for _, fanoutDir := range fanoutDirs {
		if !fanoutDir.IsDir() || len(fanoutDir.Name()) != 2 {
			continue
		}

		objectDir := filepath.Join(objectsDir, fanoutDir.Name())
		objectEntries, err := os.ReadDir(objectDir)
		if err != nil {
			return nil, fmt.Errorf("read objects fanout %s: %w", fanoutDir.Name(), err)
		}
		for _, objectEntry := range objectEntries {
			if !objectEntry.Type().IsRegular() {
				continue
			}
			if strings.HasPrefix(objectEntry.Name(), ".tmp-") {
				continue
			}
			paths = append(paths, filepath.Join(objectDir, objectEntry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// PackPaths lists the *.pack files under objects/pack.
func (s *Store) PackPaths() ([]string, error) {
	packDir := filepath.Join(s.ObjectsDir(), "pack")
	entries, err := os.ReadDir(packDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pack dir: %w", err)
	}

	packPaths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".pack") {
			continue
		}
		packPaths = append(packPaths, filepath.Join(packDir, entry.Name()))
	}
	sort.Strings(packPaths)
	return packPaths, nil
}
