// Package filesys provides filesystem helpers scoped to ZeroIPC's backing
// store: the tmpfs mounted at /dev/shm. Segment names map 1:1 onto files
// there (internal/segment normalizes "name" to "/dev/shm/name"), so
// listing, existence-checking, and validating candidate segments is a
// directory-walk problem, not a general-purpose file-copy toolkit.
package filesys

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"

	"github.com/iamNilotpal/zeroipc/internal/wire"
)

const shmDir = "/dev/shm"

// Exists reports whether a file or directory at path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// SegmentInfo describes one candidate ZeroIPC segment found under
// /dev/shm: its name, backing file size, and whether its header passed
// magic/version validation.
type SegmentInfo struct {
	Name  string
	Path  string
	Size  int64
	Valid bool
}

// ListSegments walks /dev/shm and returns every entry whose first 16 bytes
// carry ZeroIPC's magic number and current wire version, alongside any
// other regular file found there (reported with Valid=false). It never
// maps any file, just peeks at the header, so it is safe to run
// concurrently with live segments.
func ListSegments() ([]SegmentInfo, error) {
	entries, err := os.ReadDir(shmDir)
	if err != nil {
		return nil, err
	}

	out := make([]SegmentInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(shmDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		valid := false
		if info.Size() >= int64(wire.SegmentHeaderSize) {
			valid = probeHeader(path)
		}

		out = append(out, SegmentInfo{
			Name:  entry.Name(),
			Path:  path,
			Size:  info.Size(),
			Valid: valid,
		})
	}

	return out, nil
}

func probeHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, wire.SegmentHeaderSize)
	if _, err := f.Read(buf); err != nil {
		return false
	}

	magic := binary.LittleEndian.Uint32(buf[0:4])
	version := binary.LittleEndian.Uint32(buf[4:8])
	return magic == wire.Magic && version == wire.Version
}
