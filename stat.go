package fatimg

import (
	"os"
	"time"
)

// FileInfo exposes the entry as os.FileInfo. Sys returns the DirEntry.
func (e DirEntry) FileInfo() os.FileInfo {
	return entryFileInfo{e}
}

type entryFileInfo struct {
	entry DirEntry
}

func (e entryFileInfo) Name() string {
	return e.entry.Name()
}

func (e entryFileInfo) Size() int64 {
	if e.entry.IsDir() {
		return 0
	}
	return int64(e.entry.FileSize)
}

// Mode never contains write permissions as the image is read-only.
func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0555
	}
	return 0444
}

// ModTime returns time.Time{} if the stored date is invalid.
// The time alone cannot be checked for that because 00:00:00 is perfectly valid.
func (e entryFileInfo) ModTime() time.Time {
	return e.entry.ModTime()
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.IsDir()
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}

// rootFileInfo describes the root directory, which has no directory entry.
type rootFileInfo struct{}

func (r rootFileInfo) Name() string       { return "." }
func (r rootFileInfo) Size() int64        { return 0 }
func (r rootFileInfo) Mode() os.FileMode  { return os.ModeDir | 0555 }
func (r rootFileInfo) ModTime() time.Time { return time.Time{} }
func (r rootFileInfo) IsDir() bool        { return true }
func (r rootFileInfo) Sys() interface{}   { return nil }
