package fatimg

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// These errors may occur while opening or reading a volume.
// They are decorated by checkpoint, so always compare with errors.Is.
var (
	// ErrMalformedVolume is returned on open if the geometry cannot be used.
	// The volume is unusable after that.
	ErrMalformedVolume = errors.New("malformed FAT32 volume")

	// ErrChainRead is returned if a cluster or FAT entry could not be read or
	// the chain links to an impossible cluster. Only the current operation fails.
	ErrChainRead = errors.New("could not read cluster chain")

	// ErrChainTooLong is returned if a chain has more links than the volume has clusters.
	ErrChainTooLong = errors.New("cluster chain is longer than the volume")

	// ErrNotFound also matches fs.ErrNotExist so that afero and io/fs callers can use os.IsNotExist style checks.
	ErrNotFound      = fmt.Errorf("file or directory not found (%w)", fs.ErrNotExist)
	ErrNotADirectory = fmt.Errorf("not a directory (%w)", syscall.ENOTDIR)
	ErrIsADirectory  = fmt.Errorf("is a directory (%w)", syscall.EISDIR)
	ErrSinkWrite     = errors.New("could not write to output")

	// ErrCorruptLongName is used for incomplete or mismatching long name runs.
	// Such runs are dropped while scanning, so it only surfaces from ReconstructLongName.
	ErrCorruptLongName = errors.New("corrupt long file name")

	ErrReadOnly = syscall.EROFS
)
