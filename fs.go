package fatimg

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aligator/fatimg/checkpoint"
	"github.com/spf13/afero"
)

// Fs is a read-only afero.Fs view of a Volume.
// Every call walks the directories and cluster chains again, nothing is cached.
type Fs struct {
	v *Volume
}

// NewFs wraps the volume. The volume stays owned by the caller.
func NewFs(v *Volume) *Fs {
	return &Fs{v: v}
}

// Volume returns the wrapped volume.
func (fs *Fs) Volume() *Volume {
	return fs.v
}

// readFileAt reads up to readSize bytes starting at offset of the file whose chain starts at cluster.
// Returns io.EOF together with the data if the end of the file is reached.
func (fs *Fs) readFileAt(cluster ClusterAddress, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	if offset >= fileSize {
		return nil, io.EOF
	}

	var eof error
	end := offset + readSize
	if end >= fileSize {
		end = fileSize
		eof = io.EOF
	}

	clusterSize := int64(fs.v.geometry.ClusterByteSize())
	result := make([]byte, 0, end-offset)

	var position int64
	chain := fs.v.ReadChain(cluster)
	for position < end && chain.Next() {
		clusterEnd := position + clusterSize

		if clusterEnd > offset {
			from := int64(0)
			if offset > position {
				from = offset - position
			}

			to := clusterSize
			if end < clusterEnd {
				to = end - position
			}

			result = append(result, chain.Bytes()[from:to]...)
		}

		position = clusterEnd
	}

	if err := chain.Err(); err != nil {
		return result, err
	}

	if int64(len(result)) < end-offset {
		return result, checkpoint.From(fmt.Errorf("%w: chain of cluster %d ends after %d bytes", ErrChainRead, cluster, position))
	}

	return result, eof
}

// readDir returns the visible entries of the directory at cluster without "." and "..".
func (fs *Fs) readDir(cluster ClusterAddress) ([]DirEntry, error) {
	listing, err := fs.v.ListEntries(cluster)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		if name := e.ShortName(); name == "." || name == ".." {
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (fs *Fs) open(name string) (*File, error) {
	entry, err := fs.v.Lookup(name)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}

	// The root directory has no entry.
	if entry == nil {
		return &File{
			fs:           fs,
			path:         "",
			isDirectory:  true,
			firstCluster: fs.v.RootCluster(),
			stat:         rootFileInfo{},
		}, nil
	}

	f := &File{
		fs:           fs,
		path:         name,
		isDirectory:  entry.IsDir(),
		isReadOnly:   entry.Attribute&AttrReadOnly == AttrReadOnly,
		isHidden:     entry.Attribute&AttrHidden == AttrHidden,
		isSystem:     entry.Attribute&AttrSystem == AttrSystem,
		firstCluster: entry.FirstCluster(),
		stat:         entry.FileInfo(),
	}

	if f.isDirectory {
		f.firstCluster = fs.v.DirectoryCluster(f.firstCluster)
	}

	return f, nil
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "create", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return &os.PathError{Op: "mkdir", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return &os.PathError{Op: "mkdir", Path: path, Err: ErrReadOnly}
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile only accepts read-only flags, anything which would modify the image returns ErrReadOnly.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrReadOnly}
	}

	f, err := fs.open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (fs *Fs) Remove(name string) error {
	return &os.PathError{Op: "remove", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) RemoveAll(path string) error {
	return &os.PathError{Op: "remove", Path: path, Err: ErrReadOnly}
}

func (fs *Fs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrReadOnly}
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	entry, err := fs.v.Lookup(name)
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}

	if entry == nil {
		return rootFileInfo{}, nil
	}
	return entry.FileInfo(), nil
}

func (fs *Fs) Name() string {
	return "fatimg"
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return &os.PathError{Op: "chmod", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return &os.PathError{Op: "chown", Path: name, Err: ErrReadOnly}
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return &os.PathError{Op: "chtimes", Path: name, Err: ErrReadOnly}
}
