package fatimg

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aligator/fatimg/checkpoint"
	"github.com/spf13/afero"
)

// Extract writes the content of file to sink and returns the number of bytes written.
// Only the clusters needed for the file size are read, the tail of the last
// cluster is cut off.
func (v *Volume) Extract(file *ResolvedFile, sink io.Writer) (int64, error) {
	if err := checkExtractable(file); err != nil {
		return 0, err
	}

	size := int64(file.FileSize)
	clusterSize := int64(v.geometry.ClusterByteSize())

	var written int64
	if size == 0 {
		return 0, nil
	}

	chain := v.ReadChain(file.FirstCluster())
	for written < size && chain.Next() {
		data := chain.Bytes()
		if remaining := size - written; remaining < clusterSize {
			data = data[:remaining]
		}

		n, err := sink.Write(data)
		written += int64(n)
		if err == nil && n != len(data) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return written, checkpoint.Wrap(err, fmt.Errorf("%w: %s", ErrSinkWrite, file.Name()))
		}
	}

	if err := chain.Err(); err != nil {
		return written, checkpoint.Wrap(err, fmt.Errorf("could not extract %s", file.Name()))
	}

	if written < size {
		return written, checkpoint.From(fmt.Errorf("%w: chain of %s ends after %d of %d bytes", ErrChainRead, file.Name(), written, size))
	}

	return written, nil
}

// ExtractTo extracts file into outputPath in fsys.
// The content goes to a temporary file in the directory of outputPath which
// replaces outputPath only after the whole file was written.
// On failure the temporary file is removed and an existing outputPath stays untouched.
func (v *Volume) ExtractTo(file *ResolvedFile, fsys afero.Fs, outputPath string) (int64, error) {
	if err := checkExtractable(file); err != nil {
		return 0, err
	}

	out, err := afero.TempFile(fsys, filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return 0, checkpoint.Wrap(err, fmt.Errorf("%w: could not create %s", ErrSinkWrite, outputPath))
	}
	tmpPath := out.Name()

	written, err := v.Extract(file, out)

	closeErr := out.Close()
	if err == nil && closeErr != nil {
		err = checkpoint.Wrap(closeErr, fmt.Errorf("%w: could not close %s", ErrSinkWrite, tmpPath))
	}

	if err == nil {
		err = checkpoint.Wrap(fsys.Chmod(tmpPath, 0644), fmt.Errorf("%w: could not chmod %s", ErrSinkWrite, tmpPath))
	}

	if err == nil {
		err = checkpoint.Wrap(fsys.Rename(tmpPath, outputPath), fmt.Errorf("%w: could not move the output to %s", ErrSinkWrite, outputPath))
	}

	if err != nil {
		if removeErr := fsys.Remove(tmpPath); removeErr != nil {
			v.log.WithError(removeErr).WithField("output", tmpPath).Warn("could not remove partial output")
		}
		return written, err
	}

	v.log.WithField("output", outputPath).WithField("bytes", written).Debug("extracted file")
	return written, nil
}

func checkExtractable(file *ResolvedFile) error {
	if file == nil {
		return checkpoint.From(fmt.Errorf("%w: nothing to extract", ErrNotFound))
	}

	if file.IsDir() {
		return checkpoint.From(fmt.Errorf("%w: %s", ErrIsADirectory, file.Name()))
	}

	return nil
}

// ChangeDirectory returns the start cluster of the directory file.
// The ".." entry of a directory directly below the root stores 0, which is returned as is.
// Use DirectoryCluster to turn it into a cluster which can be read.
func (v *Volume) ChangeDirectory(file *ResolvedFile) (ClusterAddress, error) {
	if file == nil {
		return 0, checkpoint.From(fmt.Errorf("%w: no directory given", ErrNotFound))
	}

	if !file.IsDir() {
		return 0, checkpoint.From(fmt.Errorf("%w: %s", ErrNotADirectory, file.Name()))
	}

	return file.FirstCluster(), nil
}

// DirectoryCluster maps the cluster 0 used for the root directory in ".." entries to the real root cluster.
func (v *Volume) DirectoryCluster(c ClusterAddress) ClusterAddress {
	if c == 0 {
		return v.RootCluster()
	}
	return c
}
