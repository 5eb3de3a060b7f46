package fatimg

import (
	"io"

	"github.com/aligator/fatimg/checkpoint"
)

// sectorReader provides positioned reads against the raw image.
// It mainly exists to be able to inject failing reads in tests.
// Generated mock using mockgen:
//
//	mockgen -source=image.go -destination=image_mock.go -package fatimg
type sectorReader interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

// readFull fills p from the given byte offset of the image.
// A short read is always an error, even if the reader reports none.
func readFull(r sectorReader, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		// io.ReaderAt may report io.EOF together with a complete read at the end of the image.
		return nil
	}

	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return checkpoint.From(err)
}
