// Package checkpoint decorates errors with the location they passed through,
// so a failed cluster read can be traced from the sector up to the command
// that triggered it.
// Every error added to a checkpoint can still be checked by errors.Is and
// retrieved by errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err by a new checkpoint carrying the caller location.
// It returns nil if err == nil.
func From(err error) error {
	if passThrough(err) {
		return err
	}

	return newCheckpoint(err, nil)
}

// Wrap adds a checkpoint on top of prev and describes it with err.
// Returns nil if prev == nil. err may be nil in which case only the
// location is added.
// This makes sentinel errors usable as descriptions:
//
//	var ErrChainRead = errors.New("could not read cluster chain")
//
//	func readCluster() error {
//		_, err := image.ReadAt(buf, offset)
//		return checkpoint.Wrap(err, ErrChainRead)
//	}
//
// errors.Is(err, ErrChainRead) and errors.Is(err, <the ReadAt error>) both
// hold for the result.
func Wrap(prev, err error) error {
	if prev == nil {
		return nil
	}
	if passThrough(prev) {
		return prev
	}

	return newCheckpoint(prev, err)
}

// passThrough reports errors which must reach the caller unwrapped.
// io.EOF is compared with == by io.Reader users.
// io.ErrUnexpectedEOF is a failure and gets wrapped like any other error.
// https://github.com/golang/go/issues/39155
func passThrough(err error) bool {
	return err == nil || err == io.EOF
}

func newCheckpoint(prev, err error) *checkpoint {
	// Skip newCheckpoint and From/Wrap.
	_, file, line, ok := runtime.Caller(2)
	c := &checkpoint{
		err:  err,
		prev: prev,
	}
	if ok {
		c.location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return c
}

type checkpoint struct {
	err      error
	prev     error
	location string
}

func (c *checkpoint) Error() string {
	var b strings.Builder

	location := c.location
	if location == "" {
		location = "unknown"
	}
	b.WriteString(location)

	if c.err != nil {
		b.WriteString(": ")
		b.WriteString(c.err.Error())
	}

	// Nested checkpoints are rendered one per line, like a short stack trace.
	if _, ok := c.prev.(*checkpoint); ok {
		b.WriteString("\n")
	} else {
		b.WriteString(": ")
	}
	b.WriteString(c.prev.Error())

	return b.String()
}

func (c *checkpoint) Unwrap() error {
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
