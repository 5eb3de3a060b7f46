package fatimg

import (
	"fmt"

	"github.com/aligator/fatimg/checkpoint"
)

// Chain iterates over the clusters of a FAT chain in a single pass.
// It is used like bufio.Scanner:
//
//	chain := v.ReadChain(start)
//	for chain.Next() {
//		process(chain.Cluster(), chain.Bytes())
//	}
//	if err := chain.Err(); err != nil {
//		...
//	}
//
// Each step reads the cluster payload and its FAT entry, nothing is read ahead.
type Chain struct {
	v *Volume

	next  ClusterAddress
	done  bool
	count uint32
	limit uint32

	cluster ClusterAddress
	buffer  []byte
	fatBuf  [4]byte

	// linkErr is a malformed link found after the current cluster was read.
	// It is reported only if the caller asks for the next cluster.
	linkErr error
	err     error
}

// ReadChain starts a chain at the given cluster.
// If start is already an end of chain marker the chain is empty, which is not an error.
func (v *Volume) ReadChain(start ClusterAddress) *Chain {
	return &Chain{
		v:     v,
		next:  start,
		done:  fatEntry(start).IsEOC(),
		limit: v.chainLimit(),
	}
}

// chainLimit is the maximum number of clusters a chain may have before it must be cyclic.
func (v *Volume) chainLimit() uint32 {
	if count := v.geometry.ClusterCount(); count > 0 {
		return count
	}

	// Fall back to what fits into the image if the boot sector has no usable sector count.
	return uint32(v.size / int64(v.geometry.ClusterByteSize()))
}

// Next reads the next cluster of the chain.
// It returns false at the end of the chain or on an error, which is then available from Err.
func (c *Chain) Next() bool {
	if c.err != nil || c.done {
		return false
	}

	if c.linkErr != nil {
		c.err = c.linkErr
		return false
	}

	n := c.next
	if c.count >= c.limit {
		c.err = checkpoint.From(fmt.Errorf("%w: more than %d clusters, reached cluster %d", ErrChainTooLong, c.limit, n))
		return false
	}

	if err := c.v.checkCluster(n); err != nil {
		c.err = err
		return false
	}

	g := c.v.geometry
	if c.buffer == nil {
		c.buffer = make([]byte, g.ClusterByteSize())
	}

	if err := readFull(c.v.image, c.buffer, g.ByteOffsetOfCluster(n)); err != nil {
		c.err = checkpoint.Wrap(err, fmt.Errorf("%w: cluster %d", ErrChainRead, n))
		return false
	}

	if err := readFull(c.v.image, c.fatBuf[:], g.FatByteOffsetOfCluster(n)); err != nil {
		c.err = checkpoint.Wrap(err, fmt.Errorf("%w: FAT entry of cluster %d", ErrChainRead, n))
		return false
	}

	entry := readFatEntry(c.fatBuf[:])
	switch {
	case entry.IsEOC():
		c.done = true
	case entry.IsNextCluster():
		c.next = entry.Next()
	default:
		c.linkErr = checkpoint.From(fmt.Errorf("%w: cluster %d links to 0x%08X", ErrChainRead, n, entry.Value()))
	}

	c.cluster = n
	c.count++
	return true
}

// Cluster returns the number of the cluster read by the last call to Next.
func (c *Chain) Cluster() ClusterAddress {
	return c.cluster
}

// Bytes returns the payload of the current cluster.
// The buffer is reused by the next call to Next, so copy it if it must be kept.
func (c *Chain) Bytes() []byte {
	return c.buffer
}

// Count is the number of clusters read so far.
func (c *Chain) Count() uint32 {
	return c.count
}

// Err returns the error which stopped the chain, nil if it just ended.
func (c *Chain) Err() error {
	return c.err
}

// ClusterList follows the chain starting at start through the FAT only, without reading cluster payloads.
func (v *Volume) ClusterList(start ClusterAddress) ([]ClusterAddress, error) {
	var (
		clusters []ClusterAddress
		buf      [4]byte
		limit    = v.chainLimit()
	)

	for n := start; !fatEntry(n).IsEOC(); {
		if uint32(len(clusters)) >= limit {
			return nil, checkpoint.From(fmt.Errorf("%w: more than %d clusters, reached cluster %d", ErrChainTooLong, limit, n))
		}

		if err := v.checkCluster(n); err != nil {
			return nil, err
		}
		clusters = append(clusters, n)

		if err := readFull(v.image, buf[:], v.geometry.FatByteOffsetOfCluster(n)); err != nil {
			return nil, checkpoint.Wrap(err, fmt.Errorf("%w: FAT entry of cluster %d", ErrChainRead, n))
		}

		entry := readFatEntry(buf[:])
		switch {
		case entry.IsEOC():
			return clusters, nil
		case entry.IsNextCluster():
			n = entry.Next()
		default:
			return nil, checkpoint.From(fmt.Errorf("%w: cluster %d links to 0x%08X", ErrChainRead, n, entry.Value()))
		}
	}

	return clusters, nil
}

// checkCluster rejects cluster numbers which cannot be read as data.
func (v *Volume) checkCluster(n ClusterAddress) error {
	if n < firstDataCluster {
		return checkpoint.From(fmt.Errorf("%w: cluster %d is reserved", ErrChainRead, n))
	}

	if v.geometry.ClusterCount() > 0 && n > v.geometry.LastCluster() {
		return checkpoint.From(fmt.Errorf("%w: cluster %d is beyond the last cluster %d", ErrChainRead, n, v.geometry.LastCluster()))
	}

	end := v.geometry.ByteOffsetOfCluster(n) + int64(v.geometry.ClusterByteSize())
	if end > v.size {
		return checkpoint.From(fmt.Errorf("%w: cluster %d ends at byte %d, outside of the %d byte image", ErrChainRead, n, end, v.size))
	}

	return nil
}
