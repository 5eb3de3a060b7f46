package fatimg

import (
	"encoding/binary"
)

const (
	// fatEntryMask selects the 28 significant bits, the upper 4 are reserved.
	fatEntryMask = 0x0FFFFFFF

	fatEntryFree = 0x00000000
	fatEntryBad  = 0x0FFFFFF7
	// Everything from fatEntryEOCMin upwards marks the end of a chain.
	fatEntryEOCMin = 0x0FFFFFF8
)

// fatEntry is the raw 32 bit value stored for one cluster in the FAT.
type fatEntry uint32

func readFatEntry(b []byte) fatEntry {
	return fatEntry(binary.LittleEndian.Uint32(b))
}

// Value returns the masked 28 bit value.
func (e fatEntry) Value() uint32 {
	return uint32(e) & fatEntryMask
}

func (e fatEntry) IsFree() bool {
	return e.Value() == fatEntryFree
}

// IsReserved reports the value 1 which must never be used as a link.
func (e fatEntry) IsReserved() bool {
	return e.Value() == 1
}

func (e fatEntry) IsBad() bool {
	return e.Value() == fatEntryBad
}

// IsEOC reports any end of chain marker.
func (e fatEntry) IsEOC() bool {
	return e.Value() >= fatEntryEOCMin
}

// IsNextCluster reports whether the entry links to another cluster.
func (e fatEntry) IsNextCluster() bool {
	return !e.IsFree() && !e.IsReserved() && !e.IsBad() && !e.IsEOC()
}

// Next returns the linked cluster. Only valid if IsNextCluster is true.
func (e fatEntry) Next() ClusterAddress {
	return ClusterAddress(e.Value())
}
