package fatimg

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/aligator/fatimg/checkpoint"
)

// Attributes of a directory entry.
const (
	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolumeID  byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20
	AttrLongName       = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// Markers in the first name byte of a directory entry.
const (
	entryEndOfDirectory byte = 0x00
	entryFree           byte = 0xE5
	// entryKanjiE5 stands for a real 0xE5 as first name byte.
	entryKanjiE5 byte = 0x05
)

const (
	lastLongEntry       = 0x40
	longEntryOrdinal    = 0x0F
	longNameCharsPerRun = 13
)

// DirectoryEntry is a decoded 32 byte short (8.3) directory entry.
type DirectoryEntry struct {
	Name            [8]byte
	Extension       [3]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// DecodeShortEntry decodes a short directory entry.
// The slice must start at a multiple of 32 inside its cluster.
func DecodeShortEntry(b []byte) (DirectoryEntry, error) {
	if len(b) < dirEntrySize {
		return DirectoryEntry{}, checkpoint.From(fmt.Errorf("directory entry needs %d bytes, got %d", dirEntrySize, len(b)))
	}

	e := DirectoryEntry{
		Attribute:       b[11],
		NTReserved:      b[12],
		CreateTimeTenth: b[13],
		CreateTime:      binary.LittleEndian.Uint16(b[14:16]),
		CreateDate:      binary.LittleEndian.Uint16(b[16:18]),
		LastAccessDate:  binary.LittleEndian.Uint16(b[18:20]),
		FirstClusterHI:  binary.LittleEndian.Uint16(b[20:22]),
		WriteTime:       binary.LittleEndian.Uint16(b[22:24]),
		WriteDate:       binary.LittleEndian.Uint16(b[24:26]),
		FirstClusterLO:  binary.LittleEndian.Uint16(b[26:28]),
		FileSize:        binary.LittleEndian.Uint32(b[28:32]),
	}
	copy(e.Name[:], b[0:8])
	copy(e.Extension[:], b[8:11])

	return e, nil
}

// FirstCluster combines the high and low cluster words.
func (e DirectoryEntry) FirstCluster() ClusterAddress {
	return ClusterAddress(uint32(e.FirstClusterHI)<<16 | uint32(e.FirstClusterLO))
}

func (e DirectoryEntry) IsDir() bool {
	return e.Attribute&AttrDirectory == AttrDirectory
}

func (e DirectoryEntry) IsVolumeID() bool {
	return e.Attribute&AttrVolumeID == AttrVolumeID
}

// IsHiddenOrSystem reports entries which are not shown in listings.
func (e DirectoryEntry) IsHiddenOrSystem() bool {
	return e.Attribute&(AttrHidden|AttrSystem) != 0
}

// RawName returns the 11 name bytes as they are stored, as used by the long name checksum.
func (e DirectoryEntry) RawName() [11]byte {
	var raw [11]byte
	copy(raw[:8], e.Name[:])
	copy(raw[8:], e.Extension[:])
	return raw
}

// ShortName returns the trimmed 8.3 name, e.g. "README.TXT", or "README" without an extension.
func (e DirectoryEntry) ShortName() string {
	name := e.Name
	if name[0] == entryKanjiE5 {
		name[0] = entryFree
	}

	base := strings.TrimRight(string(name[:]), " ")
	ext := strings.TrimRight(string(e.Extension[:]), " ")

	if ext != "" {
		return base + "." + ext
	}
	return base
}

// LongNameFragment is a decoded long file name directory entry.
type LongNameFragment struct {
	Ordinal  uint8
	Last     bool
	Checksum byte
	// Name holds the characters of this fragment up to the first terminator.
	Name string
}

// IsLongNameEntry reports whether the 32 byte entry is a long name fragment.
func IsLongNameEntry(b []byte) bool {
	return len(b) >= dirEntrySize && b[11] == AttrLongName
}

// DecodeLongFragment decodes a long file name entry.
// Its 13 UTF-16 characters are split over bytes 1-10, 14-25 and 28-31.
// 0x0000 terminates the name and 0xFFFF is padding, both end the fragment.
func DecodeLongFragment(b []byte) (LongNameFragment, error) {
	if len(b) < dirEntrySize {
		return LongNameFragment{}, checkpoint.From(fmt.Errorf("long name entry needs %d bytes, got %d", dirEntrySize, len(b)))
	}

	f := LongNameFragment{
		Ordinal:  b[0] & longEntryOrdinal,
		Last:     b[0]&0xF0 == lastLongEntry,
		Checksum: b[13],
	}

	units := make([]uint16, 0, longNameCharsPerRun)
	for _, r := range [][2]int{{1, 11}, {14, 26}, {28, 32}} {
		for i := r[0]; i < r[1]; i += 2 {
			units = append(units, binary.LittleEndian.Uint16(b[i:i+2]))
		}
	}

	for i, u := range units {
		if u == 0x0000 || u == 0xFFFF {
			units = units[:i]
			break
		}
	}

	f.Name = string(utf16.Decode(units))
	return f, nil
}

// ReconstructLongName joins the fragments of one long name.
// The fragments are given in the order they were read from the directory,
// which starts with the last fragment (highest ordinal, Last flag set).
// The result starts with ordinal 1.
func ReconstructLongName(fragments []LongNameFragment) (string, error) {
	if len(fragments) == 0 {
		return "", checkpoint.From(fmt.Errorf("%w: no fragments", ErrCorruptLongName))
	}

	if !fragments[0].Last {
		return "", checkpoint.From(fmt.Errorf("%w: first fragment is not flagged as last", ErrCorruptLongName))
	}

	total := int(fragments[0].Ordinal)
	if total != len(fragments) {
		return "", checkpoint.From(fmt.Errorf("%w: expected %d fragments, got %d", ErrCorruptLongName, total, len(fragments)))
	}

	sorted := make([]LongNameFragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	var name strings.Builder
	for i, f := range sorted {
		// After sorting, ordinals must be exactly 1..total.
		if int(f.Ordinal) != i+1 {
			return "", checkpoint.From(fmt.Errorf("%w: invalid or duplicate ordinal %d", ErrCorruptLongName, f.Ordinal))
		}
		if f.Checksum != sorted[0].Checksum {
			return "", checkpoint.From(fmt.Errorf("%w: fragment %d belongs to another short entry", ErrCorruptLongName, f.Ordinal))
		}
		name.WriteString(f.Name)
	}

	return name.String(), nil
}

// ShortNameChecksum calculates the checksum stored in each long name fragment
// from the 11 raw name bytes of the short entry.
func ShortNameChecksum(name [11]byte) byte {
	var sum byte
	for _, c := range name {
		sum = (sum&1)<<7 + sum>>1 + c
	}
	return sum
}
