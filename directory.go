package fatimg

import (
	"fmt"
	"strings"
	"time"

	"github.com/aligator/fatimg/checkpoint"
)

// DirEntry is a short directory entry together with its long name, if it has one.
type DirEntry struct {
	DirectoryEntry
	LongName string
}

// Name returns the long name if present, else the 8.3 name.
func (e DirEntry) Name() string {
	if e.LongName != "" {
		return e.LongName
	}
	return e.ShortName()
}

// ModTime is the time of the last write, time.Time{} if the stored date is invalid.
func (e DirEntry) ModTime() time.Time {
	return parseDateTime(e.WriteDate, e.WriteTime)
}

// CreationTime is the time the entry was created, time.Time{} if the stored date is invalid.
func (e DirEntry) CreationTime() time.Time {
	return parseDateTime(e.CreateDate, e.CreateTime)
}

// Listing is the visible content of a directory.
type Listing struct {
	// Label is set if the directory contains a volume-ID entry, which is only the case for the root.
	Label   string
	Entries []DirEntry

	Files      int
	Dirs       int
	TotalBytes uint64
}

// ResolvedFile is an entry found by FindByName.
type ResolvedFile struct {
	DirEntry

	// Directory is the cluster chain of the directory which contains the entry.
	Directory []ClusterAddress
}

// ListEntries reads the directory starting at dir.
// Volume-ID entries only set the label. Hidden and system entries are left out.
func (v *Volume) ListEntries(dir ClusterAddress) (*Listing, error) {
	listing := &Listing{}

	err := v.scanDirectory(dir, func(e DirEntry) bool {
		switch {
		case e.IsVolumeID():
			raw := e.RawName()
			listing.Label = strings.TrimRight(string(raw[:]), " ")
			return false
		case e.IsHiddenOrSystem():
			return false
		case e.IsDir():
			listing.Dirs++
		default:
			listing.Files++
			listing.TotalBytes += uint64(e.FileSize)
		}

		listing.Entries = append(listing.Entries, e)
		return false
	})
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("could not list directory at cluster %d", dir))
	}

	return listing, nil
}

// FindByName searches the directory starting at dir for the first entry named name.
// The long name is compared case-insensitive. The 8.3 name is only compared if name
// is a valid short name, also case-insensitive.
// Returns ErrNotFound if there is no such entry.
func (v *Volume) FindByName(dir ClusterAddress, name string) (*ResolvedFile, error) {
	var found *DirEntry

	err := v.scanDirectory(dir, func(e DirEntry) bool {
		if e.IsVolumeID() {
			return false
		}

		if (e.LongName != "" && strings.EqualFold(e.LongName, name)) || matchesShortName(e.DirectoryEntry, name) {
			found = &e
			return true
		}
		return false
	})
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("could not search directory at cluster %d", dir))
	}

	if found == nil {
		return nil, checkpoint.From(fmt.Errorf("%w: %s", ErrNotFound, name))
	}

	clusters, err := v.ClusterList(dir)
	if err != nil {
		return nil, err
	}

	return &ResolvedFile{
		DirEntry:  *found,
		Directory: clusters,
	}, nil
}

// scanDirectory calls visit for every short entry of the directory in order,
// with the long name of the preceding fragments attached.
// visit returns true to stop the scan.
func (v *Volume) scanDirectory(dir ClusterAddress, visit func(e DirEntry) bool) error {
	var pending []LongNameFragment

	chain := v.ReadChain(dir)
	for chain.Next() {
		data := chain.Bytes()

		for offset := 0; offset+dirEntrySize <= len(data); offset += dirEntrySize {
			slot := data[offset : offset+dirEntrySize]

			switch {
			case slot[0] == entryEndOfDirectory:
				// All following entries are free as well.
				return nil
			case slot[0] == entryFree:
				pending = nil
				continue
			case IsLongNameEntry(slot):
				fragment, err := DecodeLongFragment(slot)
				if err != nil {
					return err
				}

				if fragment.Last {
					if len(pending) > 0 {
						v.log.WithField("cluster", chain.Cluster()).Debug("dropping unterminated long name")
					}
					pending = []LongNameFragment{fragment}
				} else if len(pending) > 0 {
					pending = append(pending, fragment)
				}
				continue
			}

			e, err := DecodeShortEntry(slot)
			if err != nil {
				return err
			}

			entry := DirEntry{DirectoryEntry: e}
			if len(pending) > 0 && !e.IsVolumeID() {
				entry.LongName = v.longName(pending, e)
			}
			pending = nil

			if visit(entry) {
				return nil
			}
		}
	}

	return chain.Err()
}

// longName reconstructs the name of a fragment run, "" if the run cannot be used for e.
func (v *Volume) longName(fragments []LongNameFragment, e DirectoryEntry) string {
	name, err := ReconstructLongName(fragments)
	if err != nil {
		v.log.WithError(err).WithField("entry", e.ShortName()).Debug("dropping long name")
		return ""
	}

	if v.verifyChecksums && fragments[0].Checksum != ShortNameChecksum(e.RawName()) {
		v.log.WithField("entry", e.ShortName()).WithField("long name", name).Debug("dropping long name with wrong checksum")
		return ""
	}

	return name
}
