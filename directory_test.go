package fatimg

import (
	"bytes"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	testHelloName  = "HelloWorldThisIsALoongFileName.txt"
	testSubDirName = "Sub Directory"
)

var (
	testHelloContent  = bytes.Repeat([]byte("Hello World "), 50)[:522]
	testReadmeContent = []byte("Hello World")
)

// newPopulatedImage creates this tree:
//
//	TESTVOL (volume label)
//	HelloWorldThisIsALoongFileName.txt  522 bytes in clusters 10 and 11
//	README.TXT                          11 bytes in cluster 12
//	HIDDEN.TXT (hidden)                 3 bytes in cluster 13
//	SYSTEM.DAT (system)                 3 bytes in cluster 14
//	deleted.txt (deleted)
//	Sub Directory/                      cluster 20
//	  inner.txt                         5 bytes in cluster 21
//	  Nested/                           cluster 22
//	    DEEP.TXT                        4 bytes in cluster 23
//	empty.txt                           0 bytes
//
// Behind the end of directory marker the root contains GHOST.TXT which must never be found.
func newPopulatedImage(t *testing.T) *testImage {
	img := newTestImage(t)

	img.writeDir(testRootCluster, slots(
		[][]byte{shortSlot(testEntry{name: "TESTVOL    ", attr: AttrVolumeID})},
		withLongName(testHelloName, testEntry{name: "HELLOW~1TXT", attr: AttrArchive, cluster: 10, size: 522, date: 0x56CF, time: 0x7475}),
		[][]byte{
			shortSlot(testEntry{name: "README  TXT", attr: AttrArchive, cluster: 12, size: 11, date: 0x56CF, time: 0x7475}),
			shortSlot(testEntry{name: "HIDDEN  TXT", attr: AttrHidden, cluster: 13, size: 3}),
			shortSlot(testEntry{name: "SYSTEM  DAT", attr: AttrSystem | AttrArchive, cluster: 14, size: 3}),
		},
		longSlots("deleted.txt", "DELETED TXT"),
		[][]byte{shortSlot(testEntry{name: "\xE5ELETED TXT", attr: AttrArchive, cluster: 15, size: 3})},
		withLongName(testSubDirName, testEntry{name: "SUBDIR     ", attr: AttrDirectory, cluster: 20, date: 0x56CF, time: 0x7475}),
		withLongName("empty.txt", testEntry{name: "EMPTY   TXT", attr: AttrArchive}),
		[][]byte{
			make([]byte, dirEntrySize),
			shortSlot(testEntry{name: "GHOST   TXT", attr: AttrArchive, cluster: 16, size: 3}),
		},
	)...)

	img.writeFile(testHelloContent, 10, 11)
	img.writeFile(testReadmeContent, 12)
	img.writeFile([]byte("abc"), 13)
	img.writeFile([]byte("xyz"), 14)
	img.writeFile([]byte("boo"), 16)

	img.chain(20)
	img.writeDir(20, slots(
		[][]byte{
			shortSlot(testEntry{name: ".          ", attr: AttrDirectory, cluster: 20}),
			shortSlot(testEntry{name: "..         ", attr: AttrDirectory, cluster: 0}),
		},
		withLongName("inner.txt", testEntry{name: "INNER   TXT", attr: AttrArchive, cluster: 21, size: 5}),
		withLongName("Nested", testEntry{name: "NESTED     ", attr: AttrDirectory | AttrArchive, cluster: 22}),
	)...)
	img.writeFile([]byte("inner"), 21)

	img.chain(22)
	img.writeDir(22,
		shortSlot(testEntry{name: ".          ", attr: AttrDirectory, cluster: 22}),
		shortSlot(testEntry{name: "..         ", attr: AttrDirectory, cluster: 20}),
		shortSlot(testEntry{name: "DEEP    TXT", attr: AttrArchive, cluster: 23, size: 4}),
	)
	img.writeFile([]byte("deep"), 23)

	return img
}

// time2023 is the stamp 0x56CF 0x7475 used in newPopulatedImage.
func time2023() time.Time {
	return time.Date(2023, 6, 15, 14, 35, 42, 0, time.UTC)
}

func entryNames(entries []DirEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestVolume_ListEntries(t *testing.T) {
	tests := []struct {
		name           string
		dir            ClusterAddress
		wantLabel      string
		wantNames      []string
		wantFiles      int
		wantDirs       int
		wantTotalBytes uint64
	}{
		{
			name:           "root",
			dir:            testRootCluster,
			wantLabel:      "TESTVOL",
			wantNames:      []string{testHelloName, "README.TXT", testSubDirName, "empty.txt"},
			wantFiles:      3,
			wantDirs:       1,
			wantTotalBytes: 533,
		},
		{
			name:           "sub directory",
			dir:            20,
			wantNames:      []string{".", "..", "inner.txt", "Nested"},
			wantFiles:      1,
			wantDirs:       3,
			wantTotalBytes: 5,
		},
		{
			name:           "nested directory without long names",
			dir:            22,
			wantNames:      []string{".", "..", "DEEP.TXT"},
			wantFiles:      1,
			wantDirs:       2,
			wantTotalBytes: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newPopulatedImage(t).open()

			got, err := v.ListEntries(tt.dir)
			if err != nil {
				t.Fatalf("Volume.ListEntries() error = %v", err)
			}

			if got.Label != tt.wantLabel {
				t.Errorf("Listing.Label = %q, want %q", got.Label, tt.wantLabel)
			}
			if names := entryNames(got.Entries); !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("Listing.Entries = %v, want %v", names, tt.wantNames)
			}
			if got.Files != tt.wantFiles || got.Dirs != tt.wantDirs || got.TotalBytes != tt.wantTotalBytes {
				t.Errorf("Listing summary = %d files, %d dirs, %d bytes, want %d files, %d dirs, %d bytes",
					got.Files, got.Dirs, got.TotalBytes, tt.wantFiles, tt.wantDirs, tt.wantTotalBytes)
			}
		})
	}
}

func TestVolume_ListEntries_entryDetails(t *testing.T) {
	v := newPopulatedImage(t).open()

	listing, err := v.ListEntries(testRootCluster)
	if err != nil {
		t.Fatalf("Volume.ListEntries() error = %v", err)
	}

	hello := listing.Entries[0]
	if hello.ShortName() != "HELLOW~1.TXT" {
		t.Errorf("DirEntry.ShortName() = %q, want %q", hello.ShortName(), "HELLOW~1.TXT")
	}
	if hello.FirstCluster() != 10 || hello.FileSize != 522 {
		t.Errorf("DirEntry = cluster %d size %d, want cluster 10 size 522", hello.FirstCluster(), hello.FileSize)
	}
	if got, want := hello.ModTime(), time2023(); !got.Equal(want) {
		t.Errorf("DirEntry.ModTime() = %v, want %v", got, want)
	}
	if got, want := hello.CreationTime(), time2023(); !got.Equal(want) {
		t.Errorf("DirEntry.CreationTime() = %v, want %v", got, want)
	}

	readme := listing.Entries[1]
	if readme.LongName != "" {
		t.Errorf("DirEntry.LongName = %q, want no long name", readme.LongName)
	}
}

func TestVolume_ListEntries_multipleClusters(t *testing.T) {
	img := newTestImage(t)

	// 15 short entries fill the first cluster up to the last slot,
	// the long name then starts in the last slot and continues in the next cluster.
	var first [][]byte
	for i := 0; i < 15; i++ {
		first = append(first, shortSlot(testEntry{name: "FILE" + string(rune('A'+i)) + "   TXT", attr: AttrArchive}))
	}
	long := longSlots("AVeryLongNameOverClusters", "AVERYL~1   ")
	first = append(first, long[0])

	img.chain(40, 41)
	img.writeDir(40, first...)
	img.writeDir(41, long[1], shortSlot(testEntry{name: "AVERYL~1   ", attr: AttrArchive, cluster: 50, size: 1}))

	v := img.open()

	listing, err := v.ListEntries(40)
	if err != nil {
		t.Fatalf("Volume.ListEntries() error = %v", err)
	}

	if len(listing.Entries) != 16 {
		t.Fatalf("Volume.ListEntries() returned %d entries, want 16", len(listing.Entries))
	}
	if got := listing.Entries[15].Name(); got != "AVeryLongNameOverClusters" {
		t.Errorf("DirEntry.Name() = %q, want %q", got, "AVeryLongNameOverClusters")
	}

	found, err := v.FindByName(40, "averylongnameoverclusters")
	if err != nil {
		t.Fatalf("Volume.FindByName() error = %v", err)
	}
	if !reflect.DeepEqual(found.Directory, []ClusterAddress{40, 41}) {
		t.Errorf("ResolvedFile.Directory = %v, want %v", found.Directory, []ClusterAddress{40, 41})
	}
}

func TestVolume_ListEntries_brokenLongNames(t *testing.T) {
	tests := []struct {
		name       string
		slots      [][]byte
		skipChecks bool
		wantName   string
		wantLog    bool
	}{
		{
			name:     "valid long name",
			slots:    withLongName("valid name.txt", testEntry{name: "VALIDN~1TXT"}),
			wantName: "valid name.txt",
		},
		{
			name:     "checksum of another entry",
			slots:    append(longSlots("other.txt", "OTHER   TXT"), shortSlot(testEntry{name: "SHORT   TXT"})),
			wantName: "SHORT.TXT",
			wantLog:  true,
		},
		{
			name:       "checksum of another entry without checks",
			slots:      append(longSlots("other.txt", "OTHER   TXT"), shortSlot(testEntry{name: "SHORT   TXT"})),
			skipChecks: true,
			wantName:   "other.txt",
		},
		{
			name: "missing first fragment",
			slots: func() [][]byte {
				long := longSlots("a name with more than 13 characters", "ANAMEW~1   ")
				return append(long[1:], shortSlot(testEntry{name: "ANAMEW~1   "}))
			}(),
			wantName: "ANAMEW~1",
		},
		{
			name: "missing fragment in the middle",
			slots: func() [][]byte {
				long := longSlots("a name with more than 26 characters", "ANAMEW~1   ")
				return [][]byte{long[0], long[2], shortSlot(testEntry{name: "ANAMEW~1   "})}
			}(),
			wantName: "ANAMEW~1",
			wantLog:  true,
		},
		{
			name: "deleted entry between fragments and short entry",
			slots: append(longSlots("lost.txt", "LOST    TXT"),
				shortSlot(testEntry{name: "\xE5OST    TXT"}),
				shortSlot(testEntry{name: "LOST    TXT"})),
			wantName: "LOST.TXT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newTestImage(t)
			img.writeDir(testRootCluster, tt.slots...)

			v := img.open()
			if tt.skipChecks {
				v = img.openSkipChecks()
			}
			log, hook := newTestLogger()
			v.SetLogger(log)

			listing, err := v.ListEntries(testRootCluster)
			if err != nil {
				t.Fatalf("Volume.ListEntries() error = %v", err)
			}

			if len(listing.Entries) != 1 {
				t.Fatalf("Volume.ListEntries() = %v, want exactly one entry", entryNames(listing.Entries))
			}
			if got := listing.Entries[0].Name(); got != tt.wantName {
				t.Errorf("DirEntry.Name() = %q, want %q", got, tt.wantName)
			}

			logged := false
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.DebugLevel {
					logged = true
				}
			}
			if logged != tt.wantLog {
				t.Errorf("dropping a long name logged = %v, want %v", logged, tt.wantLog)
			}
		})
	}
}

func TestVolume_ListEntries_chainError(t *testing.T) {
	img := newTestImage(t)
	img.setFat(testRootCluster, 0)

	// A full cluster, so that no end of directory marker stops the scan before the broken link.
	var full [][]byte
	for i := 0; i < SectorSize/dirEntrySize; i++ {
		full = append(full, shortSlot(testEntry{name: "FILE    TXT", attr: AttrArchive}))
	}
	img.writeDir(testRootCluster, full...)
	v := img.open()

	_, err := v.ListEntries(testRootCluster)
	if !errors.Is(err, ErrChainRead) {
		t.Errorf("Volume.ListEntries() error = %v, want %v", err, ErrChainRead)
	}
}

func TestVolume_FindByName(t *testing.T) {
	tests := []struct {
		name        string
		dir         ClusterAddress
		target      string
		wantCluster ClusterAddress
		wantErr     error
	}{
		{name: "long name", dir: testRootCluster, target: testHelloName, wantCluster: 10},
		{name: "long name ignores case", dir: testRootCluster, target: "HELLOWORLDTHISISALOONGFILENAME.TXT", wantCluster: 10},
		{name: "short name of a long name", dir: testRootCluster, target: "HELLOW~1.TXT", wantCluster: 10},
		{name: "short name without dot", dir: testRootCluster, target: "hellow~1txt", wantCluster: 10},
		{name: "short name", dir: testRootCluster, target: "README.TXT", wantCluster: 12},
		{name: "short name ignores case", dir: testRootCluster, target: "readme.txt", wantCluster: 12},
		{name: "hidden entries can be found", dir: testRootCluster, target: "HIDDEN.TXT", wantCluster: 13},
		{name: "system entries can be found", dir: testRootCluster, target: "system.dat", wantCluster: 14},
		{name: "directory", dir: testRootCluster, target: "sub directory", wantCluster: 20},
		{name: "dotdot", dir: 20, target: "..", wantCluster: 0},
		{name: "dot", dir: 20, target: ".", wantCluster: 20},
		{name: "in sub directory", dir: 20, target: "INNER.TXT", wantCluster: 21},
		{name: "deleted", dir: testRootCluster, target: "deleted.txt", wantErr: ErrNotFound},
		{name: "behind the end of directory", dir: testRootCluster, target: "GHOST.TXT", wantErr: ErrNotFound},
		{name: "volume label", dir: testRootCluster, target: "TESTVOL", wantErr: ErrNotFound},
		{name: "empty name", dir: testRootCluster, target: "", wantErr: ErrNotFound},
		{name: "missing", dir: testRootCluster, target: "missing.txt", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newPopulatedImage(t).open()

			got, err := v.FindByName(tt.dir, tt.target)
			if !errors.Is(err, tt.wantErr) || (err == nil) != (tt.wantErr == nil) {
				t.Errorf("Volume.FindByName() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr != nil {
				if !errors.Is(err, os.ErrNotExist) {
					t.Errorf("Volume.FindByName() error = %v, want it to match os.ErrNotExist", err)
				}
				return
			}

			if got.FirstCluster() != tt.wantCluster {
				t.Errorf("Volume.FindByName() cluster = %v, want %v", got.FirstCluster(), tt.wantCluster)
			}
			if !reflect.DeepEqual(got.Directory, []ClusterAddress{tt.dir}) {
				t.Errorf("ResolvedFile.Directory = %v, want %v", got.Directory, []ClusterAddress{tt.dir})
			}
		})
	}
}
