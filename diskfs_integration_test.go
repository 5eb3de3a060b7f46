package fatimg

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/spf13/afero"
)

const (
	integrationDiskSize       = 48 * 1024 * 1024
	integrationPartitionStart = 2048
)

// createDiskfsImage builds a real MBR partitioned FAT32 image with go-diskfs.
// dirs are created in order before files, which maps absolute paths to their content.
func createDiskfsImage(t *testing.T, dirs []string, files map[string][]byte) string {
	t.Helper()

	imagePath := filepath.Join(t.TempDir(), "disk.img")
	d, err := diskfs.Create(imagePath, integrationDiskSize, diskfs.Raw, diskfs.SectorSize512)
	if err != nil {
		t.Fatalf("could not create the disk: %v", err)
	}
	defer d.File.Close()

	table := &mbr.Table{
		LogicalSectorSize:  SectorSize,
		PhysicalSectorSize: SectorSize,
		Partitions: []*mbr.Partition{
			{
				Type:  mbr.Fat32LBA,
				Start: integrationPartitionStart,
				Size:  integrationDiskSize/SectorSize - integrationPartitionStart,
			},
		},
	}
	if err := d.Partition(table); err != nil {
		t.Fatalf("could not partition the disk: %v", err)
	}

	fs, err := d.CreateFilesystem(disk.FilesystemSpec{
		Partition:   1,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: "INTEGRATION",
	})
	if err != nil {
		t.Fatalf("could not create the filesystem: %v", err)
	}

	for _, dir := range dirs {
		if err := fs.Mkdir(dir); err != nil {
			t.Fatalf("could not create %s: %v", dir, err)
		}
	}

	for name, content := range files {
		f, err := fs.OpenFile(name, os.O_CREATE|os.O_RDWR)
		if err != nil {
			t.Fatalf("could not create %s: %v", name, err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatalf("could not write %s: %v", name, err)
		}
	}

	return imagePath
}

func TestDiskfsImage(t *testing.T) {
	if testing.Short() {
		t.Skip("creates a 48 MiB image")
	}

	big := bytes.Repeat([]byte("0123456789abcdef"), 2500)
	files := map[string][]byte{
		"/README.TXT":                            []byte("Hello World"),
		"/docs/A rather long file name.markdown": big,
		"/docs/nested/deep.txt":                  []byte("deep"),
	}
	imagePath := createDiskfsImage(t, []string{"/docs", "/docs/nested"}, files)

	v, err := Open(afero.NewOsFs(), imagePath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer v.Close()
	v.SetLogger(testLogger())

	if got := v.Geometry().PartitionStart; got != integrationPartitionStart {
		t.Errorf("Geometry().PartitionStart = %v, want %v", got, integrationPartitionStart)
	}

	for name, want := range files {
		t.Run(name, func(t *testing.T) {
			file, err := v.Lookup(name)
			if err != nil {
				t.Fatalf("Volume.Lookup() error = %v", err)
			}

			var sink bytes.Buffer
			n, err := v.Extract(file, &sink)
			if err != nil {
				t.Fatalf("Volume.Extract() error = %v", err)
			}
			if n != int64(len(want)) || !bytes.Equal(sink.Bytes(), want) {
				t.Errorf("Volume.Extract() wrote %d bytes which differ from the %d written by go-diskfs", n, len(want))
			}
		})
	}

	dir, err := v.LookupDir("/docs")
	if err != nil {
		t.Fatalf("Volume.LookupDir() error = %v", err)
	}
	listing, err := v.ListEntries(dir)
	if err != nil {
		t.Fatalf("Volume.ListEntries() error = %v", err)
	}

	names := map[string]bool{}
	for _, e := range listing.Entries {
		names[e.Name()] = true
	}
	for _, want := range []string{"A rather long file name.markdown", "nested"} {
		if !names[want] {
			t.Errorf("Volume.ListEntries() = %v, missing %v", entryNames(listing.Entries), want)
		}
	}

	content, err := afero.ReadFile(NewFs(v), "/docs/A rather long file name.markdown")
	if err != nil {
		t.Fatalf("afero.ReadFile() error = %v", err)
	}
	if !bytes.Equal(content, big) {
		t.Errorf("afero.ReadFile() returned %d bytes, want %d", len(content), len(big))
	}
}
