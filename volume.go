package fatimg

import (
	"fmt"
	"io"
	"strings"

	"github.com/aligator/fatimg/checkpoint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// ClusterAddress is the number of a cluster in the data region.
// 0 and 1 are reserved, so valid data clusters start at 2.
type ClusterAddress uint32

// firstDataCluster is the cluster stored at the start of the data region.
const firstDataCluster ClusterAddress = 2

// Geometry contains everything needed to translate clusters into image offsets.
// It is immutable after the volume has been opened.
type Geometry struct {
	// PartitionStart is the LBA of the first partition, where the boot sector lives.
	PartitionStart    uint32
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSize           uint32
	RootEntryCount    uint16
	RootCluster       ClusterAddress
	TotalSectors      uint32
}

// ClusterByteSize is the size of a single cluster in bytes.
func (g Geometry) ClusterByteSize() uint32 {
	return uint32(g.BytesPerSector) * uint32(g.SectorsPerCluster)
}

// RootDirSectors is always 0 on FAT32 because the root directory lives in the data region.
func (g Geometry) RootDirSectors() uint64 {
	bps := uint64(g.BytesPerSector)
	return (uint64(g.RootEntryCount)*dirEntrySize + bps - 1) / bps
}

// FirstFatSector is the image sector of the first FAT.
func (g Geometry) FirstFatSector() uint64 {
	return uint64(g.PartitionStart) + uint64(g.ReservedSectors) + g.RootDirSectors()
}

// FirstDataSector is the image sector of cluster 2.
func (g Geometry) FirstDataSector() uint64 {
	return g.FirstFatSector() + uint64(g.NumFATs)*uint64(g.FATSize)
}

// SectorOfCluster is the image sector at which the given cluster starts.
func (g Geometry) SectorOfCluster(n ClusterAddress) uint64 {
	return uint64(n-firstDataCluster)*uint64(g.SectorsPerCluster) + g.FirstDataSector()
}

// ByteOffsetOfCluster is SectorOfCluster expressed in bytes.
func (g Geometry) ByteOffsetOfCluster(n ClusterAddress) int64 {
	return int64(g.SectorOfCluster(n)) * int64(g.BytesPerSector)
}

// FatByteOffsetOfCluster is the image byte offset of the 4 byte FAT entry of cluster n in the first FAT.
func (g Geometry) FatByteOffsetOfCluster(n ClusterAddress) int64 {
	bps := uint64(g.BytesPerSector)
	fatOffset := uint64(n) * 4
	sector := uint64(g.ReservedSectors) + fatOffset/bps + uint64(g.PartitionStart)
	return int64(sector*bps + fatOffset%bps)
}

// ClusterCount is the number of clusters in the data region.
func (g Geometry) ClusterCount() uint32 {
	used := g.FirstDataSector() - uint64(g.PartitionStart)
	if g.SectorsPerCluster == 0 || uint64(g.TotalSectors) <= used {
		return 0
	}
	return uint32((uint64(g.TotalSectors) - used) / uint64(g.SectorsPerCluster))
}

// LastCluster is the highest cluster number which belongs to the data region.
func (g Geometry) LastCluster() ClusterAddress {
	return ClusterAddress(g.ClusterCount()) + firstDataCluster - 1
}

func (g Geometry) String() string {
	return fmt.Sprintf("partition at sector %d, %d bytes per sector, %d sectors per cluster, %d reserved sectors, %d FATs of %d sectors, root cluster %d, %d sectors",
		g.PartitionStart, g.BytesPerSector, g.SectorsPerCluster, g.ReservedSectors, g.NumFATs, g.FATSize, g.RootCluster, g.TotalSectors)
}

// Volume is an opened FAT32 image.
// It holds no state besides the decoded boot records, so it may be shared.
type Volume struct {
	image  sectorReader
	size   int64
	closer io.Closer

	mbr      MBR
	bpb      BPB
	geometry Geometry

	// verifyChecksums drops long names whose checksum does not match their short entry.
	verifyChecksums bool

	log *logrus.Entry
}

// New opens a FAT32 volume from the first partition of the given image.
// The reader is borrowed; closing it is up to the caller.
func New(reader io.ReaderAt, size int64) (*Volume, error) {
	return newVolume(reader, size, false, logrus.NewEntry(logrus.StandardLogger()))
}

// NewSkipChecks opens a volume just like New but skips all validations which are not required to read it.
// This may allow you to open not perfectly standard images.
// Use with caution!
func NewSkipChecks(reader io.ReaderAt, size int64) (*Volume, error) {
	return newVolume(reader, size, true, logrus.NewEntry(logrus.StandardLogger()))
}

// Open opens the image file name from fsys and reads the volume from it.
// The file is owned by the Volume and released by Close.
func Open(fsys afero.Fs, name string) (*Volume, error) {
	return openFile(fsys, name, false)
}

// OpenSkipChecks is Open with the validations of NewSkipChecks.
func OpenSkipChecks(fsys afero.Fs, name string) (*Volume, error) {
	return openFile(fsys, name, true)
}

func openFile(fsys afero.Fs, name string, skipChecks bool) (*Volume, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, checkpoint.From(err)
	}

	v, err := newVolume(file, stat.Size(), skipChecks, logrus.WithField("image", name))
	if err != nil {
		file.Close()
		return nil, err
	}

	v.closer = file
	return v, nil
}

func newVolume(reader sectorReader, size int64, skipChecks bool, log *logrus.Entry) (*Volume, error) {
	v := &Volume{
		image:           reader,
		size:            size,
		verifyChecksums: !skipChecks,
		log:             log,
	}

	sector := make([]byte, SectorSize)
	if err := readFull(reader, sector, 0); err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("%w: no master boot record", ErrMalformedVolume))
	}

	mbr, err := ParseMBR(sector)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrMalformedVolume)
	}
	v.mbr = mbr

	partition := mbr.Partitions[0]
	if err := readFull(reader, sector, int64(partition.LBABegin)*SectorSize); err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("%w: no boot sector at sector %d", ErrMalformedVolume, partition.LBABegin))
	}

	bpb, err := ParseBPB(sector)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrMalformedVolume)
	}
	v.bpb = bpb

	v.geometry = Geometry{
		PartitionStart:    partition.LBABegin,
		BytesPerSector:    bpb.BytesPerSector,
		SectorsPerCluster: bpb.SectorsPerCluster,
		ReservedSectors:   bpb.ReservedSectorCount,
		NumFATs:           bpb.NumFATs,
		FATSize:           bpb.FATSize32,
		RootEntryCount:    bpb.RootEntryCount,
		RootCluster:       ClusterAddress(bpb.RootCluster),
		TotalSectors:      bpb.TotalSectors(),
	}

	if err := v.validate(skipChecks); err != nil {
		return nil, err
	}

	v.log.WithField("geometry", v.geometry.String()).Debug("opened FAT32 volume")
	return v, nil
}

// validate checks the decoded boot records.
// Only the sector size and a non zero cluster size are required to read the volume at all.
func (v *Volume) validate(skipChecks bool) error {
	// The whole address translation depends on 512 byte sectors.
	if v.geometry.BytesPerSector != SectorSize {
		return checkpoint.From(fmt.Errorf("%w: %d bytes per sector, only %d is supported", ErrMalformedVolume, v.geometry.BytesPerSector, SectorSize))
	}

	// Prevents a division by zero in every cluster calculation.
	if v.geometry.SectorsPerCluster == 0 {
		return checkpoint.From(fmt.Errorf("%w: 0 sectors per cluster", ErrMalformedVolume))
	}

	if skipChecks {
		return nil
	}

	if v.mbr.Signature != BootSignature {
		return checkpoint.From(fmt.Errorf("%w: invalid master boot record signature 0x%04X", ErrMalformedVolume, v.mbr.Signature))
	}

	if v.bpb.Signature != BootSignature {
		return checkpoint.From(fmt.Errorf("%w: invalid boot sector signature 0x%04X", ErrMalformedVolume, v.bpb.Signature))
	}

	if v.geometry.NumFATs == 0 || v.geometry.FATSize == 0 {
		return checkpoint.From(fmt.Errorf("%w: no FAT32 allocation table", ErrMalformedVolume))
	}

	if v.geometry.RootCluster < firstDataCluster {
		return checkpoint.From(fmt.Errorf("%w: invalid root cluster %d", ErrMalformedVolume, v.geometry.RootCluster))
	}

	return nil
}

// Close releases the image if the volume was opened by Open.
func (v *Volume) Close() error {
	if v.closer == nil {
		return nil
	}

	err := v.closer.Close()
	v.closer = nil
	return checkpoint.From(err)
}

// SetLogger replaces the logger used for debug output.
func (v *Volume) SetLogger(log *logrus.Entry) {
	v.log = log
}

// Geometry returns the decoded layout of the volume.
func (v *Volume) Geometry() Geometry {
	return v.geometry
}

// MBR returns the decoded master boot record.
func (v *Volume) MBR() MBR {
	return v.mbr
}

// BPB returns the decoded boot sector of the first partition.
func (v *Volume) BPB() BPB {
	return v.bpb
}

// RootCluster returns the first cluster of the root directory.
func (v *Volume) RootCluster() ClusterAddress {
	return v.geometry.RootCluster
}

// Label returns the volume label stored in the boot sector.
// The label of the volume-ID directory entry is reported by ListEntries.
func (v *Volume) Label() string {
	return strings.TrimRight(string(v.bpb.VolumeLabel[:]), " \x00")
}
