// File model contains the structs which match the direct structures of the FAT32 image.

package fatimg

import (
	"encoding/binary"

	"github.com/aligator/fatimg/checkpoint"
	"github.com/go-restruct/restruct"
)

// SectorSize is the only sector size supported.
const SectorSize = 512

// BootSignature is the 0x55 0xAA pair at offset 510 read as little endian uint16.
const BootSignature uint16 = 0xAA55

const (
	mbrPartitionCount = 4
	dirEntrySize      = 32
)

// Partition is one 16 byte slot of the MBR partition table.
type Partition struct {
	BootFlag    byte
	CHSBegin    [3]byte
	TypeCode    byte
	CHSEnd      [3]byte
	LBABegin    uint32
	SectorCount uint32
}

// MBR is the master boot record in the first sector of the image.
type MBR struct {
	BootCode   [446]byte
	Partitions [mbrPartitionCount]Partition
	Signature  uint16
}

// BPB is the FAT32 boot sector including the BIOS parameter block.
type BPB struct {
	JumpBoot            [3]byte
	OEMName             [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
	FATSize32           uint32
	ExtFlags            uint16
	FSVersion           uint16
	RootCluster         uint32
	FSInfo              uint16
	BkBootSector        uint16
	Reserved            [12]byte
	DriveNumber         byte
	Reserved1           byte
	BootSignature       byte
	VolumeID            uint32
	VolumeLabel         [11]byte
	FileSystemType      [8]byte
	BootCode            [420]byte
	Signature           uint16
}

// ParseMBR decodes the first sector of an image.
func ParseMBR(sector []byte) (MBR, error) {
	var mbr MBR
	err := restruct.Unpack(sector, binary.LittleEndian, &mbr)
	return mbr, checkpoint.From(err)
}

// Bytes encodes the MBR back into its 512 byte form.
func (m MBR) Bytes() ([]byte, error) {
	data, err := restruct.Pack(binary.LittleEndian, &m)
	return data, checkpoint.From(err)
}

// ParseBPB decodes the first sector of a FAT32 partition.
func ParseBPB(sector []byte) (BPB, error) {
	var bpb BPB
	err := restruct.Unpack(sector, binary.LittleEndian, &bpb)
	return bpb, checkpoint.From(err)
}

// Bytes encodes the boot sector back into its 512 byte form.
func (b BPB) Bytes() ([]byte, error) {
	data, err := restruct.Pack(binary.LittleEndian, &b)
	return data, checkpoint.From(err)
}

// TotalSectors returns whichever of the two sector count fields is in use.
func (b BPB) TotalSectors() uint32 {
	if b.TotalSectors16 != 0 {
		return uint32(b.TotalSectors16)
	}
	return b.TotalSectors32
}
