// Package layout encodes and decodes the on-disk structures defined by
// the specification's wire format: the superblock, inodes, and indirect
// pointer blocks. All multi-byte integers are little-endian. Encoding
// and decoding are exact inverses.
//
// Grounded on the teacher repository's disk/formats/qcow2 codec
// (parseHeader/toBytes directly punning byte offsets with
// encoding/binary, the same technique applied here) and on
// filesystem/ext4/inode.go's packed-field inode layout.
package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/ssfs/ssfs/device"
)

// SectorSize is the fixed sector size S, re-exported from device for
// callers that only need the layout package.
const SectorSize = device.SectorSize

// MagicSize is the width of the superblock's magic field.
const MagicSize = 16

// Magic is the 16-byte constant identifying a valid SSFS superblock.
var Magic = [MagicSize]byte{
	0xF0, 0x55, 0x4C, 0x49, 0x45, 0x47, 0x45, 0x49, 0x4E, 0x46, 0x4F, 0x30, 0x39, 0x34, 0x30, 0x0F,
}

// Superblock is sector 0's content.
type Superblock struct {
	NumBlocks      uint32
	NumInodeBlocks uint32
	BlockSize      uint32
}

// EncodeSuperblock packs sb into a fresh zero-filled sector.
func EncodeSuperblock(sb Superblock) []byte {
	b := make([]byte, SectorSize)
	copy(b[0:16], Magic[:])
	binary.LittleEndian.PutUint32(b[16:20], sb.NumBlocks)
	binary.LittleEndian.PutUint32(b[20:24], sb.NumInodeBlocks)
	binary.LittleEndian.PutUint32(b[24:28], sb.BlockSize)
	return b
}

// DecodeSuperblock unpacks a raw sector 0. It does not itself validate
// the magic — callers (mount) decide what an invalid magic means.
func DecodeSuperblock(b []byte) (Superblock, [MagicSize]byte, error) {
	if len(b) != SectorSize {
		return Superblock{}, [MagicSize]byte{}, fmt.Errorf("superblock sector must be %d bytes, got %d", SectorSize, len(b))
	}
	var magic [MagicSize]byte
	copy(magic[:], b[0:16])
	sb := Superblock{
		NumBlocks:      binary.LittleEndian.Uint32(b[16:20]),
		NumInodeBlocks: binary.LittleEndian.Uint32(b[20:24]),
		BlockSize:      binary.LittleEndian.Uint32(b[24:28]),
	}
	return sb, magic, nil
}

// ValidMagic reports whether a decoded magic field matches the SSFS
// constant.
func ValidMagic(magic [MagicSize]byte) bool {
	return magic == Magic
}

// InodeSize is the packed, on-disk size of one inode.
const InodeSize = 32

// InodesPerBlock is the number of inodes packed into each inode-table
// sector.
const InodesPerBlock = SectorSize / InodeSize

// DirectPointers is the number of direct block pointers an inode carries.
const DirectPointers = 4

// Inode is one 32-byte packed inode record.
type Inode struct {
	Valid     uint32
	Size      uint32
	Direct    [DirectPointers]uint32
	Indirect1 uint32
	Indirect2 uint32
}

// IsValid reports whether the inode's valid field marks it in use.
func (in Inode) IsValid() bool { return in.Valid == 1 }

// EncodeInode packs in into a 32-byte buffer.
func EncodeInode(in Inode) []byte {
	b := make([]byte, InodeSize)
	binary.LittleEndian.PutUint32(b[0:4], in.Valid)
	binary.LittleEndian.PutUint32(b[4:8], in.Size)
	for i, d := range in.Direct {
		off := 8 + i*4
		binary.LittleEndian.PutUint32(b[off:off+4], d)
	}
	binary.LittleEndian.PutUint32(b[24:28], in.Indirect1)
	binary.LittleEndian.PutUint32(b[28:32], in.Indirect2)
	return b
}

// DecodeInode unpacks a 32-byte buffer into an Inode.
func DecodeInode(b []byte) (Inode, error) {
	if len(b) != InodeSize {
		return Inode{}, fmt.Errorf("inode record must be %d bytes, got %d", InodeSize, len(b))
	}
	var in Inode
	in.Valid = binary.LittleEndian.Uint32(b[0:4])
	in.Size = binary.LittleEndian.Uint32(b[4:8])
	for i := range in.Direct {
		off := 8 + i*4
		in.Direct[i] = binary.LittleEndian.Uint32(b[off : off+4])
	}
	in.Indirect1 = binary.LittleEndian.Uint32(b[24:28])
	in.Indirect2 = binary.LittleEndian.Uint32(b[28:32])
	return in, nil
}

// DecodeInodesBlock unpacks one inode-table sector into its 32 inode
// slots, in order.
func DecodeInodesBlock(b []byte) ([InodesPerBlock]Inode, error) {
	var inodes [InodesPerBlock]Inode
	if len(b) != SectorSize {
		return inodes, fmt.Errorf("inode block must be %d bytes, got %d", SectorSize, len(b))
	}
	for i := 0; i < InodesPerBlock; i++ {
		in, err := DecodeInode(b[i*InodeSize : (i+1)*InodeSize])
		if err != nil {
			return inodes, err
		}
		inodes[i] = in
	}
	return inodes, nil
}

// EncodeInodesBlock packs 32 inode slots into one sector.
func EncodeInodesBlock(inodes [InodesPerBlock]Inode) []byte {
	b := make([]byte, SectorSize)
	for i, in := range inodes {
		copy(b[i*InodeSize:(i+1)*InodeSize], EncodeInode(in))
	}
	return b
}

// PointersPerBlock is the number of uint32 sector pointers an indirect
// (or double-indirect) block holds.
const PointersPerBlock = SectorSize / 4

// DecodePointerBlock unpacks an indirect (or double-indirect) sector
// into its 256 pointer entries, in order.
func DecodePointerBlock(b []byte) ([PointersPerBlock]uint32, error) {
	var out [PointersPerBlock]uint32
	if len(b) != SectorSize {
		return out, fmt.Errorf("pointer block must be %d bytes, got %d", SectorSize, len(b))
	}
	for i := 0; i < PointersPerBlock; i++ {
		out[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return out, nil
}

// EncodePointerBlock packs 256 pointer entries into one sector.
func EncodePointerBlock(entries [PointersPerBlock]uint32) []byte {
	b := make([]byte, SectorSize)
	for i, e := range entries {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], e)
	}
	return b
}

// MaxDirectBlocks, MaxIndirectBlocks and MaxDoubleIndirectBlocks are the
// logical block counts each addressing level covers.
const (
	MaxDirectBlocks         = DirectPointers
	MaxIndirectBlocks       = PointersPerBlock
	MaxDoubleIndirectBlocks = PointersPerBlock * PointersPerBlock
)

// MaxFileBlocks is the maximum number of logical blocks a file may span.
const MaxFileBlocks = MaxDirectBlocks + MaxIndirectBlocks + MaxDoubleIndirectBlocks

// MaxFileSize is (4+256+65536)*1024 bytes, the largest file SSFS can
// address.
const MaxFileSize = uint64(MaxFileBlocks) * SectorSize
