package layout

import "testing"

func TestSuperblockRoundTrip(t *testing.T) {
	sb := Superblock{NumBlocks: 64, NumInodeBlocks: 1, BlockSize: SectorSize}
	b := EncodeSuperblock(sb)

	got, magic, err := DecodeSuperblock(b)
	if err != nil {
		t.Fatalf("DecodeSuperblock() error = %v", err)
	}
	if !ValidMagic(magic) {
		t.Fatalf("ValidMagic() = false, want true")
	}
	if got != sb {
		t.Errorf("DecodeSuperblock() = %+v, want %+v", got, sb)
	}
}

func TestDecodeSuperblockWrongSize(t *testing.T) {
	if _, _, err := DecodeSuperblock(make([]byte, 10)); err == nil {
		t.Fatalf("DecodeSuperblock() on short buffer: want error, got nil")
	}
}

func TestInodeRoundTrip(t *testing.T) {
	in := Inode{
		Valid:     1,
		Size:      4096,
		Direct:    [DirectPointers]uint32{10, 11, 12, 13},
		Indirect1: 20,
		Indirect2: 30,
	}
	b := EncodeInode(in)
	if len(b) != InodeSize {
		t.Fatalf("EncodeInode() len = %d, want %d", len(b), InodeSize)
	}
	got, err := DecodeInode(b)
	if err != nil {
		t.Fatalf("DecodeInode() error = %v", err)
	}
	if got != in {
		t.Errorf("DecodeInode() = %+v, want %+v", got, in)
	}
}

func TestFreeInodeIsZero(t *testing.T) {
	b := EncodeInode(Inode{})
	in, err := DecodeInode(b)
	if err != nil {
		t.Fatalf("DecodeInode() error = %v", err)
	}
	if in.IsValid() {
		t.Errorf("zero inode reports IsValid() = true")
	}
	if in != (Inode{}) {
		t.Errorf("zero inode round-trip = %+v, want all zero", in)
	}
}

func TestInodesBlockRoundTrip(t *testing.T) {
	var inodes [InodesPerBlock]Inode
	inodes[0] = Inode{Valid: 1, Size: 3}
	inodes[InodesPerBlock-1] = Inode{Valid: 1, Size: 7, Direct: [DirectPointers]uint32{1, 0, 0, 0}}

	b := EncodeInodesBlock(inodes)
	if len(b) != SectorSize {
		t.Fatalf("EncodeInodesBlock() len = %d, want %d", len(b), SectorSize)
	}

	got, err := DecodeInodesBlock(b)
	if err != nil {
		t.Fatalf("DecodeInodesBlock() error = %v", err)
	}
	if got != inodes {
		t.Errorf("DecodeInodesBlock() mismatch")
	}
}

func TestPointerBlockRoundTrip(t *testing.T) {
	var entries [PointersPerBlock]uint32
	entries[0] = 42
	entries[255] = 100000

	b := EncodePointerBlock(entries)
	got, err := DecodePointerBlock(b)
	if err != nil {
		t.Fatalf("DecodePointerBlock() error = %v", err)
	}
	if got != entries {
		t.Errorf("DecodePointerBlock() mismatch")
	}
}

func TestMaxFileSize(t *testing.T) {
	want := uint64(4+256+65536) * 1024
	if MaxFileSize != want {
		t.Errorf("MaxFileSize = %d, want %d", MaxFileSize, want)
	}
}
