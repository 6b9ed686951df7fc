package addressing

import (
	"testing"

	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/layout"
	"github.com/ssfs/ssfs/ssfserrors"
)

// bumpAllocator is a minimal Allocator for tests: it just hands out the
// next sector number in sequence, high enough to stay clear of system
// sectors.
type bumpAllocator struct {
	next uint32
}

func (a *bumpAllocator) AllocateDataBlock() (uint32, error) {
	s := a.next
	a.next++
	return s, nil
}

func TestResolveDirect(t *testing.T) {
	dev := device.NewMemDevice(300)
	in := layout.Inode{Direct: [layout.DirectPointers]uint32{10, 0, 12, 0}}

	got, err := Resolve(dev, in, 0)
	if err != nil || got != 10 {
		t.Fatalf("Resolve(0) = (%d, %v), want (10, nil)", got, err)
	}
	got, err = Resolve(dev, in, 1)
	if err != nil || got != 0 {
		t.Fatalf("Resolve(1) = (%d, %v), want (0, nil) for a hole", got, err)
	}
}

func TestResolveOutOfRange(t *testing.T) {
	dev := device.NewMemDevice(300)
	in := layout.Inode{}
	if _, err := Resolve(dev, in, layout.MaxFileBlocks); !ssfserrors.Is(err, ssfserrors.OutOfRange) {
		t.Fatalf("Resolve(MaxFileBlocks) error = %v, want OutOfRange", err)
	}
}

func TestSetPointerDirect(t *testing.T) {
	dev := device.NewMemDevice(300)
	alloc := &bumpAllocator{next: 10}
	var in layout.Inode

	if err := SetPointer(dev, alloc, &in, 2, 42); err != nil {
		t.Fatalf("SetPointer() error = %v", err)
	}
	if in.Direct[2] != 42 {
		t.Fatalf("Direct[2] = %d, want 42", in.Direct[2])
	}
}

func TestSetPointerAllocatesIndirect(t *testing.T) {
	dev := device.NewMemDevice(300)
	alloc := &bumpAllocator{next: 10}
	var in layout.Inode

	if err := SetPointer(dev, alloc, &in, 4, 100); err != nil {
		t.Fatalf("SetPointer(L=4) error = %v", err)
	}
	if in.Indirect1 == 0 {
		t.Fatalf("Indirect1 = 0, want allocated")
	}

	got, err := Resolve(dev, in, 4)
	if err != nil {
		t.Fatalf("Resolve(4) error = %v", err)
	}
	if got != 100 {
		t.Fatalf("Resolve(4) = %d, want 100", got)
	}
}

func TestSetPointerAllocatesDoubleIndirect(t *testing.T) {
	dev := device.NewMemDevice(400)
	alloc := &bumpAllocator{next: 10}
	var in layout.Inode

	l := uint32(layout.MaxDirectBlocks + layout.MaxIndirectBlocks) // first double-indirect logical block
	if err := SetPointer(dev, alloc, &in, l, 200); err != nil {
		t.Fatalf("SetPointer(L=%d) error = %v", l, err)
	}
	if in.Indirect2 == 0 {
		t.Fatalf("Indirect2 = 0, want allocated")
	}

	got, err := Resolve(dev, in, l)
	if err != nil {
		t.Fatalf("Resolve(%d) error = %v", l, err)
	}
	if got != 200 {
		t.Fatalf("Resolve(%d) = %d, want 200", l, got)
	}
}

func TestEnumerateBlocksOrderAndCapacity(t *testing.T) {
	dev := device.NewMemDevice(300)
	alloc := &bumpAllocator{next: 50}
	var in layout.Inode

	for _, l := range []uint32{0, 1, 4, 5} {
		if err := SetPointer(dev, alloc, &in, l, 1000+l); err != nil {
			t.Fatalf("SetPointer(%d) error = %v", l, err)
		}
	}

	out, err := EnumerateBlocks(dev, in, 100, nil)
	if err != nil {
		t.Fatalf("EnumerateBlocks() error = %v", err)
	}
	want := []uint32{1000, 1001, 1004, 1005}
	if len(out) != len(want) {
		t.Fatalf("EnumerateBlocks() = %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("EnumerateBlocks()[%d] = %d, want %d", i, out[i], want[i])
		}
	}

	limited, err := EnumerateBlocks(dev, in, 2, nil)
	if err != nil {
		t.Fatalf("EnumerateBlocks(capacity=2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("EnumerateBlocks(capacity=2) = %v, want length 2", limited)
	}
}
