package ssfs

import (
	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/layout"
	"github.com/ssfs/ssfs/ssfserrors"
)

// dataAllocator adapts a Handle's bitmap and device into the narrow
// addressing.Allocator capability: find a free sector, zero it on disk,
// mark it used. It satisfies addressing.Allocator.
type dataAllocator struct {
	h *Handle
}

func (a dataAllocator) AllocateDataBlock() (uint32, error) {
	return a.h.allocateDataBlock()
}

// allocateDataBlock finds the lowest-numbered free sector, zero-fills it
// on disk (every sector SSFS hands out starts zeroed, matching the
// zero-on-free invariant from the other direction) and marks it used in
// the bitmap.
func (h *Handle) allocateDataBlock() (uint32, error) {
	first := h.bitmap.FirstFree(0)
	// The bitmap is sized in whole bytes, so it can hold bits past the
	// last sector; those are not sectors to hand out.
	if first < 0 || uint32(first) >= h.sb.NumBlocks {
		return 0, ssfserrors.New(ssfserrors.NoSpace, "allocateDataBlock", nil)
	}
	sector := uint32(first)
	zero := make([]byte, device.SectorSize)
	if err := h.dev.WriteSector(sector, zero); err != nil {
		return 0, err
	}
	if err := h.bitmap.Set(sector); err != nil {
		return 0, err
	}
	return sector, nil
}

// freeDataBlock zeroes sector on disk and clears its bitmap bit. A sector
// of 0 is the "not allocated" sentinel and is skipped, so callers can pass
// empty pointer slots straight through.
func (h *Handle) freeDataBlock(sector uint32) error {
	if sector == 0 {
		return nil
	}
	zero := make([]byte, device.SectorSize)
	if err := h.dev.WriteSector(sector, zero); err != nil {
		return err
	}
	return h.bitmap.Clear(sector)
}

// freeIndirect frees every data sector an indirect block points to, then
// the indirect block itself. It is a no-op if sector is 0 (no indirect
// block was ever allocated).
func (h *Handle) freeIndirect(sector uint32) error {
	if sector == 0 {
		return nil
	}
	entries, err := readPointerBlockSafe(h.dev, sector)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := h.freeDataBlock(e); err != nil {
			return err
		}
	}
	return h.freeDataBlock(sector)
}

// freeDoubleIndirect frees every inner indirect block a double-indirect
// block points to (via freeIndirect, which frees their data sectors
// too), then the double-indirect block itself.
func (h *Handle) freeDoubleIndirect(sector uint32) error {
	if sector == 0 {
		return nil
	}
	outer, err := readPointerBlockSafe(h.dev, sector)
	if err != nil {
		return err
	}
	for _, ip := range outer {
		if err := h.freeIndirect(ip); err != nil {
			return err
		}
	}
	return h.freeDataBlock(sector)
}

// freeInodeGraph releases every sector reachable from inode: its direct
// blocks, its indirect block and the data it points to, and its
// double-indirect block and everything beneath it. Used by delete().
func (h *Handle) freeInodeGraph(in layout.Inode) error {
	for _, d := range in.Direct {
		if err := h.freeDataBlock(d); err != nil {
			return err
		}
	}
	if err := h.freeIndirect(in.Indirect1); err != nil {
		return err
	}
	return h.freeDoubleIndirect(in.Indirect2)
}
