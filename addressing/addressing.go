// Package addressing translates between a file's logical block index and
// the physical sector that stores it, walking the direct / single-
// indirect / double-indirect pointer graph described in the
// specification. It never decides which physical sector to allocate —
// that is the allocation bitmap's job — it only reads and rewrites
// pointers once a sector has been chosen.
package addressing

import (
	"fmt"

	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/layout"
	"github.com/ssfs/ssfs/ssfserrors"
)

// Allocator hands out a fresh, zeroed data sector. The engine's
// allocation bitmap implements it; addressing only depends on this
// narrow capability so it stays ignorant of bitmap bookkeeping.
type Allocator interface {
	AllocateDataBlock() (uint32, error)
}

// Resolve returns the physical sector storing logical block L of inode,
// or 0 if that level of the addressing graph is absent (a hole). Resolve
// never allocates.
func Resolve(dev device.Device, inode layout.Inode, l uint32) (uint32, error) {
	switch {
	case l < layout.MaxDirectBlocks:
		return inode.Direct[l], nil
	case l < layout.MaxDirectBlocks+layout.MaxIndirectBlocks:
		if inode.Indirect1 == 0 {
			return 0, nil
		}
		entries, err := readPointerBlock(dev, inode.Indirect1)
		if err != nil {
			return 0, err
		}
		return entries[l-layout.MaxDirectBlocks], nil
	case l < layout.MaxFileBlocks:
		if inode.Indirect2 == 0 {
			return 0, nil
		}
		lPrime := l - layout.MaxDirectBlocks - layout.MaxIndirectBlocks
		outer, inner := lPrime/layout.PointersPerBlock, lPrime%layout.PointersPerBlock
		outerEntries, err := readPointerBlock(dev, inode.Indirect2)
		if err != nil {
			return 0, err
		}
		ip := outerEntries[outer]
		if ip == 0 {
			return 0, nil
		}
		innerEntries, err := readPointerBlock(dev, ip)
		if err != nil {
			return 0, err
		}
		return innerEntries[inner], nil
	default:
		return 0, ssfserrors.New(ssfserrors.OutOfRange, "addressing.Resolve", fmt.Errorf("logical block %d beyond max file size", l))
	}
}

// SetPointer installs phys as the physical sector for logical block l of
// inode, allocating and wiring up any missing intermediate indirect or
// double-indirect block first. It mutates inode in place; the caller
// persists the inode sector afterward.
func SetPointer(dev device.Device, alloc Allocator, inode *layout.Inode, l uint32, phys uint32) error {
	switch {
	case l < layout.MaxDirectBlocks:
		inode.Direct[l] = phys
		return nil
	case l < layout.MaxDirectBlocks+layout.MaxIndirectBlocks:
		if inode.Indirect1 == 0 {
			sector, err := alloc.AllocateDataBlock()
			if err != nil {
				return err
			}
			inode.Indirect1 = sector
		}
		entries, err := readPointerBlock(dev, inode.Indirect1)
		if err != nil {
			return err
		}
		entries[l-layout.MaxDirectBlocks] = phys
		return writePointerBlock(dev, inode.Indirect1, entries)
	case l < layout.MaxFileBlocks:
		if inode.Indirect2 == 0 {
			sector, err := alloc.AllocateDataBlock()
			if err != nil {
				return err
			}
			inode.Indirect2 = sector
		}
		outerEntries, err := readPointerBlock(dev, inode.Indirect2)
		if err != nil {
			return err
		}
		lPrime := l - layout.MaxDirectBlocks - layout.MaxIndirectBlocks
		outer, inner := lPrime/layout.PointersPerBlock, lPrime%layout.PointersPerBlock
		if outerEntries[outer] == 0 {
			sector, err := alloc.AllocateDataBlock()
			if err != nil {
				return err
			}
			outerEntries[outer] = sector
			if err := writePointerBlock(dev, inode.Indirect2, outerEntries); err != nil {
				return err
			}
		}
		innerEntries, err := readPointerBlock(dev, outerEntries[outer])
		if err != nil {
			return err
		}
		innerEntries[inner] = phys
		return writePointerBlock(dev, outerEntries[outer], innerEntries)
	default:
		return ssfserrors.New(ssfserrors.OutOfRange, "addressing.SetPointer", fmt.Errorf("logical block %d beyond max file size", l))
	}
}

// EnumerateBlocks appends every non-zero physical sector reachable from
// inode's addressing graph to out, in direct/indirect/double-indirect
// order, stopping once len(out) would exceed capacity. It returns the
// final slice.
func EnumerateBlocks(dev device.Device, inode layout.Inode, capacity int, out []uint32) ([]uint32, error) {
	appendIfRoom := func(s uint32) bool {
		if s == 0 {
			return true
		}
		if len(out) >= capacity {
			return false
		}
		out = append(out, s)
		return true
	}

	for _, d := range inode.Direct {
		if !appendIfRoom(d) {
			return out, nil
		}
	}

	if inode.Indirect1 != 0 {
		entries, err := readPointerBlock(dev, inode.Indirect1)
		if err != nil {
			return out, err
		}
		for _, e := range entries {
			if !appendIfRoom(e) {
				return out, nil
			}
		}
	}

	if inode.Indirect2 != 0 {
		outerEntries, err := readPointerBlock(dev, inode.Indirect2)
		if err != nil {
			return out, err
		}
		for _, ip := range outerEntries {
			if ip == 0 {
				continue
			}
			innerEntries, err := readPointerBlock(dev, ip)
			if err != nil {
				return out, err
			}
			for _, e := range innerEntries {
				if !appendIfRoom(e) {
					return out, nil
				}
			}
		}
	}

	return out, nil
}

func readPointerBlock(dev device.Device, sector uint32) ([layout.PointersPerBlock]uint32, error) {
	buf := make([]byte, device.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return [layout.PointersPerBlock]uint32{}, err
	}
	return layout.DecodePointerBlock(buf)
}

func writePointerBlock(dev device.Device, sector uint32, entries [layout.PointersPerBlock]uint32) error {
	return dev.WriteSector(sector, layout.EncodePointerBlock(entries))
}
