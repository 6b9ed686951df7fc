package ssfs

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ssfs/ssfs/addressing"
	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/layout"
	"github.com/ssfs/ssfs/ssfserrors"
)

// Read returns up to length bytes of inode number's content starting at
// offset. A request that runs past the inode's current size is silently
// truncated to what exists; a request starting at or beyond the current
// size returns an empty slice. Logical blocks the inode never allocated
// (sparse holes within [0, size)) read back as zero bytes.
func (h *Handle) Read(number uint32, offset int64, length int) ([]byte, error) {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != h {
		return nil, ssfserrors.New(ssfserrors.NotMounted, "Read", nil)
	}
	if offset < 0 || length < 0 {
		return nil, ssfserrors.New(ssfserrors.BadArgs, "Read", fmt.Errorf("offset=%d length=%d", offset, length))
	}

	in, err := h.readInode(number)
	if err != nil {
		return nil, err
	}
	if !in.IsValid() {
		return nil, ssfserrors.New(ssfserrors.Unused, "Read", nil)
	}

	size := int64(in.Size)
	if offset >= size {
		return []byte{}, nil
	}
	if remaining := size - offset; int64(length) > remaining {
		length = int(remaining)
	}

	out := make([]byte, length)
	sector := make([]byte, device.SectorSize)
	read := 0
	for read < length {
		pos := offset + int64(read)
		l := uint32(pos / device.SectorSize)
		within := int(pos % device.SectorSize)

		phys, err := addressing.Resolve(h.dev, in, l)
		if err != nil {
			return nil, err
		}
		if phys == 0 {
			for i := range sector {
				sector[i] = 0
			}
		} else if err := h.dev.ReadSector(phys, sector); err != nil {
			return nil, err
		}

		n := copy(out[read:], sector[within:])
		read += n
	}

	h.log.WithFields(logrus.Fields{"op": "Read", "inode": number, "offset": offset, "length": length}).Debug("read")
	return out, nil
}

// Write stores data into inode number starting at offset, extending the
// inode (allocating new data, indirect and double-indirect blocks as
// needed) if the write reaches past its current size, and returns the
// number of bytes of data written. The inode's recorded size only ever
// grows: writing within an existing region never shrinks it.
func (h *Handle) Write(number uint32, offset int64, data []byte) (int, error) {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != h {
		return 0, ssfserrors.New(ssfserrors.NotMounted, "Write", nil)
	}
	if offset < 0 {
		return 0, ssfserrors.New(ssfserrors.BadArgs, "Write", fmt.Errorf("offset=%d", offset))
	}
	if len(data) == 0 {
		return 0, nil
	}

	in, err := h.readInode(number)
	if err != nil {
		return 0, err
	}
	if !in.IsValid() {
		return 0, ssfserrors.New(ssfserrors.Unused, "Write", nil)
	}

	end := offset + int64(len(data))
	if uint64(end) > layout.MaxFileSize {
		return 0, ssfserrors.New(ssfserrors.OutOfRange, "Write", fmt.Errorf("write would end at byte %d, max file size is %d", end, layout.MaxFileSize))
	}

	alloc := dataAllocator{h: h}
	// A write starting past the current end first gives every whole block
	// between the old end and offset a fresh, zeroed data block.
	for l := ceilDiv(in.Size, device.SectorSize); int64(l) < offset/device.SectorSize; l++ {
		phys, err := alloc.AllocateDataBlock()
		if err != nil {
			return 0, err
		}
		if err := addressing.SetPointer(h.dev, alloc, &in, l, phys); err != nil {
			return 0, err
		}
	}

	sector := make([]byte, device.SectorSize)
	written := 0
	for written < len(data) {
		pos := offset + int64(written)
		l := uint32(pos / device.SectorSize)
		within := int(pos % device.SectorSize)

		phys, err := addressing.Resolve(h.dev, in, l)
		if err != nil {
			return written, err
		}
		if phys == 0 {
			phys, err = alloc.AllocateDataBlock()
			if err != nil {
				return written, err
			}
			if err := addressing.SetPointer(h.dev, alloc, &in, l, phys); err != nil {
				return written, err
			}
			for i := range sector {
				sector[i] = 0
			}
		} else if err := h.dev.ReadSector(phys, sector); err != nil {
			return written, err
		}

		n := copy(sector[within:], data[written:])
		if err := h.dev.WriteSector(phys, sector); err != nil {
			return written, err
		}
		if err := h.dev.Sync(); err != nil {
			return written, err
		}
		written += n
	}

	if uint32(end) > in.Size {
		in.Size = uint32(end)
	}
	if err := h.writeInode(number, in); err != nil {
		return written, err
	}
	if err := h.dev.Sync(); err != nil {
		return written, err
	}

	h.log.WithFields(logrus.Fields{"op": "Write", "inode": number, "offset": offset, "length": len(data)}).Debug("wrote")
	return written, nil
}
