package ssfs

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/layout"
	"github.com/ssfs/ssfs/ssfserrors"
)

// Stat reports the metadata the specification exposes for inode number:
// whether it is in use, and its current size in bytes.
type Stat struct {
	Valid bool
	Size  uint32
}

// numInodes is the total number of inode slots the mounted volume
// provides.
func (h *Handle) numInodes() uint32 {
	return h.sb.NumInodeBlocks * layout.InodesPerBlock
}

func inodeLocation(number uint32) (sector uint32, slot uint32) {
	return number / layout.InodesPerBlock, number % layout.InodesPerBlock
}

func (h *Handle) readInode(number uint32) (layout.Inode, error) {
	if number >= h.numInodes() {
		return layout.Inode{}, ssfserrors.New(ssfserrors.InvalidInode, "readInode", fmt.Errorf("inode %d >= %d", number, h.numInodes()))
	}
	sectorOffset, slot := inodeLocation(number)
	buf := make([]byte, device.SectorSize)
	if err := h.dev.ReadSector(1+sectorOffset, buf); err != nil {
		return layout.Inode{}, err
	}
	inodes, err := layout.DecodeInodesBlock(buf)
	if err != nil {
		return layout.Inode{}, ssfserrors.New(ssfserrors.IO, "readInode", err)
	}
	return inodes[slot], nil
}

func (h *Handle) writeInode(number uint32, in layout.Inode) error {
	if number >= h.numInodes() {
		return ssfserrors.New(ssfserrors.InvalidInode, "writeInode", fmt.Errorf("inode %d >= %d", number, h.numInodes()))
	}
	sectorOffset, slot := inodeLocation(number)
	buf := make([]byte, device.SectorSize)
	if err := h.dev.ReadSector(1+sectorOffset, buf); err != nil {
		return err
	}
	inodes, err := layout.DecodeInodesBlock(buf)
	if err != nil {
		return ssfserrors.New(ssfserrors.IO, "writeInode", err)
	}
	inodes[slot] = in
	return h.dev.WriteSector(1+sectorOffset, layout.EncodeInodesBlock(inodes))
}

// Create finds the first unused inode slot, marks it valid with size 0
// and no allocated data blocks, and returns its number.
func (h *Handle) Create() (uint32, error) {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != h {
		return 0, ssfserrors.New(ssfserrors.NotMounted, "Create", nil)
	}

	for number := uint32(0); number < h.numInodes(); number++ {
		in, err := h.readInode(number)
		if err != nil {
			return 0, err
		}
		if in.IsValid() {
			continue
		}
		in = layout.Inode{Valid: 1}
		if err := h.writeInode(number, in); err != nil {
			return 0, err
		}
		if err := h.dev.Sync(); err != nil {
			return 0, err
		}
		h.log.WithFields(logrus.Fields{"op": "Create", "inode": number}).Debug("created inode")
		return number, nil
	}
	return 0, ssfserrors.New(ssfserrors.NoSpace, "Create", fmt.Errorf("no free inode slots"))
}

// Delete frees every data, indirect and double-indirect sector owned by
// inode number, then marks the slot unused.
func (h *Handle) Delete(number uint32) error {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != h {
		return ssfserrors.New(ssfserrors.NotMounted, "Delete", nil)
	}

	in, err := h.readInode(number)
	if err != nil {
		return err
	}
	if !in.IsValid() {
		return ssfserrors.New(ssfserrors.Unused, "Delete", nil)
	}

	if err := h.freeInodeGraph(in); err != nil {
		return err
	}
	if err := h.writeInode(number, layout.Inode{}); err != nil {
		return err
	}
	if err := h.dev.Sync(); err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{"op": "Delete", "inode": number}).Debug("deleted inode")
	return nil
}

// StatInode reports inode number's current size, failing with Unused if
// the inode is not currently in use.
func (h *Handle) StatInode(number uint32) (Stat, error) {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != h {
		return Stat{}, ssfserrors.New(ssfserrors.NotMounted, "Stat", nil)
	}

	in, err := h.readInode(number)
	if err != nil {
		return Stat{}, err
	}
	if !in.IsValid() {
		return Stat{}, ssfserrors.New(ssfserrors.Unused, "Stat", nil)
	}
	return Stat{Valid: true, Size: in.Size}, nil
}
