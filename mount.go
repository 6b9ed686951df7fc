// Package ssfs implements the SSFS file-system engine: a flat,
// unnamed-file, inode-addressed block file system over a virtual disk
// (device.Device). It exposes the eight primitive operations from the
// specification — Format, Mount, (*Handle).Unmount, Create, Delete,
// StatInode, Read, Write — and nothing else: no paths, no directories, no
// permissions.
//
// The control-flow shape (check mount state, consult the superblock
// through the codec, resolve blocks through addressing, read/write
// through the device, update the bitmap on structural change) is
// grounded on the teacher repository's disk.Disk / filesystem.FileSystem
// split, collapsed into one package because SSFS has exactly one
// filesystem shape to support.
package ssfs

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ssfs/ssfs/bitmap"
	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/layout"
	"github.com/ssfs/ssfs/ssfserrors"
)

// Handle is the process's single active mount. Its lifetime spans one
// Mount...Unmount pair; all three resources it owns (the open
// device, the superblock snapshot, the allocation bitmap) are released
// together on Unmount or on any Mount failure.
type Handle struct {
	dev    device.Device
	sb     layout.Superblock
	bitmap *bitmap.Bitmap
	log    *logrus.Logger
}

var (
	mountMu      sync.Mutex
	currentMount *Handle
)

// minRequestedInodes is the floor format() clamps requestedInodes to.
const minRequestedInodes = 1

// Format lays out a fresh SSFS volume on the device at path: zeroes
// every sector, then writes a superblock sized to hold at least
// requestedInodes inodes. It must be called with no disk mounted.
func Format(path string, requestedInodes int, log *logrus.Logger) error {
	dev, err := device.Open(path)
	if err != nil {
		return wrapOp("Format", err)
	}
	defer dev.Close()
	return FormatDevice(dev, requestedInodes, log)
}

// FormatDevice is Format against an already-open device, the injection
// point the specification calls for (spec.md §9: "an in-memory device is
// essential for testability") — tests format a device.MemDevice directly
// without touching the filesystem.
func FormatDevice(dev device.Device, requestedInodes int, log *logrus.Logger) error {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != nil {
		return ssfserrors.New(ssfserrors.AlreadyMounted, "Format", nil)
	}
	log = orDefaultLogger(log)

	if requestedInodes < minRequestedInodes {
		requestedInodes = minRequestedInodes
	}
	inodeBlocks := ceilDiv(uint32(requestedInodes), layout.InodesPerBlock)

	n := dev.SizeInSectors()
	if n < inodeBlocks+2 {
		log.WithFields(logrus.Fields{"op": "Format", "sectors": n, "need": inodeBlocks + 2}).
			Warn("disk too small to format")
		return ssfserrors.New(ssfserrors.NoSpace, "Format", fmt.Errorf("disk has %d sectors, need at least %d", n, inodeBlocks+2))
	}

	zero := make([]byte, device.SectorSize)
	for s := uint32(0); s < n; s++ {
		if err := dev.WriteSector(s, zero); err != nil {
			return wrapOp("Format", err)
		}
	}

	sb := layout.Superblock{NumBlocks: n, NumInodeBlocks: inodeBlocks, BlockSize: device.SectorSize}
	if err := dev.WriteSector(0, layout.EncodeSuperblock(sb)); err != nil {
		return wrapOp("Format", err)
	}
	if err := dev.Sync(); err != nil {
		return wrapOp("Format", err)
	}

	log.WithFields(logrus.Fields{"op": "Format", "sectors": n, "inode_blocks": inodeBlocks}).Debug("formatted volume")
	return nil
}

// Mount opens the device at path, validates its superblock, rebuilds the
// allocation bitmap by walking every valid inode's addressing graph, and
// installs the result as the process's single active mount.
func Mount(path string, log *logrus.Logger) (*Handle, error) {
	dev, err := device.Open(path)
	if err != nil {
		return nil, wrapOp("Mount", err)
	}
	h, err := MountDevice(dev, log)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return h, nil
}

// MountDevice is Mount against an already-open device; see FormatDevice
// for why this injection point exists.
func MountDevice(dev device.Device, log *logrus.Logger) (*Handle, error) {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != nil {
		return nil, ssfserrors.New(ssfserrors.AlreadyMounted, "Mount", nil)
	}
	log = orDefaultLogger(log)

	buf := make([]byte, device.SectorSize)
	if err := dev.ReadSector(0, buf); err != nil {
		return nil, wrapOp("Mount", err)
	}
	sb, magic, err := layout.DecodeSuperblock(buf)
	if err != nil {
		return nil, ssfserrors.New(ssfserrors.IO, "Mount", err)
	}
	if !layout.ValidMagic(magic) {
		return nil, ssfserrors.New(ssfserrors.BadMagic, "Mount", nil)
	}

	bm := bitmap.New(sb.NumBlocks)
	systemSectors := 1 + sb.NumInodeBlocks
	for s := uint32(0); s < systemSectors && s < sb.NumBlocks; s++ {
		_ = bm.Set(s)
	}

	h := &Handle{dev: dev, sb: sb, bitmap: bm, log: log}
	if err := h.rebuildBitmapFromInodes(); err != nil {
		return nil, wrapOp("Mount", err)
	}

	currentMount = h
	log.WithFields(logrus.Fields{"op": "Mount", "sectors": sb.NumBlocks, "inode_blocks": sb.NumInodeBlocks}).Debug("mounted volume")
	return h, nil
}

// Unmount closes the device and discards the bitmap, returning the
// process to the unmounted state.
func (h *Handle) Unmount() error {
	mountMu.Lock()
	defer mountMu.Unlock()
	if currentMount != h {
		return ssfserrors.New(ssfserrors.NotMounted, "Unmount", nil)
	}
	err := h.dev.Close()
	currentMount = nil
	h.log.WithField("op", "Unmount").Debug("unmounted volume")
	if err != nil {
		return ssfserrors.New(ssfserrors.IO, "Unmount", err)
	}
	return nil
}

// rebuildBitmapFromInodes walks every valid inode's addressing graph,
// marking each reachable sector in use. It tracks visited indirect and
// double-indirect sectors per inode so a malformed disk with a repeated
// pointer cannot send the walk into a loop (spec §9's cycle note): a
// sector already visited within the same inode's graph is treated as a
// hole and skipped rather than re-descended into.
func (h *Handle) rebuildBitmapFromInodes() error {
	for sector := uint32(0); sector < h.sb.NumInodeBlocks; sector++ {
		buf := make([]byte, device.SectorSize)
		if err := h.dev.ReadSector(1+sector, buf); err != nil {
			return err
		}
		inodes, err := layout.DecodeInodesBlock(buf)
		if err != nil {
			return err
		}
		for _, in := range inodes {
			if !in.IsValid() {
				continue
			}
			if err := h.markInodeGraph(in); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handle) markInodeGraph(in layout.Inode) error {
	visited := map[uint32]bool{}
	mark := func(s uint32) {
		if s != 0 {
			_ = h.bitmap.Set(s)
		}
	}
	for _, d := range in.Direct {
		mark(d)
	}
	if in.Indirect1 != 0 && !visited[in.Indirect1] {
		visited[in.Indirect1] = true
		mark(in.Indirect1)
		entries, err := readPointerBlockSafe(h.dev, in.Indirect1)
		if err != nil {
			return err
		}
		for _, e := range entries {
			mark(e)
		}
	}
	if in.Indirect2 != 0 && !visited[in.Indirect2] {
		visited[in.Indirect2] = true
		mark(in.Indirect2)
		outer, err := readPointerBlockSafe(h.dev, in.Indirect2)
		if err != nil {
			return err
		}
		for _, ip := range outer {
			if ip == 0 || visited[ip] {
				continue
			}
			visited[ip] = true
			mark(ip)
			inner, err := readPointerBlockSafe(h.dev, ip)
			if err != nil {
				return err
			}
			for _, e := range inner {
				mark(e)
			}
		}
	}
	return nil
}

func readPointerBlockSafe(dev device.Device, sector uint32) ([layout.PointersPerBlock]uint32, error) {
	buf := make([]byte, device.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return [layout.PointersPerBlock]uint32{}, err
	}
	return layout.DecodePointerBlock(buf)
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

func orDefaultLogger(log *logrus.Logger) *logrus.Logger {
	if log != nil {
		return log
	}
	return logrus.StandardLogger()
}

func wrapOp(op string, err error) error {
	if se, ok := err.(*ssfserrors.Error); ok {
		return se
	}
	return ssfserrors.New(ssfserrors.IO, op, err)
}
