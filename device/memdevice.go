package device

import (
	"fmt"

	"github.com/ssfs/ssfs/ssfserrors"
)

// MemDevice is an in-memory Device, grounded on the teacher repository's
// testhelper.FileImpl stub-file pattern: a fake backing store that lets
// engine tests exercise every read/write/sync path without touching the
// filesystem. Mount and format accept any Device, so tests construct a
// MemDevice directly instead of going through Open.
type MemDevice struct {
	sectors [][]byte
	closed  bool
}

// NewMemDevice returns a zero-filled in-memory device of the given
// sector count.
func NewMemDevice(sectors uint32) *MemDevice {
	s := make([][]byte, sectors)
	for i := range s {
		s[i] = make([]byte, SectorSize)
	}
	return &MemDevice{sectors: s}
}

func (m *MemDevice) SizeInSectors() uint32 { return uint32(len(m.sectors)) }

func (m *MemDevice) ReadSector(sector uint32, buf []byte) error {
	if m.closed {
		return ssfserrors.New(ssfserrors.IO, "memdevice.ReadSector", fmt.Errorf("device closed"))
	}
	if sector >= uint32(len(m.sectors)) {
		return ssfserrors.New(ssfserrors.OutOfRange, "memdevice.ReadSector", fmt.Errorf("sector %d out of range", sector))
	}
	if len(buf) != SectorSize {
		return ssfserrors.New(ssfserrors.IO, "memdevice.ReadSector", fmt.Errorf("buffer must be %d bytes", SectorSize))
	}
	copy(buf, m.sectors[sector])
	return nil
}

func (m *MemDevice) WriteSector(sector uint32, buf []byte) error {
	if m.closed {
		return ssfserrors.New(ssfserrors.IO, "memdevice.WriteSector", fmt.Errorf("device closed"))
	}
	if sector >= uint32(len(m.sectors)) {
		return ssfserrors.New(ssfserrors.OutOfRange, "memdevice.WriteSector", fmt.Errorf("sector %d out of range", sector))
	}
	if len(buf) != SectorSize {
		return ssfserrors.New(ssfserrors.IO, "memdevice.WriteSector", fmt.Errorf("buffer must be %d bytes", SectorSize))
	}
	copy(m.sectors[sector], buf)
	return nil
}

func (m *MemDevice) Sync() error { return nil }

func (m *MemDevice) Close() error {
	m.closed = true
	return nil
}
