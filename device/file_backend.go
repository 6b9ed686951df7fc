package device

import (
	"fmt"
	"os"

	"github.com/ssfs/ssfs/ssfserrors"
)

// CreateImage ensures a host file exists at path and is exactly
// sectors*SectorSize bytes long, creating it if absent and truncating it
// (growing or shrinking) otherwise. The CLI's format command calls this
// (when --sectors is given) before Format opens the device for the
// zero-fill and superblock-write pass; it is the
// equivalent of the teacher's CreateFromPath truncate step, minus the
// O_EXCL requirement that a brand new disk image must not already exist
// — SSFS's format is explicitly allowed to overwrite an existing image.
func CreateImage(path string, sectors uint32) error {
	size := int64(sectors) * SectorSize
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return ssfserrors.New(ssfserrors.NoAccess, "device.CreateImage", err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		return ssfserrors.New(ssfserrors.IO, "device.CreateImage", fmt.Errorf("could not size image to %d bytes: %w", size, err))
	}
	return nil
}
