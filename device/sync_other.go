//go:build !linux

package device

import "os"

// syncFile falls back to the portable *os.File.Sync on platforms without
// a data-only fdatasync syscall.
func syncFile(f *os.File) error {
	return f.Sync()
}
