package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssfs/ssfs/device"
	"github.com/ssfs/ssfs/util"
)

// dumpCmd inspects raw disk bytes directly through the device adapter,
// bypassing the engine's mount state machine entirely: it is a read-only
// debug aid, not one of the eight primitive operations, so it must not
// contend with an active mount for the single allowed handle.
var flagDumpDiff string

var dumpCmd = &cobra.Command{
	Use:   "dump <path> <sector>",
	Short: "hex-dump one raw sector of a disk image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sector, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return err
		}

		buf, err := readRawSector(args[0], uint32(sector))
		if err != nil {
			return err
		}

		if flagDumpDiff == "" {
			fmt.Print(util.DumpByteSlice(buf, 16, true, true, false, nil))
			return nil
		}

		other, err := readRawSector(flagDumpDiff, uint32(sector))
		if err != nil {
			return err
		}
		different, out := util.DumpByteSlicesWithDiffs(buf, other, 16, true, true, false)
		if !different {
			fmt.Printf("sector %d is identical on both images\n", sector)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&flagDumpDiff, "diff", "", "compare the same sector against a second disk image")
}

func readRawSector(path string, sector uint32) ([]byte, error) {
	dev, err := device.Open(path)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	if sector >= dev.SizeInSectors() {
		return nil, fmt.Errorf("sector %d is beyond the disk's %d sectors", sector, dev.SizeInSectors())
	}

	buf := make([]byte, device.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
