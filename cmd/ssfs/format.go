package main

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ssfs/ssfs"
	"github.com/ssfs/ssfs/device"
)

var flagFormatSectors uint32

var formatCmd = &cobra.Command{
	Use:   "format <path> <inodes>",
	Short: "create and format a new SSFS disk image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		inodes, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		if flagFormatSectors > 0 {
			if err := device.CreateImage(path, flagFormatSectors); err != nil {
				return err
			}
		}

		if err := ssfs.Format(path, inodes, log); err != nil {
			return err
		}
		color.Green("formatted %s with %d inodes", path, inodes)
		return nil
	},
}

func init() {
	formatCmd.Flags().Uint32Var(&flagFormatSectors, "sectors", 0, "create the image with this many sectors before formatting (0 = use the existing file)")
}
