package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ssfs/ssfs"
	"github.com/ssfs/ssfs/ssfserrors"
)

// shellCmd is the one-process script driver: SSFS's mount state lives in
// memory for the lifetime of one Handle, so every operation after mount
// must run inside the same process. This REPL mounts once, then dispatches
// one line at a time, matching the specification's §6's "test harnesses
// and script modes" external collaborator.
var shellCmd = &cobra.Command{
	Use:   "shell <path>",
	Short: "mount a disk image and run commands against it interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := ssfs.Mount(args[0], log)
		if err != nil {
			return err
		}
		defer func() {
			if err := h.Unmount(); err != nil {
				color.Yellow("unmount: %v", err)
			}
		}()

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("ssfs shell; commands: create, stat <n>, delete <n>, read <n> <len> <offset>, write <n> <hex> <offset>, exit")
		for {
			fmt.Print("ssfs> ")
			if !scanner.Scan() {
				return nil
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			fields := strings.Fields(line)
			switch fields[0] {
			case "exit", "quit":
				return nil
			default:
				if err := runShellCommand(h, fields); err != nil {
					color.Red("error: %v", err)
				}
			}
		}
	},
}

func runShellCommand(h *ssfs.Handle, fields []string) error {
	switch fields[0] {
	case "create":
		n, err := h.Create()
		if err != nil {
			return err
		}
		color.Green("created inode %d", n)
		return nil

	case "delete":
		n, err := parseInodeArg(fields)
		if err != nil {
			return err
		}
		if err := h.Delete(n); err != nil {
			return err
		}
		color.Green("deleted inode %d", n)
		return nil

	case "stat":
		n, err := parseInodeArg(fields)
		if err != nil {
			return err
		}
		st, err := h.StatInode(n)
		if ssfserrors.Is(err, ssfserrors.Unused) {
			color.Yellow("inode %d is unused", n)
			return nil
		}
		if err != nil {
			return err
		}
		color.Green("inode %d: size=%d", n, st.Size)
		return nil

	case "read":
		if len(fields) != 4 {
			return fmt.Errorf("usage: read <n> <len> <offset>")
		}
		n, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		length, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		offset, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return err
		}
		out, err := h.Read(uint32(n), offset, length)
		if err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(out))
		return nil

	case "write":
		if len(fields) != 4 {
			return fmt.Errorf("usage: write <n> <hex-bytes> <offset>")
		}
		n, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		data, err := hex.DecodeString(fields[2])
		if err != nil {
			return fmt.Errorf("data must be hex-encoded: %w", err)
		}
		offset, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return err
		}
		n2, err := h.Write(uint32(n), offset, data)
		if err != nil {
			return err
		}
		color.Green("wrote %d bytes", n2)
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseInodeArg(fields []string) (uint32, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("usage: %s <n>", fields[0])
	}
	n, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
