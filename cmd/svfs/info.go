package main

import (
	"fmt"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <host_dir>",
		Short: "Print capacity and layout information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Passphrase: ")
			if err != nil {
				return err
			}
			vfs, err := svfs.Mount(args[0], password)
			if err != nil {
				return err
			}
			info := vfs.Info()
			fmt.Printf("hosts:      %d\n", info.HostCount)
			fmt.Printf("capacity:   %d bytes\n", info.TotalCapacity)
			fmt.Printf("used:       %d bytes\n", info.UsedCapacity)
			fmt.Printf("available:  %d bytes\n", info.AvailableCapacity)
			fmt.Printf("files:      %d\n", info.FileCount)
			fmt.Printf("dirs:       %d\n", info.DirCount)
			fmt.Printf("block size: %d\n", info.BlockSize)
			fmt.Printf("redundancy: %.2f\n", info.RedundancyRatio)
			return nil
		},
	}
}
