package main

import (
	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <host_dir> <path>",
		Short: "Remove a hidden file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Passphrase: ")
			if err != nil {
				return err
			}
			vfs, err := svfs.Mount(args[0], password)
			if err != nil {
				return err
			}
			return vfs.DeleteFile(args[1])
		},
	}
}
