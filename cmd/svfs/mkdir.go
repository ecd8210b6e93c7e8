package main

import (
	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <host_dir> <path>",
		Short: "Create a hidden directory",
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
			_, err = vfs.CreateDir(args[1])
			return err
		},
	}
}
