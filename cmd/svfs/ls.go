package main

import (
	"fmt"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <host_dir> <path>",
		Short: "List a hidden directory's contents",
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
			entries, err := vfs.ListDir(args[1])
			if err != nil {
				return err
			}
			for _, entry := range entries {
				kind := "f"
				if entry.IsDir {
					kind = "d"
				}
				fmt.Printf("%s\t%d\t%s\n", kind, entry.Size, entry.Name)
			}
			return nil
		},
	}
}
