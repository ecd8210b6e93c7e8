package main

import (
	"os"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	var destFile string

	cmd := &cobra.Command{
		Use:   "read <host_dir> <path>",
		Short: "Read a hidden file's contents",
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
			data, err := vfs.ReadFile(args[1])
			if err != nil {
				return err
			}
			if destFile == "" || destFile == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(destFile, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&destFile, "to", "-", "local file to write (- for stdout)")
	return cmd
}
