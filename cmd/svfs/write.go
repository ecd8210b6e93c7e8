package main

import (
	"fmt"
	"io"
	"os"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newWriteCmd() *cobra.Command {
	var sourceFile string

	cmd := &cobra.Command{
		Use:   "write <host_dir> <path>",
		Short: "Write a local file's contents into a hidden file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Passphrase: ")
			if err != nil {
				return err
			}
			var data []byte
			if sourceFile == "" || sourceFile == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(sourceFile)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			vfs, err := svfs.Mount(args[0], password)
			if err != nil {
				return err
			}
			if _, err := vfs.CreateFile(args[1], data); err != nil {
				return err
			}
			fmt.Println("wrote", len(data), "bytes")
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFile, "from", "-", "local file to read (- for stdin)")
	return cmd
}
