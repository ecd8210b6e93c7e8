package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newWipeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "wipe <host_dir>",
		Short: "Destroy the hidden tree and restore host files to their logical sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Fprintf(os.Stderr, "this will overwrite all slack space under %s. continue? [y/N] ", args[0])
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if strings.ToLower(strings.TrimSpace(line)) != "y" {
					fmt.Println("aborted")
					return nil
				}
			}
			password, err := readPassword("Passphrase: ")
			if err != nil {
				return err
			}
			vfs, err := svfs.Mount(args[0], password)
			if err != nil {
				return err
			}
			if err := vfs.Wipe(); err != nil {
				return err
			}
			fmt.Println("wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")
	return cmd
}
