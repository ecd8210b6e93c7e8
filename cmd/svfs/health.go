package main

import (
	"fmt"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health <host_dir>",
		Short: "Check recoverability of hidden files against current host availability",
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
			report := vfs.HealthCheck()
			fmt.Printf("files:       %d\n", report.TotalFiles)
			fmt.Printf("recoverable: %d\n", report.RecoverableFiles)
			for _, d := range report.Damaged {
				fmt.Printf("  damaged: %s (%.1f%% symbols lost)\n", d.Name, d.LossPercent)
			}
			return nil
		},
	}
}
