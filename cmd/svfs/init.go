package main

import (
	"fmt"

	"github.com/slackvfs/svfs"
	"github.com/slackvfs/svfs/config"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var blockSize uint64
	var symbolSize uint16
	var redundancy float32

	cmd := &cobra.Command{
		Use:   "init <host_dir>",
		Short: "Initialize a hidden tree under host_dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("New passphrase: ")
			if err != nil {
				return err
			}
			cfg := config.New(blockSize, symbolSize, redundancy)
			if _, err := svfs.Create(args[0], password, cfg); err != nil {
				return err
			}
			fmt.Println("initialized")
			return nil
		},
	}

	cmd.Flags().Uint64Var(&blockSize, "block_size", config.DefaultBlockSize, "filesystem block size")
	cmd.Flags().Uint16Var(&symbolSize, "symbol_size", config.DefaultSymbolSize, "erasure-coded symbol size")
	cmd.Flags().Float32Var(&redundancy, "redundancy", config.DefaultRedundancyRatio, "repair/source symbol ratio")
	return cmd
}
