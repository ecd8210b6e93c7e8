package main

import (
	"fmt"

	"github.com/slackvfs/svfs"
	"github.com/spf13/cobra"
)

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <host_dir>",
		Short: "Change the passphrase protecting a hidden tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPassword, err := readPassword("Current passphrase: ")
			if err != nil {
				return err
			}
			vfs, err := svfs.Mount(args[0], oldPassword)
			if err != nil {
				return err
			}
			newPassword, err := readPassword("New passphrase: ")
			if err != nil {
				return err
			}
			if err := vfs.ChangePassword(oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Println("passphrase changed")
			return nil
		},
	}
}
