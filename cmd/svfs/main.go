// Command svfs is the command-line front end over package svfs: the
// external collaborator the core engine does not implement itself.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "svfs",
		Short: "A steganographic virtual file system hidden in host-file slack space",
	}

	root.AddCommand(
		newInitCmd(),
		newLsCmd(),
		newWriteCmd(),
		newReadCmd(),
		newRmCmd(),
		newMkdirCmd(),
		newInfoCmd(),
		newHealthCmd(),
		newWipeCmd(),
		newPasswdCmd(),
	)
	return root
}
