package main

import (
	"github.com/spf13/cobra"

	"metabin/internal/meta"
)

var renderCmd = &cobra.Command{
	Use:   "render snapshot.mp",
	Short: "Print the pattern stored in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := meta.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		_, err = m.WriteTo(cmd.OutOrStdout())
		return err
	},
}
