package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateIndexCmd() *cobra.Command {
	var add bool

	cmd := &cobra.Command{
		Use:   "update-index [flags] <file>...",
		Short: "Stage file contents in the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !add {
				return fmt.Errorf("--add is required")
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			return r.Add(args)
		},
	}

	cmd.Flags().BoolVar(&add, "add", false, "add the given files to the index")
	return cmd
}
