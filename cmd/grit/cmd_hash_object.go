package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var (
		typeName string
		write    bool
	)

	cmd := &cobra.Command{
		Use:   "hash-object [flags] <file>",
		Short: "Compute an object hash, optionally writing it to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := object.ParseType(typeName)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			var h object.Hash
			if write {
				r, err := openRepo()
				if err != nil {
					return err
				}
				h, err = r.Store.Write(objType, content)
				if err != nil {
					return err
				}
			} else {
				h = object.HashObject(objType, content)
			}

			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "blob", "object type")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the object database")
	return cmd
}
