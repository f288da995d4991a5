package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var (
		showType     bool
		showSize     bool
		pretty       bool
		exists       bool
		allowUnknown bool
	)

	cmd := &cobra.Command{
		Use:   "cat-file [flags] <object>",
		Short: "Show object type, size, or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case showType:
				hdr, err := r.Store.ReadHeader(h, allowUnknown)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, hdr.Type)
				return nil

			case showSize:
				hdr, err := r.Store.ReadHeader(h, allowUnknown)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, hdr.Size)
				return nil

			case exists:
				// Probe only: decompress and validate, print nothing.
				_, _, err := r.Store.ReadContent(h)
				return err

			case pretty:
				hdr, content, err := r.Store.ReadContent(h)
				if err != nil {
					return err
				}
				if hdr.Type == string(object.TypeTree) {
					entries, _, err := object.DecodeTree(content)
					if err != nil {
						return err
					}
					text, err := r.Store.PrettyTree(entries)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, text)
					return nil
				}
				_, err = out.Write(content)
				return err
			}

			return fmt.Errorf("one of -t, -s, -e, or -p is required")
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show object size")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print object content")
	cmd.Flags().BoolVarP(&exists, "exists", "e", false, "check if the object exists and is well-formed")
	cmd.Flags().BoolVar(&allowUnknown, "allow-unknown-type", false, "allow -t and -s to work on objects of unknown type")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "pretty", "exists")
	return cmd
}
