package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/refs"
	"github.com/spf13/cobra"
)

func newShowRefCmd() *cobra.Command {
	var (
		head     bool
		heads    bool
		tags     bool
		hashOnly int
		abbrev   int
	)

	cmd := &cobra.Command{
		Use:   "show-ref",
		Short: "List references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			collected, err := refs.Collect(r.GitDir, refs.Options{
				Heads:       heads,
				Tags:        tags,
				IncludeHead: head,
			})
			if err != nil {
				return err
			}

			text := refs.Format(collected, refs.FormatOptions{
				Abbrev:   abbrev,
				HashOnly: hashOnly,
			})
			if text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&head, "head", false, "show the HEAD reference, even if it would be filtered out")
	cmd.Flags().BoolVar(&heads, "heads", false, "only show branch heads (can be combined with --tags)")
	cmd.Flags().BoolVar(&tags, "tags", false, "only show tags (can be combined with --heads)")
	cmd.Flags().IntVarP(&hashOnly, "hash", "s", 0, "only show the hash, using <n> digits")
	cmd.Flags().IntVar(&abbrev, "abbrev", 0, "use <n> digits to display hashes")
	cmd.Flags().Lookup("hash").NoOptDefVal = "40"
	return cmd
}
