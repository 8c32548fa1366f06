package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	corenumerator "inventra/internal/core/numerator"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List document types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tPREFIX\tRESOURCE\tLINKED FROM\tAWAITS PAYMENT\tBASELINE KEY")
			for _, c := range corenumerator.All() {
				linked := string(c.LinkSource)
				if linked == "" {
					linked = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
					c.Type, c.Prefix, c.Resource, linked, c.AwaitsPayment, c.StorageKey())
			}
			return w.Flush()
		},
	}
}
