package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"inventra/internal/domain/sequence"
)

func newNextCmd(open opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "next <type>",
		Short: "Show the next code the UI would display",
		Example: `  seqctl next invoice
  seqctl next stock_transfer --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lookupType(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(ctx context.Context, d *deps) error {
				rec := sequence.NewReconciler(cfg, d.source, d.store, sequence.WithClock(d.clock))
				st := rec.Refresh(ctx)

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(st)
				}

				fmt.Fprintf(out, "%s (%s)\n", st.DisplayedCode, st.Status)
				if st.LastConfirmedCode != "" {
					fmt.Fprintf(out, "last confirmed: %s\n", st.LastConfirmedCode)
				}
				if st.FetchError != "" {
					fmt.Fprintf(out, "fetch error: %s\n", st.FetchError)
				}
				if st.Warning != "" {
					fmt.Fprintf(out, "warning: %s\n", st.Warning)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full sequence state as JSON")
	return cmd
}
