package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inventra/internal/core/apperror"
	"inventra/pkg/numerator"
)

func newBaselineCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the last confirmed code kept for offline fallback",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <type>",
		Short: "Print the stored baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lookupType(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(ctx context.Context, d *deps) error {
				code, ok, err := d.store.Load(ctx, cfg.StorageKey())
				if err != nil {
					return fmt.Errorf("load baseline: %w", err)
				}
				if !ok {
					return apperror.NewSequenceAbsent(string(cfg.Type))
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <type> <code>",
		Short:   "Overwrite the stored baseline",
		Example: "  seqctl baseline set invoice INV-24-0042",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lookupType(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(ctx context.Context, d *deps) error {
				codec := numerator.NewCodec(cfg.Prefix)
				if d.clock != nil {
					codec.Now = d.clock
				}
				code, ok := codec.ParseStrict(args[1])
				if !ok {
					return fmt.Errorf("%q is not a valid %s code", args[1], cfg.Type)
				}
				formatted := numerator.Format(code)
				if err := d.store.Save(ctx, cfg.StorageKey(), formatted); err != nil {
					return fmt.Errorf("save baseline: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s baseline set to %s\n", cfg.Type, formatted)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <type>",
		Short: "Remove the stored baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lookupType(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(ctx context.Context, d *deps) error {
				if err := d.store.Delete(ctx, cfg.StorageKey()); err != nil {
					return fmt.Errorf("clear baseline: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s baseline cleared\n", cfg.Type)
				return nil
			})
		},
	})

	return cmd
}
