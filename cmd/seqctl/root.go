package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inventra/internal/config"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/infrastructure/backend"
	"inventra/internal/infrastructure/storage"
	"inventra/pkg/logger"
)

var version = "0.1.0"

// deps are the collaborators a command needs. Closed once the command finishes.
type deps struct {
	source corenumerator.Source
	store  corenumerator.BaselineStore
	clock  func() time.Time
	close  func()
}

// opener builds deps lazily so that commands like "types" work without configuration.
type opener func(ctx context.Context) (*deps, error)

func openFromConfig(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.IsDevelopment()})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.Open(logger.WithLogger(ctx, log), cfg.Store)
	if err != nil {
		return nil, err
	}
	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		Token:   cfg.Backend.Token,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &deps{
		source: client,
		store:  store.Store,
		clock:  cfg.Clock(),
		close: func() {
			store.Close()
			_ = log.Sync()
		},
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "seqctl",
		Short: "Inspect and repair document sequencing",
		Long: `seqctl shows the next document code the UI would display and manages the
durable baseline (the last code confirmed by a successful creation) used
when the backend cannot be reached.

Configuration is read from the environment and an optional .env file,
the same way the server does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTypesCmd())
	root.AddCommand(newNextCmd(open))
	root.AddCommand(newBaselineCmd(open))
	return root
}

// withDeps opens deps for the duration of fn.
func withDeps(cmd *cobra.Command, open opener, fn func(ctx context.Context, d *deps) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := open(ctx)
	if err != nil {
		return err
	}
	if d.close != nil {
		defer d.close()
	}
	return fn(ctx, d)
}

func lookupType(raw string) (corenumerator.Config, error) {
	cfg, ok := corenumerator.Lookup(corenumerator.DocumentType(strings.ToLower(strings.TrimSpace(raw))))
	if !ok {
		names := make([]string, 0)
		for _, c := range corenumerator.All() {
			names = append(names, string(c.Type))
		}
		return corenumerator.Config{}, fmt.Errorf("unknown document type %q (known: %s)", raw, strings.Join(names, ", "))
	}
	return cfg, nil
}
