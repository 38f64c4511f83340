package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"repokit/storage/notify"
)

func newWatchCmd(c *cli) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print user change events published on NATS",
		Long: `Watch subscribes to <nats.subject>.> and prints every change event as a
JSON line until interrupted, or until --count events have been received.

Example:
  REPOKIT_NATS_URL=nats://localhost:4222 usersctl watch
  usersctl watch --count 1`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStack: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.NATS.URL == "" {
				return fmt.Errorf("watch: nats.url is not configured")
			}

			nc, err := nats.Connect(c.cfg.NATS.URL)
			if err != nil {
				return fmt.Errorf("connect nats: %w", err)
			}
			defer nc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			var (
				mu       sync.Mutex
				received int
				writeErr error
			)
			out := cmd.OutOrStdout()
			sub, err := notify.Subscribe(nc, c.cfg.NATS.Subject, func(_ context.Context, e notify.ChangeEvent) {
				mu.Lock()
				defer mu.Unlock()
				if writeErr != nil || (count > 0 && received >= count) {
					return
				}
				if err := printJSON(out, e); err != nil {
					writeErr = err
					cancel()
					return
				}
				received++
				if count > 0 && received >= count {
					cancel()
				}
			})
			if err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			defer func() { _ = sub.Unsubscribe() }()
			if err := nc.Flush(); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}

			<-ctx.Done()

			mu.Lock()
			defer mu.Unlock()
			return writeErr
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many events (0 = run until interrupted)")
	return cmd
}
