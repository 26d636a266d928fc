package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolution and navigation over HTTP",
		Long: `Start the vroute server.

  GET /healthz           liveness probe
  GET /routes            route tree
  GET /resolve?path=...  resolution outcome as JSON
  GET /metrics           Prometheus metrics
  GET /ws                WebSocket navigation

The server refuses to start when the route table is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.Config.Server.Addr
			}

			srv := server.New(&server.Config{Addr: addr}, a.Resolver, a.NewNavigator,
				server.WithLogger(a.Logger.With("component", "server")),
				server.WithGatherer(a.Registry),
			)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.New("R081").Wrap(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Serve(ln)
			}()

			printBanner(cmd.OutOrStdout())
			success(cmd.OutOrStdout(), "listening on %s", ln.Addr())

			select {
			case err := <-errCh:
				if err != nil {
					return errors.New("R081").Wrap(err)
				}
				return nil
			case <-ctx.Done():
			}
			return srv.Shutdown(context.Background())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from the config)")

	return cmd
}
