package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wedding-rsvp/internal/api"
	"wedding-rsvp/internal/factory"
)

func newServeCmd() *cobra.Command {
	var (
		addr        string
		useWhatsApp bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the RSVP form and the admin page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			logger := newLogger(cfg, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := factory.New(ctx, cfg, logger, factory.Options{WhatsApp: useWhatsApp, QROut: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			defer app.Close()

			router := api.NewRouter(api.RouterConfig{
				Logger:         logger,
				RSVPs:          app.RSVPs,
				Guests:         app.Guests,
				Followups:      app.Followups,
				AllowedOrigins: cfg.AllowedOrigins,
			})
			server := api.NewServer(router, api.DefaultServerConfig(cfg.HTTPAddr), logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info().Msg("Shutdown signal received")
				return server.Shutdown(context.Background())
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (env: HTTP_ADDR)")
	cmd.Flags().BoolVar(&useWhatsApp, "whatsapp", false, "Connect WhatsApp for couple notifications, bulk sends and replies")
	return cmd
}
