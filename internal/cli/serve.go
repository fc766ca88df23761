package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/api"
	"github.com/rshade/ghgfreight/internal/observability"
	httptransport "github.com/rshade/ghgfreight/internal/transport/http"
)

// defaultShutdownTimeout bounds graceful shutdown of the HTTP server.
const defaultShutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve command, which runs the HTTP API until
// interrupted.
func NewServeCmd() *cobra.Command {
	var (
		address     string
		corsOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the emissions HTTP API",
		Long: `Loads the reference dataset once and serves the lookup, factor, and compute
endpoints over HTTP, plus Prometheus metrics at /metrics. The server shuts down
gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured address
  ghgfreight serve

  # Serve on all interfaces and allow a browser front end
  ghgfreight serve --address :5002 --cors-origin http://localhost:5173`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			if cmd.Flags().Changed("address") {
				cfg.Server.Address = address
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.Server.CORSOrigins = corsOrigins
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics := observability.NewMetrics(nil)
			svc, err := loadService(ctx, cfg, metrics)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			api.NewHandler(svc, metrics).RegisterRoutes(mux)
			handler := httptransport.Chain(mux,
				httptransport.RequestLogger,
				httptransport.CORS(cfg.Server.CORSOrigins),
			)

			logger.Info().Ctx(ctx).
				Str("address", cfg.Server.Address).
				Str("dataset_version", dataVersion(svc.Dataset())).
				Strs("cors_origins", cfg.Server.CORSOrigins).
				Msg("starting HTTP server")
			cmd.Printf("Serving ghgfreight API on http://%s\n", cfg.Server.Address)

			err = httptransport.ListenAndRun(ctx, httptransport.ServerConfig{
				Address:         cfg.Server.Address,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				IdleTimeout:     cfg.Server.IdleTimeout,
				ShutdownTimeout: defaultShutdownTimeout,
			}, handler)
			if err != nil {
				return err
			}
			logger.Info().Ctx(ctx).Msg("HTTP server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (default from config)")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "allowed CORS origin, repeatable; * allows any")

	return cmd
}
