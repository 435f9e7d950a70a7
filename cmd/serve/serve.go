// Package serve implements the serve command: the HTTP and WebSocket API.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/spending-coach/cmd/root"
	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 30 * time.Second

// Addr overrides server.addr when set.
var Addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis and chat API",
	Long: `Serve exposes POST /api/analyze and POST /api/chat, a WebSocket endpoint at
/ws carrying the same operations, and GET /health. It stops gracefully on
SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}

		server := c.GetServer().HTTPServer()
		server.Addr = ListenAddr(Addr, server.Addr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, server, c.GetLogger())
	},
}

func init() {
	Cmd.Flags().StringVar(&Addr, "addr", "", "Listen address (default $PORT, then server.addr)")
}

// ListenAddr picks the listen address: the flag, then $PORT, then the configured address.
func ListenAddr(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if port := config.GetEnv("PORT", ""); port != "" {
		return ":" + port
	}
	return configured
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, server *http.Server, logger logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API server", logging.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return err
	}
	logger.Info("Server exited")
	return nil
}
