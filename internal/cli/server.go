package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"propboard/internal/metrics"
	transport "propboard/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scoreboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, cmd.ErrOrStderr())
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, logOut)
	slog.SetDefault(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	blobs, closeStore, err := openBlobStore(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	promMetrics := metrics.NewPrometheus()
	board := newBoard(cfg, blobs, logger, promMetrics)

	handler := transport.NewRouter(board, transport.Options{
		AdminParam:  cfg.Board.AdminParam,
		PublicURL:   cfg.Server.PublicURL,
		EditLimiter: rate.NewLimiter(rate.Limit(cfg.Board.EditsPerSec), cfg.Board.EditBurst),
		Gatherer:    promMetrics.Registry(),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Bind, finalPort),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting scoreboard", "addr", server.Addr, "store", cfg.Store.Driver, "strict_options", cfg.Strict())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
