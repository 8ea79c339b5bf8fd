package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/nao1215/a11yaudit/internal/database"
	"github.com/nao1215/a11yaudit/internal/log"
	"github.com/nao1215/a11yaudit/internal/pipeline"
	"github.com/nao1215/a11yaudit/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	// shutdownTimeout bounds graceful shutdown. In-flight audits get one
	// full audit deadline to finish.
	shutdownTimeout = config.DefaultAuditDeadline + 5*time.Second

	// readHeaderTimeout guards against slow clients holding connections.
	readHeaderTimeout = 10 * time.Second
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit HTTP API",
		Long: `Serve starts an HTTP API that runs audits on request.

Routes:
  GET  /healthz                  Liveness and version
  POST /v1/audits                Run an audit; body {"urls": [...], "config": {...}}
  GET  /v1/audits/{id}           Stored audit by id
  GET  /v1/sites                 Sites with stored audits
  GET  /v1/sites/{site}/audits   Audit history of a site, newest first

Each audit request runs under the audit deadline. Concurrent requests run
independent audits. The history routes are disabled with --no-db.

Examples:
  # Serve on the default address using the remote browser service
  a11yaudit serve

  # Serve on all interfaces with a local Chrome
  a11yaudit serve --listen :8080 --local`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addBrowserFlags(cmd)

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Address to listen on")
	cmd.Flags().Duration("deadline", config.DefaultAuditDeadline,
		"Deadline for each audit request")
	cmd.Flags().Duration("settle-delay", config.DefaultSettleDelay,
		"Wait after the DOM is ready before running the rule engine")
	cmd.Flags().Bool("no-db", false,
		"Do not save audits and disable the history routes")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if err := readBrowserFlags(cmd, cfg); err != nil {
		return err
	}

	var err error
	cfg.ListenAddr, err = cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	cfg.AuditDeadline, err = cmd.Flags().GetDuration("deadline")
	if err != nil {
		return err
	}
	cfg.SettleDelay, err = cmd.Flags().GetDuration("settle-delay")
	if err != nil {
		return err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	auditorOpts := []pipeline.AuditorOption{
		pipeline.WithAuditorLogger(logger),
		pipeline.WithSettleDelay(cfg.SettleDelay),
	}
	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithAuditDeadline(cfg.AuditDeadline),
		server.WithVersion(getVersion()),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		auditorOpts = append(auditorOpts, pipeline.WithStore(db))
		serverOpts = append(serverOpts, server.WithHistory(db))
	}

	auditor := pipeline.NewAuditor(newBrowser(cfg, logger), auditorOpts...)
	handler := server.New(auditor, serverOpts...).Handler()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving audit API", "addr", ln.Addr().String(), "history", cfg.SaveToDB)
	return serve(ctx, ln, handler, cfg.AuditDeadline, logger)
}

// serve serves handler on ln until ctx is done, then shuts down gracefully.
// It returns the first error of the server or of the shutdown.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, auditDeadline time.Duration, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		// An audit response is written only after the audit finishes.
		WriteTimeout: auditDeadline + 10*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down audit API")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
