// cmd/confchain/main.go
//
// confchain – configuration resolver daemon and checker.
//
// Life-cycle
// ----------
//
//  1. Load env vars (jail-wide file → .env fallback) so local runs can set
//     CONFIG_USE_ENVIRONMENT_VARIABLES and CONFIG_KUBE_VAULT_CREDS_PATH.
//
//  2. Start the logger (tees to console when running in a TTY).
//
//  3. config.Load(file): default file → main file → env flag → Vault.
//
//  4. serve: open the database pool when database.url resolves, then
//     expose /healthz and /metrics until SIGINT or SIGTERM.
//
//     check: print, for each key, its environment name and whether any
//     tier defines it.  Values are never printed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/confchain/internal/config"
	"github.com/yanizio/confchain/internal/database"
	"github.com/yanizio/confchain/internal/logger"
	"github.com/yanizio/confchain/internal/server"
)

const (
	serverEnvPath = "/usr/local/etc/confchain/global.env"
	shutdownGrace = 10 * time.Second
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	app := kingpin.New("confchain", "Layered configuration resolver: property files, environment, and Vault.")
	logDir := app.Flag("log-dir", "Directory for daily JSON logs (empty logs to stdout).").Envar("CONFCHAIN_LOG_DIR").String()
	logLevel := app.Flag("log-level", "Log level.").Default("info").Enum("debug", "info", "warn", "error")

	serve := app.Command("serve", "Load configuration and serve /healthz and /metrics.").Default()
	serveFile := serve.Arg("config", "Main property file.").Required().String()

	check := app.Command("check", "Report which keys resolve and from which environment name.")
	checkFile := check.Arg("config", "Main property file.").Required().String()
	checkKeys := check.Arg("keys", "Keys to check.").Strings()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	loadEnv()

	logOut, err := logger.New(logger.Options{Dir: *logDir, Tee: runningInTTY(), Level: *logLevel})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	switch cmd {
	case serve.FullCommand():
		err = runServe(logOut, *serveFile)
	case check.FullCommand():
		err = runCheck(logOut, *checkFile, *checkKeys)
	}
	if err != nil {
		logOut.Fatalw("confchain failed", "cmd", cmd, "err", err)
	}
}

func runCheck(logOut *zap.SugaredLogger, file string, keys []string) error {
	cfg, err := config.Load(file, config.WithLogger(logOut))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		keys = cfg.Properties().Keys()
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tENV\tDEFINED")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", k, config.EnvName(k), cfg.HasKey(k))
	}
	return tw.Flush()
}

func runServe(logOut *zap.SugaredLogger, file string) error {
	cfg, err := config.Load(file, config.WithLogger(logOut))
	if err != nil {
		return err
	}

	var db *sqlx.DB
	if cfg.HasKey("database.url") {
		if db, err = database.Open(cfg); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		logOut.Infow("database online")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := database.Check(r.Context(), db, cfg); err != nil {
				logOut.Warnw("health check failed", "err", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	addr, err := server.Addr(cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(addr, r, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logOut.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
