package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/back2u/back2u/internal/api"
	"github.com/back2u/back2u/internal/config"
	"github.com/back2u/back2u/internal/db"
	"github.com/back2u/back2u/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("back2u", flag.ContinueOnError)

	var cfg config.Config
	fs.StringVar(&cfg.Addr, "addr", config.Env("BACK2U_ADDR", ":5050"), "")
	fs.StringVar(&cfg.DBPath, "db", config.Env("BACK2U_DB", "back2u.sqlite3"), "")
	fs.StringVar(&cfg.UploadDir, "uploads", config.Env("BACK2U_UPLOADS", "uploads"), "")
	fs.StringVar(&cfg.AllowedOrigin, "origin", config.Env("BACK2U_ORIGIN", "*"), "")
	fs.StringVar(&cfg.Environment, "env", config.Env("BACK2U_ENV", "development"), "")
	fs.StringVar(&cfg.LogPath, "log", config.Env("BACK2U_LOG", ""), "")

	var codesPath string
	fs.StringVar(&codesPath, "security-codes", config.Env("BACK2U_SECURITY_CODES", ""), "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: back2u [flags]

Flags:
  -addr <host:port>       listen address (default: :5050, env BACK2U_ADDR)
  -db <path>              SQLite database path (default: back2u.sqlite3, env BACK2U_DB)
  -uploads <dir>          item photo directory (default: uploads, env BACK2U_UPLOADS)
  -origin <origin>        allowed CORS origin (default: *, env BACK2U_ORIGIN)
  -env <name>             environment name (default: development, env BACK2U_ENV)
  -security-codes <path>  JSON file mapping registration codes to campuses
                          (default: built-in codes, env BACK2U_SECURITY_CODES)
  -log <path>             log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	codes, err := config.LoadSecurityCodes(codesPath)
	if err != nil {
		slog.Error("failed to load security registration codes", "error", err)
		os.Exit(1)
	}
	cfg.SecurityCodes = codes

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		slog.Error("failed to create upload directory", "error", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	// JWT secret lives in the database and is generated on first run.
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	handler := api.NewRouter(api.Config{
		DB:            database,
		JWTSecret:     jwtSecret,
		UploadDir:     cfg.UploadDir,
		SecurityCodes: cfg.SecurityCodes,
		AllowedOrigin: cfg.AllowedOrigin,
		Dev:           cfg.Development(),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
