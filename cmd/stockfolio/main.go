package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/api"
	"github.com/dgnsrekt/stockfolio/internal/auth"
	"github.com/dgnsrekt/stockfolio/internal/config"
	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"github.com/dgnsrekt/stockfolio/internal/market"
	"github.com/dgnsrekt/stockfolio/internal/netutil"
	"github.com/dgnsrekt/stockfolio/internal/portfolio"
	"github.com/dgnsrekt/stockfolio/internal/relay"
	"github.com/dgnsrekt/stockfolio/internal/seed"
	"github.com/dgnsrekt/stockfolio/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("stockfolio config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.AutoFallback,
		"port_candidates", cfg.PortCandidates,
		"store", cfg.Store,
		"sqlite_path", cfg.SQLitePath,
		"seed_file", cfg.SeedFile,
		"journal_dir", cfg.JournalDir,
		"quote_source", cfg.QuoteSource,
		"mock_latency", cfg.MockLatency,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	ctx := context.Background()

	var (
		ledgers ledger.Store
		users   auth.UserStore
		db      *sql.DB
	)
	switch cfg.Store {
	case config.StoreSQLite:
		db, err = storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			slog.Error("failed to open sqlite store", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := db.Close(); err != nil {
				slog.Debug("sqlite close failed", "error", err)
			}
		}()
		ledgers = ledger.NewSQLiteStore(db)
		users = auth.NewSQLiteUserStore(db)
	default:
		ledgers = ledger.NewMemoryStore()
		users = auth.NewMemoryUserStore()
	}

	authSvc := auth.NewService(users, ledgers, auth.Options{
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
	})

	seedFile, err := seed.Load(cfg.SeedFile)
	if err != nil {
		slog.Error("failed to load seed", "file", cfg.SeedFile, "error", err)
		os.Exit(1)
	}
	if err := seedFile.Apply(ctx, authSvc, ledgers); err != nil {
		slog.Error("failed to apply seed", "error", err)
		os.Exit(1)
	}
	quotes, err := seedFile.MarketQuotes()
	if err != nil {
		slog.Error("failed to read seed quotes", "error", err)
		os.Exit(1)
	}

	broker := relay.NewBroker()
	book := market.NewBook(quotes)
	book.OnUpdate(relay.PublishQuotes(broker))

	if cfg.QuoteSource == config.QuoteSourceYahoo {
		refresher := market.NewRefresher(book, market.NewYahooFetcher(cfg.HTTPSProxy))
		if err := refresher.Start(cfg.QuoteRefreshCron); err != nil {
			slog.Error("failed to start quote refresher", "cron", cfg.QuoteRefreshCron, "error", err)
			os.Exit(1)
		}
		defer refresher.Stop()
		go func() {
			if _, err := refresher.RefreshOnce(ctx); err != nil {
				slog.Warn("initial quote refresh incomplete", "error", err)
			}
		}()
	}

	svc := portfolio.NewService(ledgers, book)
	if cfg.JournalEnabled() {
		journal := storage.NewJournal(cfg.JournalDir, "activity", 1024, 50)
		defer func() {
			if err := journal.Close(); err != nil {
				slog.Debug("journal close failed", "error", err)
			}
		}()
		svc.WithJournal(journal)
	}
	h := api.NewServer(svc, authSvc, api.Options{
		Broker:      broker,
		MockLatency: cfg.MockLatency,
		CORSOrigins: cfg.CORSOrigins,
	})

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.AutoFallback)
	if err != nil {
		slog.Error("failed to bind listener", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("stockfolio listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stockfolio server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("stockfolio shutdown failed", "error", err)
	}
	slog.Info("stockfolio stopped", "stream_clients_dropped_events", broker.Dropped())
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
