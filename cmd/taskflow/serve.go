package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/taskflow/internal/config"
	"github.com/mtlprog/taskflow/internal/database"
	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler"
	"github.com/mtlprog/taskflow/internal/middleware"
	"github.com/mtlprog/taskflow/internal/notify"
	"github.com/mtlprog/taskflow/internal/repository"
	"github.com/mtlprog/taskflow/internal/repository/sqlite"
	"github.com/mtlprog/taskflow/internal/ruleset"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the task store server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "sqlite-path",
				Usage:   "SQLite database file, used when no PostgreSQL URL is given",
				EnvVars: []string{"SQLITE_PATH"},
			},
			redisFlag(),
			&cli.Float64Flag{
				Name:    "rate-limit",
				Value:   config.DefaultRateLimit,
				Usage:   "Requests per second allowed per client IP (0 disables)",
				EnvVars: []string{"RATE_LIMIT"},
			},
			&cli.StringFlag{
				Name:    "rules-file",
				Usage:   "YAML rule set to seed an empty rule store with",
				EnvVars: []string{"RULES_FILE"},
			},
		},
		Action: runServe,
	}
}

// stores is the backing task and rule store selected by flags.
type stores struct {
	tasks domain.TaskRepository
	rules domain.RuleRepository
	ping  func(context.Context) error
	close func()
}

func openStores(c *cli.Context) (*stores, error) {
	ctx := c.Context

	if databaseURL := c.String("database-url"); databaseURL != "" {
		db, err := database.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Pool()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &stores{
			tasks: repository.NewTaskRepository(db.Pool()),
			rules: repository.NewRuleRepository(db.Pool()),
			ping:  db.Ping,
			close: db.Close,
		}, nil
	}

	if path := c.String("sqlite-path"); path != "" {
		db, err := database.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := database.RunSQLiteMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &stores{
			tasks: sqlite.NewTaskRepository(db),
			rules: sqlite.NewRuleRepository(db),
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}

	return nil, errors.New("either --database-url or --sqlite-path is required")
}

func seedRules(c *cli.Context, rules domain.RuleRepository) error {
	var (
		seed []domain.AutomationRule
		err  error
	)
	if path := c.String("rules-file"); path != "" {
		seed, err = ruleset.Load(path)
	} else {
		seed, err = ruleset.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to load rule set: %w", err)
	}

	if _, err := ruleset.Seed(c.Context, rules, seed); err != nil {
		return fmt.Errorf("failed to seed rules: %w", err)
	}
	return nil
}

func runServe(c *cli.Context) error {
	ctx, stop := context.WithCancel(c.Context)
	defer stop()

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	st, err := openStores(c)
	if err != nil {
		return err
	}
	defer st.close()

	if err := seedRules(c, st.rules); err != nil {
		return err
	}

	opts := []handler.Option{handler.WithHealthCheck(st.ping)}
	if redisURL := c.String("redis-url"); redisURL != "" {
		events, err := notify.NewRedis(ctx, redisURL, config.EventsChannel)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer events.Close()
		opts = append(opts, handler.WithNotifier(events), handler.WithEvents(events))
	}

	h := handler.New(st.tasks, st.rules, opts...)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var root http.Handler = mux
	if rps := c.Float64("rate-limit"); rps > 0 {
		root = middleware.RateLimitByIP(ctx, rps, config.DefaultRateBurst)(root)
	}
	root = middleware.LogRequests(root)

	// No WriteTimeout: /api/events connections stay open.
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
