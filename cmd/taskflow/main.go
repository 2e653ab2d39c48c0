// @title			TaskFlow API
// @version		1.0
// @description	Kanban task store with trash and client-side status automation rules.
// @BasePath		/api

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/taskflow/internal/config"
	"github.com/mtlprog/taskflow/internal/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "taskflow",
		Usage: "Task board with trash and status automation rules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			// Board and rule commands print results on stdout.
			var w io.Writer = os.Stdout
			if cmd := c.Args().First(); cmd == "board" || cmd == "rules" {
				w = os.Stderr
			}
			logger.SetupWriter(w, logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			boardCommand(),
			rulesCommand(),
		},
	}
}

// redisFlag names the Redis server that carries board notifications.
func redisFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "redis-url",
		Usage:   "Redis URL for the notification stream (optional)",
		EnvVars: []string{"REDIS_URL"},
	}
}

// apiFlag is used by every command that talks to a running server.
func apiFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "api-url",
		Aliases: []string{"a"},
		Value:   config.DefaultAPIURL,
		Usage:   "Base URL of the taskflow server",
		EnvVars: []string{"TASKFLOW_API_URL"},
	}
}
