// Package config holds defaults shared by the server and the board CLI.
package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; when neither a database URL nor a SQLite
	// path is given the server refuses to start.
	DefaultDatabaseURL = ""

	// DefaultAPIURL is where board commands look for the server.
	DefaultAPIURL = "http://localhost:8080"

	// DefaultRateLimit is the sustained requests per second allowed per client IP.
	DefaultRateLimit = 20.0

	// DefaultRateBurst is the burst size allowed per client IP.
	DefaultRateBurst = 40

	// DefaultMaxConns and DefaultMinConns size the PostgreSQL pool.
	DefaultMaxConns = 10
	DefaultMinConns = 2

	// DefaultClientTimeout bounds every remote store call made by board commands.
	DefaultClientTimeout = 10 * time.Second

	// EventsChannel is the Redis pub/sub channel carrying board notifications.
	EventsChannel = "taskflow:events"
)
