package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"mindwell-backend/internal/shared/telemetry"
)

const applicationName = "mindwell-backend"

// Profile names a process shape with its own pool sizing.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// Options controls pool sizing and the connect-time ping.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var profiles = map[Profile]Options{
	ProfileServer:  {MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
	ProfileLambda:  {MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, ConnMaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	ProfileMigrate: {MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
}

// DetectProfile picks the Lambda profile inside a Lambda execution environment.
func DetectProfile() Profile {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return ProfileLambda
	}
	return ProfileServer
}

// OptionsFor returns the built-in defaults of p. Unknown profiles get server defaults.
func OptionsFor(p Profile) Options {
	if o, ok := profiles[p]; ok {
		return o
	}
	return profiles[ProfileServer]
}

// Override applies DB_* settings found through lookup. Malformed values are logged and ignored.
func (o Options) Override(lookup func(string) (string, bool)) Options {
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &o.MaxOpenConns,
		"DB_MAX_IDLE_CONNS": &o.MaxIdleConns,
	}
	for key, dst := range ints {
		if raw, ok := lookup(key); ok && strings.TrimSpace(raw) != "" {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err})
				continue
			}
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &o.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &o.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":       &o.PingTimeout,
	}
	for key, dst := range durations {
		if raw, ok := lookup(key); ok && strings.TrimSpace(raw) != "" {
			v, err := time.ParseDuration(strings.TrimSpace(raw))
			if err != nil {
				telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err})
				continue
			}
			*dst = v
		}
	}
	return o
}

// openDB builds the pool without dialing. Tests swap it for a fake driver.
var openDB = func(databaseURL string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = map[string]string{}
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = applicationName
	}
	return stdlib.OpenDB(*cfg), nil
}

// Open connects with the pool settings of p plus any DB_* overrides. The Lambda profile
// shares one pool across warm invocations.
func Open(ctx context.Context, databaseURL string, p Profile) (*sql.DB, error) {
	opts := OptionsFor(p).Override(os.LookupEnv)
	if p == ProfileLambda {
		return shared.get(ctx, databaseURL, opts)
	}
	return Connect(ctx, databaseURL, opts)
}

// Connect opens a pool and verifies it answers a ping.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	pool, err := openDB(databaseURL)
	if err != nil {
		return nil, err
	}
	configure(pool, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	st := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": st.MaxOpenConnections,
		"open":     st.OpenConnections,
		"idle":     st.Idle,
	})
	return pool, nil
}

// singleton holds the Lambda pool. A failed connect leaves it empty so the next invocation retries.
type singleton struct {
	mu   sync.Mutex
	pool *sql.DB
}

var shared singleton

func (s *singleton) get(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		return s.pool, nil
	}
	pool, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	telemetry.Info("db.singleton.init", nil)
	return pool, nil
}

func (s *singleton) reset() {
	s.mu.Lock()
	s.pool = nil
	s.mu.Unlock()
}

// Ping reports whether the database answers within timeout. A nil database reports false.
func Ping(ctx context.Context, database *sql.DB, timeout time.Duration) bool {
	if database == nil {
		return false
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return database.PingContext(pingCtx) == nil
}

func configure(pool *sql.DB, o Options) {
	def := profiles[ProfileServer]
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = def.MaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = def.MaxIdleConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = def.ConnMaxLifetime
	}
	pool.SetMaxOpenConns(o.MaxOpenConns)
	pool.SetMaxIdleConns(o.MaxIdleConns)
	pool.SetConnMaxLifetime(o.ConnMaxLifetime)
	if o.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(o.ConnMaxIdleTime)
	}
}
