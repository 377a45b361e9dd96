package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/repo/memory"
	repopg "github.com/tendant/simple-site/pkg/simplesite/repo/postgres"
	reposqlite "github.com/tendant/simple-site/pkg/simplesite/repo/sqlite"
	"github.com/tendant/simple-site/pkg/simplesite/session"
	fsstorage "github.com/tendant/simple-site/pkg/simplesite/storage/fs"
	memorystorage "github.com/tendant/simple-site/pkg/simplesite/storage/memory"
	s3storage "github.com/tendant/simple-site/pkg/simplesite/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Environment:    "development",
		DatabaseType:   "memory",
		DBSchema:       "site",
		StorageBackend: "memory",
		FSBaseDir:      "./data/images",
		S3: s3storage.Config{
			Region:       "us-east-1",
			SSEAlgorithm: "AES256",
		},
		MaxImageSize:  simplesite.DefaultMaxImageSize,
		AdminUsername: "admin",
		SessionMaxAge: session.DefaultMaxAge,
	}
}

// ServerConfig represents server configuration for the site
type ServerConfig struct {
	// Listen address comes from chi-demo's app config (PORT)
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "sqlite", "postgres"
	DatabaseURL  string
	DBSchema     string // Postgres schema to use (default: site)
	SQLitePath   string
	AutoMigrate  bool

	// Image storage configuration
	StorageBackend string // "memory", "fs", "s3"
	FSBaseDir      string
	S3             s3storage.Config
	PublicBaseURL  string
	MaxImageSize   int64

	// Admin access
	AdminUsername string
	AdminPassword string
	SessionSecret string
	SessionMaxAge time.Duration
	APIKeySHA256  string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	switch c.DatabaseType {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("sqlite path is required when using sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return fmt.Errorf("database type must be 'memory', 'sqlite' or 'postgres', got: %s", c.DatabaseType)
	}

	switch c.StorageBackend {
	case "memory":
	case "fs":
		if c.FSBaseDir == "" {
			return errors.New("base dir is required for fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage backend type: %s", c.StorageBackend)
	}

	if c.MaxImageSize <= 0 {
		return errors.New("max image size must be positive")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("session max age must be positive")
	}
	if c.Environment == "production" && (c.SessionSecret == "" || c.AdminPassword == "") {
		return errors.New("session secret and admin password are required in production")
	}

	return nil
}

// BuildService creates a Service from the server configuration. The returned
// cleanup func releases the database connection.
func (c *ServerConfig) BuildService(ctx context.Context) (simplesite.Service, func(), error) {
	repo, cleanup, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.BuildImageStore(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build image store: %w", err)
	}

	svc, err := simplesite.New(
		simplesite.WithRepository(repo),
		simplesite.WithImageStore(store),
		simplesite.WithPublicBaseURL(c.PublicBaseURL),
		simplesite.WithMaxImageSize(c.MaxImageSize),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// BuildRepository opens the configured content database
func (c *ServerConfig) BuildRepository(ctx context.Context) (simplesite.Repository, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil

	case "sqlite":
		repo, err := reposqlite.Open(c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				slog.Warn("Failed to close sqlite database", "err", err)
			}
		}, nil

	case "postgres":
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to migrate: %w", err)
			}
		}
		return repo, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres and that schema, when set,
// can be selected
func PingPostgres(ctx context.Context, databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// BuildImageStore creates the configured image store
func (c *ServerConfig) BuildImageStore(ctx context.Context) (simplesite.ImageStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.FSBaseDir})
	case "s3":
		return s3storage.New(ctx, c.S3)
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageBackend)
	}
}

// BuildSigner creates the admin session signer. Without a secret the signer
// is disabled and every admin login is refused.
func (c *ServerConfig) BuildSigner() *session.Signer {
	if c.SessionSecret == "" {
		slog.Warn("No session secret configured; admin login is disabled")
	}
	return session.New(
		session.WithSecretKey(c.SessionSecret),
		session.WithMaxAge(c.SessionMaxAge),
	)
}

// Credentials returns the configured admin login
func (c *ServerConfig) Credentials() session.Credentials {
	return session.Credentials{Username: c.AdminUsername, Password: c.AdminPassword}
}
