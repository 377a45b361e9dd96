package config

import (
	"fmt"
	"time"
)

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend. For sqlite, url is the
// database file path.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
		case "sqlite":
			if url == "" {
				return fmt.Errorf("database path is required for sqlite")
			}
			c.SQLitePath = url
			url = ""
		case "postgres":
			if url == "" {
				return fmt.Errorf("database URL is required for postgres")
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'sqlite' or 'postgres', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithFilesystemStorage stores images under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("base dir cannot be empty")
		}
		c.StorageBackend = "fs"
		c.FSBaseDir = baseDir
		return nil
	}
}

// WithS3Storage stores images in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("bucket cannot be empty")
		}
		c.StorageBackend = "s3"
		c.S3.Bucket = bucket
		if region != "" {
			c.S3.Region = region
		}
		return nil
	}
}

// WithMemoryStorage keeps images in memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageBackend = "memory"
		return nil
	}
}

// WithPublicBaseURL sets the base URL images are served from
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = baseURL
		return nil
	}
}

// WithAdmin sets the admin login and the session signing secret
func WithAdmin(username, password, secret string) Option {
	return func(c *ServerConfig) error {
		if username == "" {
			return fmt.Errorf("admin username cannot be empty")
		}
		c.AdminUsername = username
		c.AdminPassword = password
		c.SessionSecret = secret
		return nil
	}
}

// WithSessionMaxAge sets how long an admin session stays valid
func WithSessionMaxAge(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d <= 0 {
			return fmt.Errorf("session max age must be positive")
		}
		c.SessionMaxAge = d
		return nil
	}
}
