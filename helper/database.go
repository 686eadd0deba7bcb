package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Database holds a postgres connection and the logger of its owner
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// DatabaseConfiguration holds the connection parameters of the postgres database
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the NUTRICOACH_DB_* environment
// variables, loading a .env file first if one exists.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("NUTRICOACH_DB_HOST"),
		Port:     os.Getenv("NUTRICOACH_DB_PORT"),
		Database: os.Getenv("NUTRICOACH_DB_DATABASE"),
		Username: os.Getenv("NUTRICOACH_DB_USERNAME"),
		Password: os.Getenv("NUTRICOACH_DB_PASSWORD"),
		Schema:   os.Getenv("NUTRICOACH_DB_SCHEMA"),
		SSLMode:  os.Getenv("NUTRICOACH_DB_SSLMODE"),
	}

	if len(strings.TrimSpace(config.Host)) == 0 || len(strings.TrimSpace(config.Port)) == 0 || len(strings.TrimSpace(config.Database)) == 0 || len(strings.TrimSpace(config.Username)) == 0 || len(strings.TrimSpace(config.Password)) == 0 {
		return nil, NewError("database configuration", fmt.Errorf("NUTRICOACH_DB_HOST, NUTRICOACH_DB_PORT, NUTRICOACH_DB_DATABASE, NUTRICOACH_DB_USERNAME and NUTRICOACH_DB_PASSWORD must be set"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "require"
	}

	return config, nil
}

// DatabaseConnectionString returns the postgres connection string of the configuration
func (c *DatabaseConfiguration) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.SSLMode, c.Schema,
	)
}

// NewDatabase opens and pings the database. It panics if the database is unreachable,
// the service must not start without it.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := connect(config)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: db,
	}
}

// NewTestDatabase opens the database with a discarding logger
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test", config, slog.New(slog.NewTextHandler(nopWriter{}, nil)))
}

// Close closes the underlying connection
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

func connect(config *DatabaseConfiguration) (*sql.DB, error) {
	db, err := sql.Open("postgres", config.DatabaseConnectionString())
	if err != nil {
		return nil, NewError("open", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, NewError("ping", err)
	}

	return db, nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
