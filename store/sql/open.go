package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// PersistenceConfig is the configuration go-persistence-bun expects.
type PersistenceConfig interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

// OpenPersistence opens the database named by cfg and wraps it in a
// go-persistence-bun client with the matching bun dialect. The migration
// dialect for the returned client is reported alongside it.
func OpenPersistence(cfg PersistenceConfig) (*persistence.Client, string, error) {
	if cfg == nil {
		return nil, "", storeConfigError("sqlstore: persistence config is required")
	}
	driver := strings.TrimSpace(strings.ToLower(cfg.GetDriver()))
	server := strings.TrimSpace(cfg.GetServer())
	if server == "" {
		return nil, "", storeConfigError("sqlstore: persistence server is required")
	}

	var (
		dialect          schema.Dialect
		migrationDialect string
	)
	switch driver {
	case DriverPostgres, "pgx", "postgresql":
		driver = DriverPostgres
		dialect = pgdialect.New()
		migrationDialect = "postgres"
	case DriverSQLite, "sqlite":
		driver = DriverSQLite
		dialect = sqlitedialect.New()
		migrationDialect = "sqlite"
	default:
		return nil, "", storeConfigError(fmt.Sprintf("sqlstore: unsupported driver %q", cfg.GetDriver()))
	}

	sqlDB, err := sql.Open(driver, server)
	if err != nil {
		return nil, "", fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, "", fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, migrationDialect, nil
}
