package database

import (
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/socialflow-api/pkg/config"
)

// Dialect names the SQL flavour of the host database, using the host platform's dbtype values.
type Dialect string

const (
	DialectPostgres  Dialect = "pgsql"
	DialectMySQL     Dialect = "mysqli"
	DialectMariaDB   Dialect = "mariadb"
	DialectSQLite    Dialect = "sqlite"
	DialectSQLServer Dialect = "sqlsrv"
	DialectOracle    Dialect = "oci"
)

func init() {
	// Drivers sqlx does not know about out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// Supported reports whether the dialect is one the flow query can be built for.
func (d Dialect) Supported() bool {
	switch d {
	case DialectPostgres, DialectMySQL, DialectMariaDB, DialectSQLite, DialectSQLServer, DialectOracle:
		return true
	}
	return false
}

// DriverName returns the database/sql driver registered for the dialect.
func DriverName(cfg config.DatabaseConfig) (string, error) {
	if cfg.Driver != "" {
		return cfg.Driver, nil
	}
	switch Dialect(cfg.Type) {
	case DialectPostgres:
		return "postgres", nil
	case DialectMySQL, DialectMariaDB:
		return "mysql", nil
	case DialectSQLite:
		return "sqlite", nil
	case DialectSQLServer:
		return "sqlserver", nil
	case DialectOracle:
		return "oracle", nil
	}
	return "", fmt.Errorf("unsupported database type %q", cfg.Type)
}

// DSN builds the connection string expected by the driver serving the dialect.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch Dialect(cfg.Type) {
	case DialectPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		), nil
	case DialectMySQL, DialectMariaDB:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name), nil
	case DialectSQLite:
		return cfg.Path, nil
	case DialectSQLServer:
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			RawQuery: url.Values{"database": {cfg.Name}}.Encode(),
		}
		return u.String(), nil
	case DialectOracle:
		u := &url.URL{
			Scheme: "oracle",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:   "/" + cfg.Name,
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("unsupported database type %q", cfg.Type)
}

// Open returns a configured client for the host platform database.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver, err := DriverName(cfg)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
