// Package schema reads table structure from a live database for the
// database section of the project analysis.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/codeWithUali/laradoc/internal/config"
)

// Dialects supported by the inspector
const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Table describes one database table
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	Indexes     []Index      `json:"indexes"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Column mirrors a row of MySQL's DESCRIBE output
type Column struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Null    string `json:"null"`
	Key     string `json:"key"`
	Default string `json:"default"`
	Extra   string `json:"extra"`
}

// Index is one column of a table index
type Index struct {
	Name   string `json:"name"`
	Column string `json:"column"`
	Unique bool   `json:"unique"`
}

// ForeignKey links a column to a referenced table column
type ForeignKey struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// Inspector reads table metadata through database/sql
type Inspector struct {
	db      *sql.DB
	dialect string
}

// NewInspector wraps an open database handle
func NewInspector(db *sql.DB, dialect string) *Inspector {
	return &Inspector{db: db, dialect: dialect}
}

// Open connects to the database described by a Laravel-style connection
// config
func Open(cfg config.DatabaseConfig) (*Inspector, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return NewInspector(db, driver), nil
}

// Dialect maps a Laravel DB_CONNECTION name to a supported dialect
func Dialect(connection string) (string, error) {
	switch strings.ToLower(connection) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "pgsql", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database connection %q", connection)
}

// DSN returns the database/sql driver name and data source name for cfg
func DSN(cfg config.DatabaseConfig) (string, string, error) {
	dialect, err := Dialect(cfg.Connection)
	if err != nil {
		return "", "", err
	}
	if cfg.DSN != "" {
		return dialect, cfg.DSN, nil
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}

	switch dialect {
	case MySQL:
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		mc.DBName = cfg.Database
		return dialect, mc.FormatDSN(), nil

	case Postgres:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			host, port, quoteConnValue(cfg.Username), quoteConnValue(cfg.Password), quoteConnValue(cfg.Database))
		return dialect, dsn, nil

	default:
		if cfg.Database == "" {
			return "", "", fmt.Errorf("sqlite database path is required")
		}
		return dialect, cfg.Database, nil
	}
}

// quoteConnValue quotes a value of a key=value connection string
func quoteConnValue(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, " '\\") {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// DB returns the underlying database handle
func (i *Inspector) DB() *sql.DB {
	return i.db
}

// Close releases the database handle
func (i *Inspector) Close() error {
	return i.db.Close()
}

// Ping verifies the connection
func (i *Inspector) Ping(ctx context.Context) error {
	return i.db.PingContext(ctx)
}

// Tables returns the structure of every table keyed by name
func (i *Inspector) Tables(ctx context.Context) (map[string]Table, error) {
	names, err := i.tableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make(map[string]Table, len(names))
	for _, name := range names {
		table := Table{Name: name}
		if table.Columns, err = i.columns(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to describe %s: %w", name, err)
		}
		if table.Indexes, err = i.indexes(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to read indexes of %s: %w", name, err)
		}
		if table.ForeignKeys, err = i.foreignKeys(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", name, err)
		}
		tables[name] = table
	}
	return tables, nil
}

func (i *Inspector) tableNames(ctx context.Context) ([]string, error) {
	var query string
	switch i.dialect {
	case MySQL:
		query = "SHOW TABLES"
	case Postgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name"
	case SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", i.dialect)
	}

	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (i *Inspector) columns(ctx context.Context, table string) ([]Column, error) {
	columns := []Column{}

	switch i.dialect {
	case MySQL:
		rows, err := i.db.QueryContext(ctx, "DESCRIBE "+quoteMySQL(table))
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var c Column
			var def sql.NullString
			if err := rows.Scan(&c.Field, &c.Type, &c.Null, &c.Key, &def, &c.Extra); err != nil {
				return nil, err
			}
			c.Default = def.String
			columns = append(columns, c)
		}
		return columns, rows.Err()

	case Postgres:
		rows, err := i.db.QueryContext(ctx, `SELECT column_name, data_type, is_nullable, COALESCE(column_default, '')
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
			ORDER BY ordinal_position`, table)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var c Column
			if err := rows.Scan(&c.Field, &c.Type, &c.Null, &c.Default); err != nil {
				return nil, err
			}
			columns = append(columns, c)
		}
		return columns, rows.Err()

	default:
		rows, err := i.db.QueryContext(ctx, "PRAGMA table_info("+quoteSQLite(table)+")")
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var cid, notNull, pk int
			var def sql.NullString
			var c Column
			if err := rows.Scan(&cid, &c.Field, &c.Type, &notNull, &def, &pk); err != nil {
				return nil, err
			}
			c.Null = "YES"
			if notNull == 1 {
				c.Null = "NO"
			}
			if pk > 0 {
				c.Key = "PRI"
			}
			c.Default = def.String
			columns = append(columns, c)
		}
		return columns, rows.Err()
	}
}

func (i *Inspector) indexes(ctx context.Context, table string) ([]Index, error) {
	indexes := []Index{}

	switch i.dialect {
	case MySQL:
		rows, err := i.db.QueryContext(ctx, "SHOW INDEX FROM "+quoteMySQL(table))
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		// SHOW INDEX has a server dependent number of columns
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			values := make([]sql.RawBytes, len(cols))
			dest := make([]interface{}, len(cols))
			for j := range values {
				dest[j] = &values[j]
			}
			if err := rows.Scan(dest...); err != nil {
				return nil, err
			}
			row := make(map[string]string, len(cols))
			for j, col := range cols {
				row[col] = string(values[j])
			}
			indexes = append(indexes, Index{
				Name:   row["Key_name"],
				Column: row["Column_name"],
				Unique: row["Non_unique"] == "0",
			})
		}
		return indexes, rows.Err()

	case Postgres:
		rows, err := i.db.QueryContext(ctx, `SELECT indexname, indexdef FROM pg_indexes
			WHERE schemaname = current_schema() AND tablename = $1 ORDER BY indexname`, table)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var name, def string
			if err := rows.Scan(&name, &def); err != nil {
				return nil, err
			}
			indexes = append(indexes, Index{
				Name:   name,
				Column: indexColumns(def),
				Unique: strings.Contains(def, "UNIQUE INDEX"),
			})
		}
		return indexes, rows.Err()

	default:
		rows, err := i.db.QueryContext(ctx, "PRAGMA index_list("+quoteSQLite(table)+")")
		if err != nil {
			return nil, err
		}
		type entry struct {
			name   string
			unique bool
		}
		var entries []entry
		for rows.Next() {
			var seq, unique, partial int
			var name, origin string
			if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
				rows.Close()
				return nil, err
			}
			entries = append(entries, entry{name: name, unique: unique == 1})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		for _, e := range entries {
			cols, err := i.db.QueryContext(ctx, "PRAGMA index_info("+quoteSQLite(e.name)+")")
			if err != nil {
				return nil, err
			}
			for cols.Next() {
				var seqno, cid int
				var name sql.NullString
				if err := cols.Scan(&seqno, &cid, &name); err != nil {
					cols.Close()
					return nil, err
				}
				indexes = append(indexes, Index{Name: e.name, Column: name.String, Unique: e.unique})
			}
			cols.Close()
		}
		return indexes, nil
	}
}

func (i *Inspector) foreignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	keys := []ForeignKey{}

	var rows *sql.Rows
	var err error
	switch i.dialect {
	case MySQL:
		rows, err = i.db.QueryContext(ctx, `SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
			FROM information_schema.KEY_COLUMN_USAGE
			WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL`, table)
	case Postgres:
		rows, err = i.db.QueryContext(ctx, `SELECT kcu.column_name, ccu.table_name, ccu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
			JOIN information_schema.constraint_column_usage ccu ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
			WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = current_schema() AND tc.table_name = $1`, table)
	default:
		rows, err = i.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteSQLite(table)+")")
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var id, seq int
			var refTable, from, onUpdate, onDelete, match string
			var to sql.NullString
			if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
				return nil, err
			}
			keys = append(keys, ForeignKey{Column: from, ReferencedTable: refTable, ReferencedColumn: to.String})
		}
		return keys, rows.Err()
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		keys = append(keys, fk)
	}
	return keys, rows.Err()
}

// indexColumns extracts the column list of a CREATE INDEX definition
func indexColumns(def string) string {
	start := strings.LastIndex(def, "(")
	end := strings.LastIndex(def, ")")
	if start < 0 || end <= start {
		return ""
	}
	return def[start+1 : end]
}

func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
