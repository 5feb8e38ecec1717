package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/codeWithUali/laradoc/internal/config"
)

// SQL dialects of the database driver
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

// mysqlErrNoSuchTable is ER_NO_SUCH_TABLE
const mysqlErrNoSuchTable = 1146

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DatabaseBackend stores documents in a SQL full-text table: a FULLTEXT
// indexed table on MySQL or an FTS5 virtual table on SQLite
type DatabaseBackend struct {
	db      *sql.DB
	dialect string
	table   string
	now     func() time.Time
}

// OpenDatabaseBackend opens the configured database and creates the search
// table when missing
func OpenDatabaseBackend(ctx context.Context, cfg config.SearchDatabaseConfig, project config.ProjectConfig) (*DatabaseBackend, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DialectMySQL:
		db, err = sql.Open("mysql", cfg.DSN)
	case DialectSQLite, "":
		path := cfg.DSN
		if path != ":memory:" {
			path = project.ResolvePath(path)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create search database directory: %w", err)
			}
		}
		db, err = sql.Open("sqlite", path)
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported search database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search database: %w", err)
	}

	dialect := cfg.Driver
	if dialect == "" {
		dialect = DialectSQLite
	}

	backend, err := NewDatabaseBackend(ctx, db, dialect, cfg.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return backend, nil
}

// NewDatabaseBackend uses an open database. The search table is created
// when missing.
func NewDatabaseBackend(ctx context.Context, db *sql.DB, dialect, table string) (*DatabaseBackend, error) {
	if table == "" {
		table = "laradoc_search"
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid search table name %q", table)
	}
	if dialect != DialectMySQL && dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported search database driver %q", dialect)
	}

	b := &DatabaseBackend{db: db, dialect: dialect, table: table, now: time.Now}
	if err := b.ensureTable(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Name implements Backend
func (b *DatabaseBackend) Name() string {
	return DriverDatabase
}

func (b *DatabaseBackend) ensureTable(ctx context.Context) error {
	var ddl string
	if b.dialect == DialectMySQL {
		ddl = fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
			"id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY, "+
			"doc_id VARCHAR(255) NOT NULL, "+
			"module VARCHAR(255) NOT NULL, "+
			"title VARCHAR(500) NOT NULL, "+
			"content LONGTEXT NOT NULL, "+
			"description TEXT, "+
			"type VARCHAR(50) DEFAULT 'documentation', "+
			"section VARCHAR(255) NULL, "+
			"created_at TIMESTAMP NULL, "+
			"updated_at TIMESTAMP NULL, "+
			"FULLTEXT(title, content, description)"+
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci", b.table)
	} else {
		ddl = fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS "%s" USING fts5(`+
			`doc_id UNINDEXED, module UNINDEXED, title, content, description, `+
			`type UNINDEXED, section UNINDEXED, created_at UNINDEXED)`, b.table)
	}

	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create search table: %w", err)
	}
	return nil
}

// Replace deletes every row and inserts docs in one transaction
func (b *DatabaseBackend) Replace(ctx context.Context, docs []Document) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", b.quotedTable())); err != nil {
		return fmt.Errorf("failed to clear search table: %w", err)
	}

	now := b.now().UTC()
	for _, doc := range docs {
		if err := b.insert(ctx, tx, doc, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search index: %w", err)
	}
	return nil
}

func (b *DatabaseBackend) insert(ctx context.Context, tx *sql.Tx, doc Document, now time.Time) error {
	var err error
	if b.dialect == DialectMySQL {
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (doc_id, module, title, content, description, type, section, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", b.quotedTable()),
			doc.ID, doc.Module, doc.Title, doc.Content, doc.Description, doc.Type, nullString(doc.Section), now, now)
	} else {
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (doc_id, module, title, content, description, type, section, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", b.quotedTable()),
			doc.ID, doc.Module, doc.Title, doc.Content, doc.Description, doc.Type, doc.Section, now.Format(time.RFC3339))
	}
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", doc.ID, err)
	}
	return nil
}

// Search runs a full-text query. MySQL uses boolean-mode MATCH AGAINST,
// SQLite uses FTS5 MATCH ranked by bm25.
func (b *DatabaseBackend) Search(ctx context.Context, query string, filters Filters) ([]Result, error) {
	var (
		where []string
		args  []interface{}
		score string
		order string
	)

	if b.dialect == DialectMySQL {
		score = "MATCH(title, content, description) AGAINST(? IN BOOLEAN MODE)"
		where = append(where, score)
		args = append(args, query, query)
		order = "score DESC"
	} else {
		match := ftsQuery(query)
		if match == "" {
			return []Result{}, nil
		}
		// bm25 is lower for better matches
		score = fmt.Sprintf("-bm25(%s)", b.quotedTable())
		where = append(where, fmt.Sprintf("%s MATCH ?", b.quotedTable()))
		args = append(args, match)
		order = "score DESC"
	}

	where, args = appendFilters(where, args, filters)
	args = append(args, limitOf(filters))

	stmt := fmt.Sprintf("SELECT doc_id, module, title, content, description, type, section, %s AS score FROM %s WHERE %s ORDER BY %s LIMIT ?",
		score, b.quotedTable(), strings.Join(where, " AND "), order)

	rows, err := b.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		if isMissingTable(err) {
			return []Result{}, nil
		}
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var (
			r       Result
			desc    sql.NullString
			section sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Module, &r.Title, &r.Content, &desc, &r.Type, &section, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to read search result: %w", err)
		}
		r.Description = desc.String
		r.Section = section.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// Documents implements Backend
func (b *DatabaseBackend) Documents(ctx context.Context, filters Filters) ([]Document, error) {
	where, args := appendFilters(nil, nil, filters)
	stmt := fmt.Sprintf("SELECT doc_id, module, title, content, description, type, section FROM %s", b.quotedTable())
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " LIMIT ?"
	args = append(args, limitOf(filters))

	rows, err := b.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		if isMissingTable(err) {
			return []Document{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			d       Document
			desc    sql.NullString
			section sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Module, &d.Title, &d.Content, &desc, &d.Type, &section); err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		d.Description = desc.String
		d.Section = section.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Count implements Backend
func (b *DatabaseBackend) Count(ctx context.Context) (Stats, error) {
	rows, err := b.db.QueryContext(ctx, fmt.Sprintf("SELECT type, COUNT(*) FROM %s GROUP BY type", b.quotedTable()))
	if err != nil {
		if isMissingTable(err) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("failed to count documents: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			docType sql.NullString
			n       int
		)
		if err := rows.Scan(&docType, &n); err != nil {
			return Stats{}, fmt.Errorf("failed to read document count: %w", err)
		}
		stats.add(docType.String, n)
	}
	return stats, rows.Err()
}

// Clear implements Backend
func (b *DatabaseBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", b.quotedTable())); err != nil {
		return fmt.Errorf("failed to clear search table: %w", err)
	}
	return nil
}

// Ping implements Backend
func (b *DatabaseBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close implements Backend
func (b *DatabaseBackend) Close() error {
	return b.db.Close()
}

func (b *DatabaseBackend) quotedTable() string {
	if b.dialect == DialectMySQL {
		return "`" + b.table + "`"
	}
	return `"` + b.table + `"`
}

func appendFilters(where []string, args []interface{}, filters Filters) ([]string, []interface{}) {
	if filters.Module != "" {
		where = append(where, "module = ?")
		args = append(args, filters.Module)
	}
	if filters.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filters.Type)
	}
	return where, args
}

// ftsQuery quotes every word of query so FTS5 operators in user input are
// matched literally
func ftsQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

func isMissingTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrNoSuchTable
	}
	return strings.Contains(err.Error(), "no such table")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func limitOf(filters Filters) int {
	if filters.Limit > 0 {
		return filters.Limit
	}
	return DefaultLimit
}
