package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/config"
)

func TestDSN(t *testing.T) {
	driver, dsn, err := DSN(config.DatabaseConfig{
		Connection: "mysql",
		Host:       "db",
		Port:       3307,
		Database:   "shop",
		Username:   "root",
		Password:   "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, MySQL, driver)
	assert.Equal(t, "root:secret@tcp(db:3307)/shop", dsn)

	driver, dsn, err = DSN(config.DatabaseConfig{Connection: "pgsql", Database: "shop", Username: "app", Password: "p w"})
	require.NoError(t, err)
	assert.Equal(t, Postgres, driver)
	assert.Equal(t, "host=127.0.0.1 port=5432 user=app password='p w' dbname=shop sslmode=disable", dsn)

	driver, dsn, err = DSN(config.DatabaseConfig{Connection: "sqlite", Database: "/tmp/app.sqlite"})
	require.NoError(t, err)
	assert.Equal(t, SQLite, driver)
	assert.Equal(t, "/tmp/app.sqlite", dsn)

	_, dsn, err = DSN(config.DatabaseConfig{Connection: "mariadb", DSN: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", dsn)

	_, _, err = DSN(config.DatabaseConfig{Connection: "sqlsrv"})
	assert.Error(t, err)
}

func TestTables_MySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SHOW TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("posts"))
	mock.ExpectQuery("DESCRIBE `posts`").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
			AddRow("user_id", "bigint unsigned", "NO", "MUL", nil, "").
			AddRow("status", "varchar(20)", "NO", "", "draft", ""))
	mock.ExpectQuery("SHOW INDEX FROM `posts`").
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Non_unique", "Key_name", "Seq_in_index", "Column_name"}).
			AddRow("posts", "0", "PRIMARY", "1", "id").
			AddRow("posts", "1", "posts_user_id_foreign", "1", "user_id"))
	mock.ExpectQuery("SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME").
		WithArgs("posts").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}).
			AddRow("user_id", "users", "id"))

	tables, err := NewInspector(db, MySQL).Tables(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Contains(t, tables, "posts")
	posts := tables["posts"]
	require.Len(t, posts.Columns, 3)
	assert.Equal(t, Column{Field: "status", Type: "varchar(20)", Null: "NO", Default: "draft"}, posts.Columns[2])
	assert.Equal(t, []Index{
		{Name: "PRIMARY", Column: "id", Unique: true},
		{Name: "posts_user_id_foreign", Column: "user_id", Unique: false},
	}, posts.Indexes)
	assert.Equal(t, []ForeignKey{{Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"}}, posts.ForeignKeys)
}

func TestTables_MySQLError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SHOW TABLES").WillReturnError(sql.ErrConnDone)

	_, err = NewInspector(db, MySQL).Tables(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestTables_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE)`,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id), title TEXT DEFAULT 'untitled')`,
		`CREATE INDEX posts_user_id_index ON posts(user_id)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	tables, err := NewInspector(db, SQLite).Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables["users"]
	require.Len(t, users.Columns, 2)
	assert.Equal(t, "PRI", users.Columns[0].Key)
	assert.Equal(t, "NO", users.Columns[1].Null)
	require.Len(t, users.Indexes, 1)
	assert.True(t, users.Indexes[0].Unique)
	assert.Equal(t, "email", users.Indexes[0].Column)

	posts := tables["posts"]
	assert.Equal(t, "'untitled'", posts.Columns[2].Default)
	assert.Equal(t, []Index{{Name: "posts_user_id_index", Column: "user_id"}}, posts.Indexes)
	assert.Equal(t, []ForeignKey{{Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"}}, posts.ForeignKeys)
}
