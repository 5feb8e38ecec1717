package search

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithUali/laradoc/internal/config"
	"github.com/codeWithUali/laradoc/internal/docs"
)

func sampleDocs() *docs.Documentation {
	doc := &docs.Documentation{}
	doc.Add(docs.Entry{
		Key:     "overview",
		Title:   "Project Overview",
		Content: "# Project Overview\n\n## Project Information\n\n- **Name:** Demo shop\n",
	})
	doc.Add(docs.Entry{
		Key:         "authentication",
		Title:       "Authentication & Authorization",
		Description: "User authentication, authorization, roles, and permissions",
		Content:     "# Authentication & Authorization\n\n## Structured Data\n\n### Authentication Configuration\n\n**Guards:** web, api\n",
	})
	doc.Add(docs.Entry{
		Key:     "api",
		Title:   "API Documentation",
		Content: "# API Documentation\n\n### API Endpoints\n\n- **GET** `/api/orders`\n  - Handler: OrderController@index\n",
	})
	return doc
}

// manySectionsDocs returns one module with n second level headings
func manySectionsDocs(n int) *docs.Documentation {
	var content strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&content, "## Route %d\n\nGET /orders/%d\n\n", i, i)
	}

	doc := &docs.Documentation{}
	doc.Add(docs.Entry{Key: "routes", Title: "Routes", Content: content.String()})
	return doc
}

func openSQLiteBackend(t *testing.T) *DatabaseBackend {
	t.Helper()
	backend, err := OpenDatabaseBackend(context.Background(),
		config.SearchDatabaseConfig{Driver: DialectSQLite, DSN: ":memory:"},
		config.ProjectConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestDatabaseBackend_SQLiteIndexThenSearch(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, config.SearchConfig{Driver: DriverDatabase}, WithBackend(openSQLiteBackend(t)))
	require.NoError(t, err)

	result, err := svc.IndexDocumentation(ctx, sampleDocs())
	require.NoError(t, err)
	// 3 documents + 2 + 3 + 2 sections
	assert.Equal(t, IndexResult{Indexed: 10, Driver: DriverDatabase}, result)

	results, err := svc.Search(ctx, "guards", Filters{})
	require.NoError(t, err)
	require.NotEmpty(t, results.Results)
	assert.Equal(t, results.Total, len(results.Results))
	for _, r := range results.Results {
		assert.Equal(t, "authentication", r.Module)
		assert.Contains(t, r.Excerpt, "Guards")
	}

	sections, err := svc.Search(ctx, "guards", Filters{Type: TypeSection})
	require.NoError(t, err)
	require.Len(t, sections.Results, 1)
	assert.Equal(t, "Authentication Configuration", sections.Results[0].Section)

	none, err := svc.Search(ctx, "guards", Filters{Module: "api"})
	require.NoError(t, err)
	assert.Empty(t, none.Results)

	modules, err := svc.Modules(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"overview":       "Project Overview",
		"authentication": "Authentication & Authorization",
		"api":            "API Documentation",
	}, modules)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Driver: DriverDatabase, TotalDocuments: 10, Documentation: 3, Sections: 7}, stats)
}

func TestDatabaseBackend_SQLiteStatsCountEveryDocument(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, config.SearchConfig{Driver: DriverDatabase}, WithBackend(openSQLiteBackend(t)))
	require.NoError(t, err)

	result, err := svc.IndexDocumentation(ctx, manySectionsDocs(1200))
	require.NoError(t, err)
	assert.Equal(t, 1201, result.Indexed)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Driver: DriverDatabase, TotalDocuments: 1201, Documentation: 1, Sections: 1200}, stats)

	require.NoError(t, svc.Clear(ctx))
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Driver: DriverDatabase}, stats)
}

func TestDatabaseBackend_SQLiteReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	backend := openSQLiteBackend(t)

	require.NoError(t, backend.Replace(ctx, BuildDocuments(sampleDocs())))
	require.NoError(t, backend.Replace(ctx, []Document{{ID: "only", Module: "only", Title: "Only", Content: "orders", Type: TypeDocumentation}}))

	documents, err := backend.Documents(ctx, Filters{})
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "only", documents[0].ID)

	require.NoError(t, backend.Clear(ctx))
	documents, err = backend.Documents(ctx, Filters{})
	require.NoError(t, err)
	assert.Empty(t, documents)
}

func TestDatabaseBackend_SQLiteOperatorsInQuery(t *testing.T) {
	ctx := context.Background()
	backend := openSQLiteBackend(t)
	require.NoError(t, backend.Replace(ctx, BuildDocuments(sampleDocs())))

	results, err := backend.Search(ctx, `orders AND "NEAR(`, Filters{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = backend.Search(ctx, "   ", Filters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func newMySQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `laradoc_search`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	return db, mock
}

func TestDatabaseBackend_MySQLReplace(t *testing.T) {
	ctx := context.Background()
	db, mock := newMySQLMock(t)

	backend, err := NewDatabaseBackend(ctx, db, DialectMySQL, "")
	require.NoError(t, err)

	documents := []Document{
		{ID: "api", Module: "api", Title: "API", Content: "# API", Type: TypeDocumentation},
		{ID: "api_1", Module: "api", Title: "API", Content: "# API", Type: TypeSection, Section: "API"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `laradoc_search`")).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `laradoc_search`")).
		WithArgs("api", "api", "API", "# API", "", TypeDocumentation, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `laradoc_search`")).
		WithArgs("api_1", "api", "API", "# API", "", TypeSection, "API", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, backend.Replace(ctx, documents))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseBackend_MySQLReplaceRollsBack(t *testing.T) {
	ctx := context.Background()
	db, mock := newMySQLMock(t)

	backend, err := NewDatabaseBackend(ctx, db, DialectMySQL, "")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `laradoc_search`")).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `laradoc_search`")).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = backend.Replace(ctx, []Document{{ID: "api", Module: "api", Title: "API", Type: TypeDocumentation}})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseBackend_MySQLSearch(t *testing.T) {
	ctx := context.Background()
	db, mock := newMySQLMock(t)

	backend, err := NewDatabaseBackend(ctx, db, DialectMySQL, "")
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"doc_id", "module", "title", "content", "description", "type", "section", "score"}).
		AddRow("authentication_3", "authentication", "Authentication Configuration", "### Authentication Configuration", nil, TypeSection, "Authentication Configuration", 2.5)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE MATCH(title, content, description) AGAINST(? IN BOOLEAN MODE) AND module = ? AND type = ? ORDER BY score DESC LIMIT ?")).
		WithArgs("guards", "guards", "authentication", TypeSection, 5).
		WillReturnRows(rows)

	results, err := backend.Search(ctx, "guards", Filters{Module: "authentication", Type: TypeSection, Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "authentication_3", results[0].ID)
	assert.Equal(t, 2.5, results[0].Score)
	assert.Equal(t, "Authentication Configuration", results[0].Section)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseBackend_MySQLMissingTable(t *testing.T) {
	ctx := context.Background()
	db, mock := newMySQLMock(t)

	backend, err := NewDatabaseBackend(ctx, db, DialectMySQL, "")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(&mysql.MySQLError{Number: mysqlErrNoSuchTable, Message: "Table 'shop.laradoc_search' doesn't exist"})

	results, err := backend.Search(ctx, "guards", Filters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDatabaseBackend_MySQLCount(t *testing.T) {
	ctx := context.Background()
	db, mock := newMySQLMock(t)

	backend, err := NewDatabaseBackend(ctx, db, DialectMySQL, "")
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"type", "count"}).
		AddRow(TypeDocumentation, 4).
		AddRow(TypeSection, 2500)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT type, COUNT(*) FROM `laradoc_search` GROUP BY type")).WillReturnRows(rows)

	stats, err := backend.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalDocuments: 2504, Documentation: 4, Sections: 2500}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDatabaseBackend_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewDatabaseBackend(context.Background(), db, DialectMySQL, "bad-name; DROP")
	assert.Error(t, err)

	_, err = NewDatabaseBackend(context.Background(), db, "oracle", "")
	assert.Error(t, err)
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"login" "route"`, ftsQuery("login  route"))
	assert.Equal(t, `"say" """hi"""`, ftsQuery(`say "hi"`))
	assert.Equal(t, "", ftsQuery(" "))
}
