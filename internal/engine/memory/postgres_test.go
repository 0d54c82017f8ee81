package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresMigrations(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS seen_urls").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.runMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordURL(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO seen_urls").
		WithArgs("https://a.com", "golang").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// A repeated pair hits ON CONFLICT DO NOTHING: zero rows, no error.
	mock.ExpectExec("INSERT INTO seen_urls").
		WithArgs("https://a.com", "golang").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ctx := context.Background()
	require.NoError(t, s.RecordURL(ctx, "https://a.com", "GoLang"))
	require.NoError(t, s.RecordURL(ctx, "https://a.com", "golang"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresURLSeen(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("https://a.com", "golang").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	seen, err := s.URLSeen(context.Background(), "https://a.com", "golang")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSeenURLs(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT url FROM seen_urls").
		WithArgs("golang").
		WillReturnRows(pgxmock.NewRows([]string{"url"}).AddRow("https://a.com").AddRow("https://b.com"))

	urls, err := s.SeenURLs(context.Background(), "Golang")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, urls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCachedReport(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM synthesis_cache").
		WithArgs("golang", "default").
		WillReturnRows(pgxmock.NewRows([]string{"report", "sources"}).AddRow("the report", `["https://a.com"]`))
	mock.ExpectQuery("FROM synthesis_cache").
		WithArgs("golang", "content_creator").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM synthesis_cache").
		WithArgs("golang", "academic_researcher").
		WillReturnRows(pgxmock.NewRows([]string{"report", "sources"}).AddRow("old", "{broken"))

	ctx := context.Background()
	r, err := s.CachedReport(ctx, "golang", "Default")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "the report", r.Report)
	assert.Equal(t, []string{"https://a.com"}, r.Sources)

	r, err = s.CachedReport(ctx, "golang", "content_creator")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = s.CachedReport(ctx, "golang", "academic_researcher")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Empty(t, r.Sources)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutReport(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO synthesis_cache").
		WithArgs("golang", "default", "report", `["https://a.com","https://b.com"]`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO synthesis_cache").
		WithArgs("golang", "default", "report", "[]").
		WillReturnError(errors.New("connection reset"))

	ctx := context.Background()
	require.NoError(t, s.PutReport(ctx, "GoLang", "default", "report", []string{"https://a.com", "https://b.com"}))
	err := s.PutReport(ctx, "golang", "default", "report", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put report")
	assert.NoError(t, mock.ExpectationsWereMet())
}
