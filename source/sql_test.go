package source_test

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrek82/dbutils/accessor"
	"github.com/shrek82/dbutils/core"
	"github.com/shrek82/dbutils/source"
)

type Member struct {
	ID        int64
	Name      string
	Email     *string
	Score     float64
	Active    bool
	CreatedAt time.Time
	Nickname  string
}

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE members (
		ID INTEGER PRIMARY KEY,
		Name TEXT,
		Email TEXT,
		Score REAL,
		Active BOOLEAN,
		CreatedAt DATETIME,
		Extra TEXT
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO members (ID, Name, Email, Score, Active, CreatedAt, Extra) VALUES
		(1, 'Ann', 'ann@example.com', 1.5, 1, '2024-01-02 15:04:05', 'x'),
		(2, 'Bob', NULL, NULL, 0, NULL, NULL)`)
	require.NoError(t, err)

	return db, func() { db.Close() }
}

func newMapper() *core.Mapper {
	return core.NewMapper(&core.Options{Cache: accessor.NewCache(nil)})
}

func TestSQLiteCollect(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	m := newMapper()

	t.Run("AllRows", func(t *testing.T) {
		rows, err := db.Query("SELECT ID, Name, Email, Score, Active, CreatedAt, Extra FROM members ORDER BY ID")
		require.NoError(t, err)

		members, err := source.Collect[Member](m, rows)
		require.NoError(t, err)
		require.Len(t, members, 2)

		ann := members[0]
		assert.Equal(t, int64(1), ann.ID)
		assert.Equal(t, "Ann", ann.Name)
		require.NotNil(t, ann.Email)
		assert.Equal(t, "ann@example.com", *ann.Email)
		assert.Equal(t, 1.5, ann.Score)
		assert.True(t, ann.Active)
		assert.True(t, ann.CreatedAt.Equal(time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)), ann.CreatedAt.String())
		assert.Empty(t, ann.Nickname)

		bob := members[1]
		assert.Equal(t, "Bob", bob.Name)
		assert.Nil(t, bob.Email, "NULL leaves the pointer nil")
		assert.Zero(t, bob.Score)
		assert.False(t, bob.Active)
		assert.True(t, bob.CreatedAt.IsZero())
	})

	t.Run("Empty", func(t *testing.T) {
		rows, err := db.Query("SELECT ID, Name FROM members WHERE 1 = 0")
		require.NoError(t, err)

		members, err := source.Collect[Member](m, rows)
		require.NoError(t, err)
		assert.NotNil(t, members)
		assert.Empty(t, members)
	})

	t.Run("AliasesAreCaseSensitive", func(t *testing.T) {
		rows, err := db.Query("SELECT ID AS id, Name AS name FROM members WHERE ID = 1")
		require.NoError(t, err)

		members, err := source.Collect[Member](m, rows)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, Member{}, members[0])
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		rows, err := db.Query("SELECT 'abc' AS ID")
		require.NoError(t, err)

		members, err := source.Collect[Member](m, rows)
		assert.ErrorIs(t, err, core.ErrTypeMismatch)
		assert.Nil(t, members)
	})

	t.Run("CollectOne", func(t *testing.T) {
		rows, err := db.Query("SELECT ID, Name FROM members WHERE ID = ?", 2)
		require.NoError(t, err)

		bob, err := source.CollectOne[*Member](m, rows)
		require.NoError(t, err)
		assert.Equal(t, "Bob", bob.Name)

		rows, err = db.Query("SELECT ID, Name FROM members WHERE ID = ?", 99)
		require.NoError(t, err)
		_, err = source.CollectOne[Member](m, rows)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestSQLRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	rows, err := db.Query("SELECT ID, Name, Email, Name FROM members ORDER BY ID")
	require.NoError(t, err)
	defer rows.Close()

	r, err := source.FromSQL(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Name", "Email", "Name"}, r.Columns())

	assert.True(t, r.HasColumn("Email"))
	assert.False(t, r.HasColumn("email"))
	assert.Equal(t, core.Absent, r.Value("ID"), "no current row yet")

	require.True(t, r.Next())
	assert.Equal(t, int64(1), r.Value("ID"))
	// TEXT may surface as string or []byte depending on the driver build
	assert.EqualValues(t, "Ann", r.Value("Name"))

	require.True(t, r.Next())
	assert.Equal(t, core.Absent, r.Value("Email"))
	assert.Equal(t, core.Absent, r.Value("Missing"))

	assert.False(t, r.Next())
	assert.NoError(t, r.Err())

	_, err = source.FromSQL(nil)
	assert.Error(t, err)
}

func TestPostgresCollect(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set, skipping Postgres tests")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT 7 AS "ID", 'Ann' AS "Name", NULL::text AS "Email",
		2.5::float8 AS "Score", true AS "Active", now() AS "CreatedAt"`)
	require.NoError(t, err)

	members, err := source.Collect[Member](newMapper(), rows)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(7), members[0].ID)
	assert.Equal(t, "Ann", members[0].Name)
	assert.Nil(t, members[0].Email)
	assert.Equal(t, 2.5, members[0].Score)
	assert.True(t, members[0].Active)
	assert.False(t, members[0].CreatedAt.IsZero())
}

func TestMySQLCollect(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set, skipping MySQL tests")
	}

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer db.Close()

	// without parseTime the text protocol returns every cell as []byte
	rows, err := db.Query(`SELECT 7 AS ID, 'Ann' AS Name, NULL AS Email,
		2.5 AS Score, 1 AS Active, '2024-01-02 15:04:05' AS CreatedAt`)
	require.NoError(t, err)

	members, err := source.Collect[Member](newMapper(), rows)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(7), members[0].ID)
	assert.Equal(t, "Ann", members[0].Name)
	assert.Nil(t, members[0].Email)
	assert.Equal(t, 2.5, members[0].Score)
	assert.True(t, members[0].Active)
	assert.True(t, members[0].CreatedAt.Equal(time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)))
}
