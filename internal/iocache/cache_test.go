package iocache

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/debrief/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetStores clears the global init guards so each test can call InitStores.
func resetStores(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite file", func(t *testing.T) {
		resetStores(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
		assert.NotNil(t, Manager.GetTableStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseStores()
		_, err := os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetStores(t)
		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", schema.NoneBackend, ""))
		}
		CloseStores()
		CloseStores()
	})

	t.Run("empty backends leave stores unset", func(t *testing.T) {
		resetStores(t)
		require.NoError(t, InitStores("", "", "", ""))
		assert.Nil(t, Manager.GetTableStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("unsupported cache backend", func(t *testing.T) {
		resetStores(t)
		err := InitStores("redis", "", "", "")
		assert.ErrorContains(t, err, "failed to initialize table cache")
	})

	t.Run("unsupported history backend", func(t *testing.T) {
		resetStores(t)
		err := InitStores(schema.SQLiteBackend, ":memory:", "redis", "")
		assert.ErrorContains(t, err, "failed to initialize history store")
		assert.Nil(t, Manager.GetTableStore(), "a failed init must not publish stores")
	})
}

func TestNoneBackendStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("key", []byte("value"), 1, 123456789))
	_, _, _, err = store.Get("key")
	assert.Equal(t, sql.ErrNoRows, err)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestSQLiteCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.Equal(t, sql.ErrNoRows, err)

	require.NoError(t, store.Set("fingerprint", []byte("v1"), 1, 1000))
	value, version, ts, err := store.Get("fingerprint")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1000), ts)

	// Set replaces an existing key
	require.NoError(t, store.Set("fingerprint", []byte("v2"), 2, 2000))
	value, version, ts, err = store.Get("fingerprint")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(2000), ts)
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		for key, ts := range map[string]int64{"key1": 1000, "key2": 2000, "key3": 1500} {
			require.NoError(t, store.Set(key, []byte("value"), 1, ts))
		}

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("empty", func(t *testing.T) {
		store, err := NewCacheStore("test_empty_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 0, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
	})
}

func TestNewCacheStoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		backend schema.DatabaseBackend
		connStr string
	}{
		{"invalid table name", "invalid-name", schema.SQLiteBackend, ":memory:"},
		{"empty table name", "", schema.SQLiteBackend, ":memory:"},
		{"unsupported backend", "test_table", "unsupported", ""},
		{"malformed mysql dsn", "test_table", schema.MySQLBackend, "not a dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCacheStore(tt.table, tt.backend, tt.connStr)
			assert.Error(t, err)
		})
	}
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"debrief_table_cache", false},
		{"_private", false},
		{"Table2", false},
		{"", true},
		{"2table", true},
		{"table-name", true},
		{"table; DROP TABLE users", true},
		{`table"name`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
}

func TestGetUpsertQuery(t *testing.T) {
	assert.Contains(t, getUpsertQuery("t", schema.SQLiteBackend), "INSERT OR REPLACE")
	assert.Contains(t, getUpsertQuery("t", schema.MySQLBackend), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, getUpsertQuery("t", schema.PostgreSQLBackend), "ON CONFLICT (cache_key)")
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("t", schema.SQLiteBackend), "cache_value BLOB")
	assert.Contains(t, getCreateTableQuery("t", schema.MySQLBackend), "cache_key VARCHAR(255)")
	assert.Contains(t, getCreateTableQuery("t", schema.PostgreSQLBackend), "cache_value BYTEA")
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:pass@tcp(localhost:3306)/debrief", true)
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")

	_, err = mysqlDSN("user:pass@tcp(localhost:3306", false)
	assert.Error(t, err)
}

func TestSQLTimeScan(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

	var st sqlTime
	require.NoError(t, st.Scan(when.Format(time.RFC3339Nano)))
	assert.True(t, st.Time.Equal(when))

	require.NoError(t, st.Scan([]byte(when.Format(time.RFC3339Nano))))
	assert.True(t, st.Time.Equal(when))

	require.NoError(t, st.Scan(when))
	assert.NotNil(t, st.ptr())

	require.NoError(t, st.Scan(nil))
	assert.Nil(t, st.ptr())

	assert.Error(t, st.Scan("yesterday"))
	assert.Error(t, st.Scan(42))
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "clear.db")
		store, err := NewCacheStore(tableCacheName, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Set("k", []byte("v"), 1, 1))
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "missing.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("unsupported", "", ""))
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetStores(t)
	require.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", schema.SQLiteBackend, ":memory:"))

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.NotNil(t, Manager.GetTableStore())
			assert.NotNil(t, Manager.GetHistoryStore())
		})
	}
	wg.Wait()
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    2,
		LastEntryTime:   time.Date(2024, 2, 1, 9, 0, 0, 0, time.Local),
		OldestEntryTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		TableSizeBytes:  4096,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 2")
	assert.Contains(t, out, "Last Entry: 2024-02-01 09:00:00")
	assert.Contains(t, out, "Oldest Entry: 2024-01-01 09:00:00")
	assert.Contains(t, out, "Table Size: 4096 bytes")
}

func TestTimeArgOrdering(t *testing.T) {
	whole := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fraction := whole.Add(500 * time.Millisecond)

	a := timeArg(whole, schema.SQLiteBackend).(string)
	b := timeArg(fraction, schema.SQLiteBackend).(string)
	assert.Less(t, a, b)
	assert.Equal(t, whole, timeArg(whole.In(time.FixedZone("x", 3600)), schema.PostgreSQLBackend))
}
