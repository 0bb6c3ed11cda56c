package migrations

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(string, ...any) {}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

type stubMigrator struct {
	upErr   error
	release chan struct{}
	once    sync.Once
	closed  atomic.Bool
}

func (m *stubMigrator) Up() error {
	if m.release != nil {
		<-m.release
	}
	return m.upErr
}

func (m *stubMigrator) Close() (error, error) {
	m.once.Do(func() {
		m.closed.Store(true)
		if m.release != nil {
			close(m.release)
		}
	})
	return nil, nil
}

type captured struct {
	sourceURL  string
	driverName string
	cfg        Config
}

// stubFactories swaps the golang-migrate constructors for the duration of t.
func stubFactories(t *testing.T, m *stubMigrator, initErr error) *captured {
	t.Helper()
	origDriver, origMigrator := driverFactory, migratorFactory
	t.Cleanup(func() {
		driverFactory, migratorFactory = origDriver, origMigrator
	})

	got := &captured{}
	driverFactory = func(_ *sql.DB, cfg Config) (database.Driver, error) {
		got.cfg = cfg
		return nil, nil
	}
	migratorFactory = func(sourceURL, driverName string, _ database.Driver) (migrator, error) {
		got.sourceURL, got.driverName = sourceURL, driverName
		if initErr != nil {
			return nil, initErr
		}
		return m, nil
	}
	return got
}

func TestUp_RequiresDB(t *testing.T) {
	assert.Error(t, Up(context.Background(), nil, Config{}))
}

func TestUp_CancelledBeforeStartTouchesNothing(t *testing.T) {
	got := stubFactories(t, &stubMigrator{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Up(ctx, &sql.DB{}, Config{Dir: t.TempDir()})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got.sourceURL)
}

func TestUp_DeadlineClosesMigrator(t *testing.T) {
	m := &stubMigrator{release: make(chan struct{})}
	stubFactories(t, m, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Up(ctx, &sql.DB{}, Config{Dir: t.TempDir()})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, m.closed.Load())
}

func TestUp_Outcomes(t *testing.T) {
	cases := []struct {
		name    string
		upErr   error
		wantErr bool
		logged  string
	}{
		{name: "applied", logged: "Migrations applied successfully"},
		{name: "no change", upErr: migrate.ErrNoChange, logged: "No migrations to apply"},
		{name: "dirty", upErr: migrate.ErrDirty{Version: 1}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &stubMigrator{upErr: tc.upErr}
			stubFactories(t, m, nil)
			logger := &recordingLogger{}

			err := Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir(), Logger: logger})

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "migrations: up")
				assert.Contains(t, logger.errors, "Migrations failed")
			} else {
				require.NoError(t, err)
				assert.Contains(t, logger.infos, tc.logged)
			}
			assert.True(t, m.closed.Load())
		})
	}
}

func TestUp_DefaultsTableAndDriver(t *testing.T) {
	got := stubFactories(t, &stubMigrator{}, nil)

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()}))

	assert.Equal(t, DefaultTable, got.cfg.MigrationsTable)
	assert.Equal(t, DriverPostgres, got.driverName)
}

func TestUp_InitErrorIsWrapped(t *testing.T) {
	stubFactories(t, nil, errors.New("boom"))

	err := Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations: init: boom")
}

func TestUp_SourceURLEscapesPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my migrations dir")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	got := stubFactories(t, &stubMigrator{}, nil)

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: dir}))

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, fileURL(abs), got.sourceURL)
	assert.Contains(t, got.sourceURL, "my%20migrations%20dir")
}

func TestUp_PrefersDriverSubdirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DriverSQLite), 0o755))
	got := stubFactories(t, &stubMigrator{}, nil)

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: root, Driver: "sqlite"}))

	abs, err := filepath.Abs(filepath.Join(root, DriverSQLite))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, got.driverName)
	assert.Equal(t, DriverSQLite, got.cfg.Driver)
	assert.Equal(t, fileURL(abs), got.sourceURL)
}

func TestUp_UnsupportedDriver(t *testing.T) {
	err := Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir(), Driver: "oracle"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestNormalizeDriver(t *testing.T) {
	for in, want := range map[string]string{
		"":           DriverPostgres,
		"pg":         DriverPostgres,
		"PostgreSQL": DriverPostgres,
		"sqlite":     DriverSQLite,
		" sqlite3 ":  DriverSQLite,
	} {
		got, err := NormalizeDriver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestUp_AppliesWaitlistSchemaToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waitlist.db")
	migrationDB, err := sql.Open(DriverSQLite, path)
	require.NoError(t, err)

	// The sqlite3 migrate driver closes its connection when done.
	cfg := Config{Dir: filepath.Join("..", "..", DefaultDir), Driver: DriverSQLite}
	require.NoError(t, Up(context.Background(), migrationDB, cfg))

	db, err := sql.Open(DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO waitlist_entries (email, interest, submitted_at) VALUES ('a@example.com', 'beta', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO waitlist_entries (email, interest, submitted_at) VALUES ('A@Example.com', 'beta', CURRENT_TIMESTAMP)`)
	assert.Error(t, err, "email uniqueness is case-insensitive")

	_, err = db.Exec(`INSERT INTO waitlist_entries (email, interest, submitted_at) VALUES ('b@example.com', 'investor', CURRENT_TIMESTAMP)`)
	assert.Error(t, err, "interest outside the allowed set")
}
