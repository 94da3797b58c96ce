package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/notify"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	migrateErr error
	migrated   bool
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func (m *fakeManager) Users(dbx.DBTX) users.Repository { return nil }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	return c
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestNewApp_RunsMigrations(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()
	m := &fakeManager{}

	app, err := newApp(context.Background(), testConfig(), logging.Discard(), db, m)
	require.NoError(t, err)
	assert.True(t, m.migrated)
	assert.NotNil(t, app.userService)
	assert.Empty(t, app.closers)
}

func TestNewApp_MigrationError(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	_, err := newApp(context.Background(), testConfig(), logging.Discard(), db, &fakeManager{migrateErr: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
}

func TestNewApp_RedisLimiterWhenConfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	db, _ := newMockDB(t)
	defer db.Close()

	c := testConfig()
	c.RedisAddr = mr.Addr()

	app, err := newApp(context.Background(), c, logging.Discard(), db, &fakeManager{})
	require.NoError(t, err)
	assert.Len(t, app.closers, 1)
}

func TestNotifier_Selection(t *testing.T) {
	c := testConfig()
	app := &App{config: c, logger: logging.Discard()}
	assert.IsType(t, &notify.LogNotifier{}, app.notifier())

	c.SMTPHost = "smtp.example.com"
	assert.IsType(t, &notify.EmailNotifier{}, app.notifier())
}

func TestRun_StopsOnCancel(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectClose()

	app, err := newApp(context.Background(), testConfig(), logging.Discard(), db, &fakeManager{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ServerErrorStopsApp(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectClose()

	c := testConfig()
	c.EndpointAddrHTTP = "bad::address"

	app, err := newApp(context.Background(), c, logging.Discard(), db, &fakeManager{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("app did not stop")
	}
}
