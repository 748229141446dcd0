package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestConnectionConfigFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected ConnectionConfig
	}{
		{
			name:     "defaults",
			env:      map[string]string{},
			expected: DefaultConnectionConfig(),
		},
		{
			name: "overrides",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "50",
				"DB_MAX_IDLE_CONNS":     "5",
				"DB_CONN_MAX_LIFETIME":  "2h",
				"DB_CONN_MAX_IDLE_TIME": "10m",
			},
			expected: ConnectionConfig{
				MaxOpenConns:    50,
				MaxIdleConns:    5,
				ConnMaxLifetime: 2 * time.Hour,
				ConnMaxIdleTime: 10 * time.Minute,
			},
		},
		{
			name: "invalid values keep defaults",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":    "-1",
				"DB_MAX_IDLE_CONNS":    "abc",
				"DB_CONN_MAX_LIFETIME": "forever",
			},
			expected: DefaultConnectionConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME"} {
				t.Setenv(key, tt.env[key])
			}
			assert.Equal(t, tt.expected, ConnectionConfigFromEnv())
		})
	}
}

func TestConnectionConfig_Configure(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ConnectionConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: time.Minute, ConnMaxIdleTime: time.Second}.Configure(db)
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "", DefaultConnectionConfig())
	assert.Error(t, err)
}
