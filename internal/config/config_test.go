package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/routechain/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log_level: debug
http:
  addr: ":9090"
redis:
  addr: "localhost:6379"
  max_len: "500"
metrics:
  enabled: true
routes:
  - name: A
    enter:
      - do: log
        args: {message: hello}
  - name: A.B
    guard:
      when: "!query:token"
      reject: "login required"
engines:
  - mount: E
    routes:
      - name: A
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(500), cfg.Redis.MaxLen, "weakly typed input")
	assert.Equal(t, DefaultRedisStream, cfg.Redis.Stream)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsScope, cfg.Metrics.Namespace)

	require.Len(t, cfg.Routes, 2)
	assert.Equal(t, "A", cfg.Routes[0].Name)
	assert.Equal(t, []script.ItemSpec{{Do: "log", Args: map[string]any{"message": "hello"}}}, cfg.Routes[0].Enter)
	require.NotNil(t, cfg.Routes[1].Guard)
	assert.Equal(t, "login required", cfg.Routes[1].Guard.Reject)
	require.Len(t, cfg.Engines, 1)
	assert.Equal(t, "E", cfg.Engines[0].Mount)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "malformed yaml", doc: "routes: [", want: "failed to parse config"},
		{name: "unknown key", doc: "log_levle: debug", want: "failed to decode config"},
		{name: "bad level", doc: "log_level: loud", want: "unknown log level"},
		{name: "negative max len", doc: "redis: {max_len: -1}", want: "max_len"},
		{name: "unknown action", doc: "routes: [{name: A, enter: [{do: explode}]}]", want: "unknown action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routechain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
