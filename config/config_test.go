package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{EnvPort, EnvAPIURL, EnvPublicDir, EnvLogLevel,
		EnvTraefikHost, EnvTraefikPrefix, EnvTraefikEntryPoints, EnvTraefikServiceHost, EnvTraefikQueryParams} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "/api/test", cfg.APIURL)
	assert.Equal(t, "public", cfg.PublicDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Traefik.Enabled())
	assert.Equal(t, []string{"web"}, cfg.Traefik.EntryPoints)
	assert.Equal(t, "host.docker.internal", cfg.Traefik.ServiceHost)
	assert.Empty(t, cfg.Traefik.QueryParams)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvAPIURL, "https://inspector.example.com/debug/echo")
	t.Setenv(EnvPublicDir, "/srv/www")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvTraefikHost, "inspect.example.com")
	t.Setenv(EnvTraefikPrefix, "/inspect")
	t.Setenv(EnvTraefikEntryPoints, "web, websecure")
	t.Setenv(EnvTraefikServiceHost, "inspector")
	t.Setenv(EnvTraefikQueryParams, "version,,lang ")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "/srv/www", cfg.PublicDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Traefik.Enabled())
	assert.Equal(t, "/inspect", cfg.Traefik.PathPrefix)
	assert.Equal(t, []string{"web", "websecure"}, cfg.Traefik.EntryPoints)
	assert.Equal(t, "inspector", cfg.Traefik.ServiceHost)
	assert.Equal(t, []string{"version", "lang"}, cfg.Traefik.QueryParams)

	path, err := cfg.APIPath()
	require.NoError(t, err)
	assert.Equal(t, "/debug/echo", path)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvInvalidPort(t *testing.T) {
	t.Setenv(EnvPort, "three-thousand")
	t.Setenv(EnvAPIURL, "/debug/echo")

	cfg, err := FromEnv()
	assert.Error(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "/debug/echo", cfg.APIURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "relative api url",
			mutate:  func(c *Config) { c.APIURL = "api/test" },
			wantErr: true,
		},
		{
			name:    "absolute url without path",
			mutate:  func(c *Config) { c.APIURL = "http://example.com" },
			wantErr: true,
		},
		{
			name:    "api url with wildcard braces",
			mutate:  func(c *Config) { c.APIURL = "/api/{id}" },
			wantErr: true,
		},
		{
			name:    "api url on health",
			mutate:  func(c *Config) { c.APIURL = "/health" },
			wantErr: true,
		},
		{
			name:    "traefik prefix without slash",
			mutate:  func(c *Config) { c.Traefik.Host = "a.example.com"; c.Traefik.PathPrefix = "inspect" },
			wantErr: true,
		},
		{
			name:    "traefik without entrypoints",
			mutate:  func(c *Config) { c.Traefik.Host = "a.example.com"; c.Traefik.EntryPoints = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
