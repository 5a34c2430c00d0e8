// Package config holds the process-wide settings of the header inspector.
// Values are read once at start-up from the environment and never change.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvPort               = "PORT"
	EnvAPIURL             = "APIURL"
	EnvPublicDir          = "PUBLIC_DIR"
	EnvLogLevel           = "LOG_LEVEL"
	EnvTraefikHost        = "TRAEFIK_HOST"
	EnvTraefikPrefix      = "TRAEFIK_PREFIX"
	EnvTraefikEntryPoints = "TRAEFIK_ENTRYPOINTS"
	EnvTraefikServiceHost = "TRAEFIK_SERVICE_HOST"
	EnvTraefikQueryParams = "TRAEFIK_QUERY_HEADERS"
)

// Defaults used when the environment does not provide a value.
const (
	DefaultPort               = 3000
	DefaultAPIURL             = "/api/test"
	DefaultPublicDir          = "public"
	DefaultLogLevel           = "info"
	DefaultTraefikEntryPoint  = "web"
	DefaultTraefikServiceHost = "host.docker.internal"
)

// Config is the immutable configuration record handed to the router.
type Config struct {
	// Port the HTTP server listens on
	Port int

	// APIURL is the echo endpoint the page script calls. It may be a path
	// ("/api/test") or an absolute URL pointing at another instance.
	APIURL string

	// PublicDir is served verbatim for paths no other route claims
	PublicDir string

	// LogLevel is one of debug, info, warn, error
	LogLevel string

	Traefik TraefikConfig
}

// TraefikConfig describes how the inspector is exposed behind Traefik.
// An empty Host disables the /traefik/config endpoint.
type TraefikConfig struct {
	Host        string
	PathPrefix  string
	EntryPoints []string
	ServiceHost string
	QueryParams []string
}

// Enabled reports whether a Traefik route should be published.
func (t TraefikConfig) Enabled() bool {
	return t.Host != ""
}

// Default returns a Config populated with built-in defaults only.
func Default() Config {
	return Config{
		Port:      DefaultPort,
		APIURL:    DefaultAPIURL,
		PublicDir: DefaultPublicDir,
		LogLevel:  DefaultLogLevel,
		Traefik: TraefikConfig{
			EntryPoints: []string{DefaultTraefikEntryPoint},
			ServiceHost: DefaultTraefikServiceHost,
		},
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// FromEnv loads the configuration from environment variables, with defaults.
// A malformed PORT is reported as an error but every other value is still
// loaded, so a caller can override the port. It does not validate; call
// Validate before use.
func FromEnv() (Config, error) {
	cfg := Default()

	var portErr error
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			portErr = fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		} else {
			cfg.Port = port
		}
	}

	cfg.APIURL = getenvDefault(EnvAPIURL, DefaultAPIURL)
	cfg.PublicDir = getenvDefault(EnvPublicDir, DefaultPublicDir)
	cfg.LogLevel = strings.ToLower(getenvDefault(EnvLogLevel, DefaultLogLevel))

	cfg.Traefik.Host = os.Getenv(EnvTraefikHost)
	cfg.Traefik.PathPrefix = os.Getenv(EnvTraefikPrefix)
	cfg.Traefik.ServiceHost = getenvDefault(EnvTraefikServiceHost, DefaultTraefikServiceHost)
	if v := os.Getenv(EnvTraefikEntryPoints); v != "" {
		cfg.Traefik.EntryPoints = SplitList(v)
	}
	cfg.Traefik.QueryParams = SplitList(os.Getenv(EnvTraefikQueryParams))

	return cfg, portErr
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	path, err := c.APIPath()
	if err != nil {
		return err
	}
	if strings.ContainsAny(path, "{} ") {
		return fmt.Errorf("api url path %q contains reserved characters", path)
	}
	if path == "/health" {
		return fmt.Errorf("api url %q collides with the health endpoint", c.APIURL)
	}
	if c.Traefik.PathPrefix != "" && !strings.HasPrefix(c.Traefik.PathPrefix, "/") {
		return fmt.Errorf("traefik prefix %q must start with /", c.Traefik.PathPrefix)
	}
	if c.Traefik.Enabled() && len(c.Traefik.EntryPoints) == 0 {
		return fmt.Errorf("traefik entrypoints cannot be empty")
	}
	return nil
}

// APIPath returns the path component of APIURL, which is where the echo
// endpoint is mounted on this server.
func (c Config) APIPath() (string, error) {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "", fmt.Errorf("api url %q must have an absolute path", c.APIURL)
	}
	return u.Path, nil
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
