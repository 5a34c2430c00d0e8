package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sistemica/header-inspector/config"
	"github.com/sistemica/header-inspector/inspect"
)

const (
	healthCheckTimeout  = 10 * time.Second
	healthCheckInterval = 50 * time.Millisecond
)

// waitForHTTP waits for a HTTP endpoint to be available
func waitForHTTP(ctx context.Context, url string) error {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s", url)
		case <-ticker.C:
			resp, err := http.Get(url)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return nil
				}
			}
		}
	}
}

// syncBuffer is a bytes.Buffer shared between the server and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRun(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping server test in short mode")
	}

	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.PublicDir = t.TempDir()
	require.NoError(t, cfg.Validate())

	var transcript syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, zap.NewNop(), inspect.NewTranscript(&transcript))
	}()

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer waitCancel()
	require.NoError(t, waitForHTTP(waitCtx, baseURL+"/health"), "Server health check failed")

	t.Run("page", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "Request Headers and Cookies")
	})

	t.Run("echo", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, baseURL+"/api/test", strings.NewReader(`{"message":"hi"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cookie", "session=abc")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"receivedBody":{"message":"hi"}`)
		assert.Contains(t, string(body), `"receivedCookies":{"session":"abc"}`)
	})

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Contains(t, transcript.String(), "session: abc\n")
}

func TestRunInvalidAPIURL(t *testing.T) {
	cfg := config.Default()
	cfg.APIURL = "relative/path"

	err := run(context.Background(), cfg, zap.NewNop(), zap.NewNop())
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warning", "error", "bogus", ""} {
		logger, err := initLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
}

func TestRootCmdFlags(t *testing.T) {
	t.Setenv(config.EnvPort, "4000")
	t.Setenv(config.EnvAPIURL, "")

	cmd := newRootCmd(true)
	require.NoError(t, cmd.ParseFlags([]string{"--api-url", "/debug/echo", "--traefik-entrypoints", "web,websecure"}))

	port, err := cmd.Flags().GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 4000, port)

	apiURL, err := cmd.Flags().GetString("api-url")
	require.NoError(t, err)
	assert.Equal(t, "/debug/echo", apiURL)

	entryPoints, err := cmd.Flags().GetStringSlice("traefik-entrypoints")
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "websecure"}, entryPoints)
}

func TestRootCmdRejectsInvalidConfig(t *testing.T) {
	t.Setenv(config.EnvPort, "")

	cmd := newRootCmd(true)
	cmd.SetArgs([]string{"--port", "0"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRootCmdPortFlagOverridesMalformedEnv(t *testing.T) {
	t.Setenv(config.EnvPort, "not-a-port")

	t.Run("without flag", func(t *testing.T) {
		cmd := newRootCmd(true)
		cmd.SetArgs([]string{})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid PORT")
	})

	t.Run("with flag", func(t *testing.T) {
		cmd := newRootCmd(true)
		// an out of range port stops the command at validation, after the
		// env error has been skipped
		cmd.SetArgs([]string{"--port", "0"})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)

		err := cmd.Execute()
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "invalid PORT")
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
