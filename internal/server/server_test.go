package server

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/iamdejan/visa-tracker-sse/internal/config"
	"github.com/iamdejan/visa-tracker-sse/internal/relay"
)

// testConfig returns a config with a temporary assets directory and
// limits high enough to stay out of the way.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	assetsDir := t.TempDir()
	writeAsset := func(name, content string) {
		t.Helper()
		err := os.WriteFile(filepath.Join(assetsDir, name), []byte(content), 0o644)
		require.NoError(t, err)
	}
	writeAsset("index.html", "<html><body>visa tracker landing</body></html>")
	writeAsset("fallback.html", "<html><body>fallback page</body></html>")

	return &config.Config{
		AppEnv:                    "test",
		Port:                      "0",
		LogLevel:                  "error",
		LogFormat:                 "text",
		TopicCapacity:             64,
		KeepAliveInterval:         time.Minute,
		AssetsDir:                 assetsDir,
		CORSAllowedOrigins:        "*",
		MaxStreamConnections:      100,
		MaxStreamConnectionsPerIP: 100,
		StreamConnectionRate:      1000,
		StreamConnectionBurst:     1000,
	}
}

// newTestServer builds a server plus a running HTTP test server.
func newTestServer(t *testing.T, clock clockwork.Clock) (*Server, *httptest.Server) {
	t.Helper()

	cfg := testConfig(t)
	topic := relay.NewTopic(cfg.TopicCapacity)

	srv, err := NewServer(cfg, topic, clock)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)

	return srv, ts
}

// sseStream opens the SSE endpoint and returns a reader positioned after
// the response headers, so a subscription is guaranteed to be active.
func sseStream(t *testing.T, baseURL string) *bufio.Reader {
	t.Helper()

	resp, err := http.Get(baseURL + "/events")
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return bufio.NewReader(resp.Body)
}

// readFrame reads lines until the next data frame and returns its payload.
func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, found := strings.CutPrefix(strings.TrimRight(line, "\n"), "data: "); found {
			return data
		}
	}
	t.Fatal("no data frame received before deadline")
	return ""
}
