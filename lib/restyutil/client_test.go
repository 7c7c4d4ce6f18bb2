package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func newServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("X-Seen-Agent", r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClientDefaults(t *testing.T) {
	server := newServer(t)
	out := &memoryOutput{}
	client := NewClient(ClientOptions{Output: out})

	require.Equal(t, time.Second*30, client.GetClient().Timeout)

	res, err := client.R().Get(server.URL + "/recettes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, DefaultUserAgent, res.Header().Get("X-Seen-Agent"))

	require.Len(t, out.messages, 1)
	dump := out.messages["1"]
	require.Contains(t, dump, "---- REQUEST ----")
	require.Contains(t, dump, "GET "+server.URL+"/recettes")
	require.Contains(t, dump, "---- RESPONSE ----")
	require.Contains(t, dump, "<html><body>ok</body></html>")
}

func TestNewClientCustomAgent(t *testing.T) {
	server := newServer(t)
	client := NewClient(ClientOptions{UserAgent: "recipescrape-test/1.0", Timeout: time.Second})

	res, err := client.R().Get(server.URL + "/missing")
	require.NoError(t, err)
	require.True(t, res.IsError())
	require.Equal(t, "recipescrape-test/1.0", res.Header().Get("X-Seen-Agent"))
	require.Equal(t, time.Second, client.GetClient().Timeout)
}

func TestRateLimit(t *testing.T) {
	server := newServer(t)
	client := NewClient(ClientOptions{RequestsPerSecond: 10})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.R().Get(server.URL)
		require.NoError(t, err)
	}
	// the first request is free, the two following wait ~100ms each
	require.GreaterOrEqual(t, time.Since(start), time.Millisecond*150)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("7", "contents")
	contents, err := os.ReadFile(filepath.Join(dir, "7.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("B", "2")
	headers.Add("A", "1")
	headers.Add("A", "3")
	require.Equal(t, "A: 1\nA: 3\nB: 2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}
