package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "WHODUNIT_ADDR":
		return "localhost:0", true
	case "WHODUNIT_SQLITE_URL":
		return ":memory:", true
	default:
		return "", false
	}
}

type testServer struct {
	url    string
	client http.Client
}

// startTestServer starts the real server on a dynamic port, waits for it to
// be ready, and returns a handle for driving it.
func startTestServer(t *testing.T, w io.Writer, lookupEnv func(string) (string, bool)) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{ //nolint:exhaustruct
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{} //nolint:exhaustruct // This is unreachable.
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		require.NoError(t, waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)))
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		return testServer{
			url:    serverURL,
			client: http.Client{Jar: jar}, //nolint:exhaustruct
		}
	}
}

func (s *testServer) URL() string {
	return s.url
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// GetJSON fetches a URL, requires HTTP 200 and decodes the body into v.
func (s *testServer) GetJSON(t *testing.T, urlPath string, v any) {
	t.Helper()
	resp := s.Get(t, urlPath)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// PostJSON posts a JSON body to a URL and returns the response.
func (s *testServer) PostJSON(t *testing.T, urlPath string, body string) *http.Response {
	t.Helper()
	resp, err := s.client.Post(s.url+urlPath, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

// wsEvent mirrors every server-to-client frame for test assertions.
type wsEvent struct {
	Type          string      `json:"type"`
	Room          models.Room `json:"room"`
	Msg           string      `json:"msg"`
	Code          string      `json:"code"`
	Character     string      `json:"character"`
	Question      string      `json:"question"`
	CorrelationID string      `json:"correlationId"`
	Answer        string      `json:"answer"`
	Deadline      time.Time   `json:"deadline"`
}

// DialWS opens a websocket connection to the server.
func (s *testServer) DialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(s.url, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		require.NoError(t, resp.Body.Close())
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, event map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(event))
}

// readEvent reads the next frame, failing the test if none arrives in time.
func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event wsEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

// readEventOfType skips frames until one of the wanted type arrives. System
// notices interleave with everything, so tests rarely care about exact order.
func readEventOfType(t *testing.T, conn *websocket.Conn, eventType string) wsEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		event := readEvent(t, conn)
		if event.Type == eventType {
			return event
		}
	}
	t.Fatalf("no %q event arrived", eventType)
	return wsEvent{} //nolint:exhaustruct // This is unreachable.
}
