// Copyright 2025 Skillbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillbridge/skillbridge/internal/api"
)

// stubAPI is a fake skills API for handler tests. It records every request
// and serves canned responses per method+path.
type stubAPI struct {
	mu        sync.Mutex
	requests  []stubRequest
	responses map[string]stubResponse // key: "GET /skills"
	server    *httptest.Server
}

type stubRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   []byte
}

type stubResponse struct {
	Status int
	Body   string
}

func newStubAPI(t *testing.T) *stubAPI {
	t.Helper()
	stub := &stubAPI{responses: make(map[string]stubResponse)}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		stub.mu.Lock()
		stub.requests = append(stub.requests, stubRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})
		resp, ok := stub.responses[r.Method+" "+r.URL.Path]
		stub.mu.Unlock()
		if !ok {
			resp = stubResponse{Status: http.StatusOK, Body: `{"success":true,"data":{}}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(resp.Body))
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *stubAPI) respond(methodAndPath string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[methodAndPath] = stubResponse{Status: status, Body: body}
}

func (s *stubAPI) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubAPI) lastRequest(t *testing.T) stubRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("stub received no requests")
	}
	return s.requests[len(s.requests)-1]
}

// newTestServer builds a Server backed by the stub API.
func newTestServer(t *testing.T, stub *stubAPI) *Server {
	t.Helper()

	client, err := api.New(api.Config{
		APIKey:  "sk-test",
		BaseURL: stub.server.URL,
		Timeout: 5 * time.Second,
	}, api.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("creating API client: %v", err)
	}

	srv, err := NewServer(ServerConfig{
		Name:     "skillbridge-test",
		Version:  "test",
		LogLevel: "error",
		Client:   client,
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return srv
}

func makeCallToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeResult unmarshals a tool result's JSON text payload.
func decodeResult(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	text := extractText(t, result)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("tool result is not valid JSON: %v\n%s", err, text)
	}
}

func TestCreateLogger_ValidLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := createLogger(tt.level)
			if err != nil {
				t.Fatalf("createLogger(%q) returned error: %v", tt.level, err)
			}
			if logger == nil {
				t.Fatal("createLogger returned nil logger")
			}
			if !logger.Enabled(nil, tt.expected) {
				t.Errorf("logger not enabled for level %v", tt.expected)
			}
		})
	}
}

func TestCreateLogger_InvalidLevel(t *testing.T) {
	logger, err := createLogger("chatty")
	if err == nil {
		t.Error("createLogger should reject unknown levels")
	}
	if logger != nil {
		t.Error("createLogger should return nil logger on error")
	}
}

func TestNewServer_RequiresClient(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	if err == nil {
		t.Fatal("NewServer should fail without a client")
	}
}

func TestNewServer_InvalidLogLevel(t *testing.T) {
	stub := newStubAPI(t)
	client, err := api.New(api.Config{APIKey: "k", BaseURL: stub.server.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	_, err = NewServer(ServerConfig{Client: client, LogLevel: "chatty"})
	if err == nil {
		t.Fatal("NewServer should reject invalid log level")
	}
}

func TestNewServer_Defaults(t *testing.T) {
	stub := newStubAPI(t)
	srv := newTestServer(t, stub)

	if srv.MCPServer() == nil {
		t.Fatal("underlying MCP server should be set")
	}
}
