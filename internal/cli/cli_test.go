// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAKE OLLAMA
// =============================================================================

type fakeOllama struct {
	*httptest.Server

	mu       sync.Mutex
	requests []map[string]any
}

// newFakeOllama serves /api/tags with models and answers /api/generate
// with generate.
func newFakeOllama(t *testing.T, models []string, generate http.HandlerFunc) *fakeOllama {
	t.Helper()
	f := &fakeOllama{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Ollama is running")
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type tag struct {
			Name string `json:"name"`
		}
		var body struct {
			Models []tag `json:"models"`
		}
		for _, m := range models {
			body.Models = append(body.Models, tag{Name: m})
		}
		json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()
		generate(w, r)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeOllama) lastRequest(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func streamLines(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fl, _ := w.(http.Flusher)
		for _, l := range lines {
			io.WriteString(w, l+"\n")
			if fl != nil {
				fl.Flush()
			}
		}
	}
}

var helloStream = streamLines(
	`{"response":"Hel","done":false}`,
	`{"response":"lo!","done":false}`,
	`{"response":"","done":true}`,
)

// =============================================================================
// HARNESS
// =============================================================================

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the command tree against a config file in a temp directory.
func runCLI(t *testing.T, a *app, stdin string, args ...string) cliResult {
	t.Helper()
	dir := t.TempDir()

	cmd := newRootCommand(a)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.toml")}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	a.close()
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// =============================================================================
// MODELS
// =============================================================================

func TestModels(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest", "gemma3:1b"}, helloStream)

	res := runCLI(t, &app{}, "", "--url", srv.URL, "models")
	require.NoError(t, res.err)
	assert.Equal(t, "llama3.2:latest\ngemma3:1b\n", res.stdout)
}

func TestModels_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := runCLI(t, &app{}, "", "--url", url, "models")
	require.NoError(t, res.err)
	assert.Equal(t, "gemma3:1b\n", res.stdout)
	assert.Contains(t, res.stderr, "Could not connect to Ollama. Check if it's running.")
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, helloStream)

	res := runCLI(t, &app{}, "", "--url", srv.URL, "ask", "say", "hello")
	require.NoError(t, res.err)
	assert.Equal(t, "Hello!\n", res.stdout)

	req := srv.lastRequest(t)
	assert.Equal(t, "llama3.2:latest", req["model"])
	assert.Equal(t, "say hello", req["prompt"])
	assert.Equal(t, true, req["stream"])
	assert.NotEmpty(t, req["system"])
	assert.Equal(t, map[string]any{"temperature": 0.7}, req["options"])
}

func TestAsk_FromStdin(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, helloStream)

	res := runCLI(t, &app{}, "  what is NDJSON?\r\n", "--url", srv.URL, "ask")
	require.NoError(t, res.err)
	assert.Equal(t, "what is NDJSON?", srv.lastRequest(t)["prompt"])
}

func TestAsk_Empty(t *testing.T) {
	srv := newFakeOllama(t, nil, helloStream)

	res := runCLI(t, &app{}, "   \n", "--url", srv.URL, "ask")
	assert.ErrorIs(t, res.err, errEmptyPrompt)
}

func TestAsk_HTTPError(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})

	res := runCLI(t, &app{}, "", "--url", srv.URL, "ask", "hi")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "Error: HTTP 404")
	assert.Empty(t, res.stdout)
}

func TestAsk_Truncated(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, streamLines(
		`{"response":"Half","done":false}`,
	))

	res := runCLI(t, &app{}, "", "--url", srv.URL, "ask", "hi")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "Error: response ended unexpectedly")
	assert.Equal(t, "Half\n", res.stdout)
}

func TestAsk_Interrupt(t *testing.T) {
	interrupts := make(chan os.Signal, 1)
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, func(w http.ResponseWriter, r *http.Request) {
		streamLines(`{"response":"partial","done":false}`)(w, r)
		interrupts <- os.Interrupt
		<-r.Context().Done()
	})

	res := runCLI(t, &app{interrupts: interrupts}, "", "--url", srv.URL, "ask", "hi")
	assert.ErrorIs(t, res.err, errCanceled)
}

// =============================================================================
// FLAGS
// =============================================================================

func TestFlags_OverrideConfig(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, helloStream)

	res := runCLI(t, &app{}, "", "--url", srv.URL, "--model", "qwen2.5:0.5b", "ask", "hi")
	require.NoError(t, res.err)
	assert.Equal(t, "qwen2.5:0.5b", srv.lastRequest(t)["model"])
}

func TestFlags_Invalid(t *testing.T) {
	res := runCLI(t, &app{}, "", "--url", "not a url", "models")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "ollama.url")
}

func TestTUI_RequiresTerminal(t *testing.T) {
	if IsTTY() && IsStdoutTTY() {
		t.Skip("running in a terminal")
	}
	srv := newFakeOllama(t, nil, helloStream)

	res := runCLI(t, &app{}, "", "--url", srv.URL, "tui")
	assert.ErrorIs(t, res.err, errNoTTY)
}

// =============================================================================
// CHAT (LINE MODE)
// =============================================================================

// scriptReader feeds prepared lines to the REPL, then reports EOF.
type scriptReader struct {
	lines   []string
	history []string
}

func (r *scriptReader) Prompt(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) AppendHistory(item string) { r.history = append(r.history, item) }
func (r *scriptReader) Close() error             { return nil }

func chatApp(in *scriptReader, interrupts chan os.Signal) *app {
	return &app{
		interrupts: interrupts,
		openReader: func(string) (lineReader, error) { return in, nil },
	}
}

func TestChat_Conversation(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest", "gemma3:1b"}, helloStream)
	in := &scriptReader{lines: []string{"hi there", "/history", "/quit", "never read"}}

	res := runCLI(t, chatApp(in, nil), "", "--url", srv.URL, "chat")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Welcome to Ollama Chat!")
	assert.Contains(t, res.stdout, "Model: llama3.2:latest")
	assert.Contains(t, res.stdout, "AI: Hello!\n")
	assert.Contains(t, res.stdout, "You: hi there")
	assert.Equal(t, []string{"hi there", "/history", "/quit"}, in.history)
	assert.Equal(t, []string{"never read"}, in.lines)
	assert.Equal(t, "hi there", srv.lastRequest(t)["prompt"])
}

func TestChat_Commands(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3.2:latest", "gemma3:1b"}, helloStream)
	in := &scriptReader{lines: []string{"/models", "/model gemma3:1b", "/model", "/bogus", "/help", "hello"}}

	res := runCLI(t, chatApp(in, nil), "", "--url", srv.URL, "chat")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "* llama3.2:latest\n  gemma3:1b\n")
	assert.Contains(t, res.stdout, "Model: gemma3:1b")
	assert.Contains(t, res.stdout, "Unknown command: /bogus")
	assert.Contains(t, res.stdout, "/history")
	assert.Equal(t, "gemma3:1b", srv.lastRequest(t)["model"])
}

func TestChat_Unreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	in := &scriptReader{lines: []string{"hello", "/history"}}

	res := runCLI(t, chatApp(in, nil), "", "--url", url, "chat")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Could not connect to Ollama. Check if it's running.")
	assert.Contains(t, res.stdout, "Model: gemma3:1b")
	assert.Contains(t, res.stdout, "Could not connect to Ollama. Make sure it's running.")
	// The failed turn keeps the user message.
	assert.Contains(t, res.stdout, "You: hello")
}

func TestChat_Interrupt(t *testing.T) {
	interrupts := make(chan os.Signal, 1)
	srv := newFakeOllama(t, []string{"llama3.2:latest"}, func(w http.ResponseWriter, r *http.Request) {
		streamLines(`{"response":"Once upon","done":false}`)(w, r)
		interrupts <- os.Interrupt
		<-r.Context().Done()
	})
	in := &scriptReader{lines: []string{"tell me a story", "/history"}}

	res := runCLI(t, chatApp(in, interrupts), "", "--url", srv.URL, "chat")
	require.NoError(t, res.err)

	idx := strings.Index(res.stdout, "[Canceled]")
	require.GreaterOrEqual(t, idx, 0, res.stdout)
	// Nothing was logged for the canceled reply.
	after := res.stdout[idx:]
	assert.Contains(t, after, "You: tell me a story")
	assert.NotContains(t, after, "AI: ")
}
