package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Vamsibolem10/Mini-Researcher/internal/config"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store/memory"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store/postgres"
	"github.com/Vamsibolem10/Mini-Researcher/internal/tui"
	"github.com/Vamsibolem10/Mini-Researcher/internal/workflows"
)

type stubServer struct {
	err   error
	addrs *[]string
}

func (s stubServer) Start(ctx context.Context, addr string) error {
	if s.addrs != nil {
		*s.addrs = append(*s.addrs, addr)
	}
	return s.err
}

func captureResearcherDeps() func() {
	origLoadConfig := loadConfig
	origOpenPostgres := openPostgres
	origDialTemporal := dialTemporal
	origNewServer := newServer
	origRunProgram := runProgram
	origNotifyContext := notifyContext

	return func() {
		loadConfig = origLoadConfig
		openPostgres = origOpenPostgres
		dialTemporal = origDialTemporal
		newServer = origNewServer
		runProgram = origRunProgram
		notifyContext = origNotifyContext
	}
}

func testConfig(serviceURL string) config.Config {
	return config.Config{
		ServiceURL:        serviceURL,
		ListenPort:        "3000",
		TemporalAddress:   "localhost:7233",
		TemporalTaskQueue: workflows.DefaultTaskQueue,
		Runner:            config.RunnerDirect,
		DefaultMode:       string(research.ModeBalanced),
		FollowupTimeout:   5 * time.Second,
		HistoryLimit:      20,
		LogLevel:          "error",
	}
}

func useConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	restore := captureResearcherDeps()
	t.Cleanup(restore)
	loadConfig = func() (config.Config, error) {
		return cfg, nil
	}
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// researchService fakes the remote service. Bodies posted to /research are
// delivered on the returned channel.
func researchService(t *testing.T, questions []string, result string) (*httptest.Server, <-chan map[string]any) {
	t.Helper()
	bodies := make(chan map[string]any, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/followup":
			_ = json.NewEncoder(w).Encode(map[string]any{"questions": questions})
		case "/research":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			bodies <- body
			_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, bodies
}

func TestAskWithoutQuestions(t *testing.T) {
	srv, bodies := researchService(t, nil, "Report text")
	useConfig(t, testConfig(srv.URL))

	out, err := execute("ask", "--raw", "--mode", "fast", "Impact", "of", "AI")
	require.NoError(t, err)
	require.Equal(t, "Report text\n", out)

	body := <-bodies
	require.Equal(t, "Impact of AI", body["query"])
	require.Equal(t, "fast", body["mode"])
	require.EqualValues(t, 3, body["breadth"])
	require.EqualValues(t, 2, body["depth"])
	require.Equal(t, []any{}, body["followup_answers"])
}

func TestAskAnswersFollowups(t *testing.T) {
	srv, bodies := researchService(t, []string{"Which region?", "Which years?"}, "Report text")
	useConfig(t, testConfig(srv.URL))

	out, err := execute("ask", "--raw", "--answer", "Global", "--breadth", "6", "Impact of AI on climate modeling")
	require.NoError(t, err)
	require.Contains(t, out, "Q: Which region?\nA: Global\n")
	require.Contains(t, out, "Q: Which years?\nA: No answer provided\n")
	require.Contains(t, out, "Report text")

	body := <-bodies
	require.Equal(t, "balanced", body["mode"])
	require.EqualValues(t, 6, body["breadth"])
	require.EqualValues(t, 3, body["depth"])
	require.Equal(t, []any{
		map[string]any{"question": "Which region?", "answer": "Global"},
		map[string]any{"question": "Which years?", "answer": "No answer provided"},
	}, body["followup_answers"])
}

func TestAskRendersMarkdown(t *testing.T) {
	srv, _ := researchService(t, nil, "# Findings\n\nReport text")
	useConfig(t, testConfig(srv.URL))

	out, err := execute("ask", "climate")
	require.NoError(t, err)
	require.Contains(t, out, "Findings")
	require.Contains(t, out, "Report text")
}

func TestAskRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	useConfig(t, testConfig(srv.URL))

	_, err := execute("ask", "climate")
	require.EqualError(t, err, "Failed to get followup questions - Service Unavailable")
}

func TestAskRejectsBlankQuery(t *testing.T) {
	srv, _ := researchService(t, nil, "unused")
	useConfig(t, testConfig(srv.URL))

	_, err := execute("ask", "   ")
	require.ErrorIs(t, err, research.ErrEmptyQuery)
}

func TestAskRejectsOutOfRangeOverrides(t *testing.T) {
	srv, _ := researchService(t, nil, "unused")
	useConfig(t, testConfig(srv.URL))

	_, err := execute("ask", "--mode", "fast", "--depth", "9", "climate")
	var bounds research.BoundsError
	require.ErrorAs(t, err, &bounds)
}

func TestModes(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))

	out, err := execute("modes")
	require.NoError(t, err)
	require.Contains(t, out, "fast - Fast\n")
	require.Contains(t, out, "breadth 5 (max 7), depth 3 (max 3)")
	require.Contains(t, out, "comprehensive - Comprehensive\n")
	require.Contains(t, out, "  - Recursive deep dives\n")
}

func TestHistoryEmpty(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))

	out, err := execute("history")
	require.NoError(t, err)
	require.Equal(t, "No research history.\n", out)
}

func TestHistoryRejectsNegativeLimit(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))

	_, err := execute("history", "--limit", "-1")
	require.Error(t, err)
}

func TestHistoryShowMissing(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))

	_, err := execute("history", "show", "missing")
	require.ErrorContains(t, err, "history record missing not found")
}

func TestHistoryDelete(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))

	out, err := execute("history", "delete", "rec-1")
	require.NoError(t, err)
	require.Equal(t, "Deleted rec-1\n", out)
}

func TestRootRunsTUI(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))
	var model tea.Model
	runProgram = func(m tea.Model) error {
		model = m
		return nil
	}

	_, err := execute()
	require.NoError(t, err)
	require.IsType(t, tui.Model{}, model)
}

func TestRootProgramFailure(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))
	runProgram = func(tea.Model) error {
		return errors.New("no tty")
	}

	_, err := execute()
	require.EqualError(t, err, "no tty")
}

func TestServe(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))
	var addrs []string
	newServer = func(a *app) server {
		require.NotNil(t, a.orch)
		require.NotNil(t, a.broker)
		return stubServer{addrs: &addrs}
	}

	_, err := execute("serve")
	require.NoError(t, err)
	_, err = execute("serve", "--port", "4100")
	require.NoError(t, err)
	require.Equal(t, []string{":3000", ":4100"}, addrs)
}

func TestServeShutdownIsClean(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))
	newServer = func(*app) server {
		return stubServer{err: http.ErrServerClosed}
	}

	_, err := execute("serve")
	require.NoError(t, err)
}

func TestServeFailure(t *testing.T) {
	useConfig(t, testConfig("http://localhost:0"))
	newServer = func(*app) server {
		return stubServer{err: errors.New("address in use")}
	}

	_, err := execute("serve")
	require.EqualError(t, err, "address in use")
}

func TestConfigLoadFailure(t *testing.T) {
	restore := captureResearcherDeps()
	t.Cleanup(restore)
	loadConfig = func() (config.Config, error) {
		return config.Config{}, errors.New("config load failed")
	}

	_, err := execute("modes")
	require.EqualError(t, err, "config load failed")
}

func TestNewAppUsesMemoryStoreByDefault(t *testing.T) {
	a, err := newApp(testConfig("http://localhost:0"), zap.NewNop())
	require.NoError(t, err)
	defer a.close()
	require.IsType(t, &memory.MemoryStore{}, a.store)
}

func TestNewAppOpensPostgres(t *testing.T) {
	restore := captureResearcherDeps()
	t.Cleanup(restore)
	var opened string
	openPostgres = func(conn string) (*postgres.PostgresStore, error) {
		opened = conn
		return &postgres.PostgresStore{}, nil
	}
	cfg := testConfig("http://localhost:0")
	cfg.PostgresURL = "postgres://example"

	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)
	a.close()
	require.Equal(t, "postgres://example", opened)
	require.IsType(t, &postgres.PostgresStore{}, a.store)
}

func TestNewAppPostgresFailure(t *testing.T) {
	restore := captureResearcherDeps()
	t.Cleanup(restore)
	openPostgres = func(string) (*postgres.PostgresStore, error) {
		return nil, errors.New("connection refused")
	}
	cfg := testConfig("http://localhost:0")
	cfg.PostgresURL = "postgres://example"

	_, err := newApp(cfg, zap.NewNop())
	require.ErrorContains(t, err, "open history store: connection refused")
}

func TestNewAppTemporalRunner(t *testing.T) {
	restore := captureResearcherDeps()
	t.Cleanup(restore)
	mockClient := mocks.NewClient(t)
	mockClient.On("Close").Return().Once()
	var dialed client.Options
	dialTemporal = func(opts client.Options) (client.Client, error) {
		dialed = opts
		return mockClient, nil
	}
	cfg := testConfig("http://localhost:0")
	cfg.Runner = config.RunnerTemporal
	cfg.TemporalAddress = "temporal:7233"

	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)
	a.close()
	require.Equal(t, "temporal:7233", dialed.HostPort)
}

func TestNewAppTemporalDialFailure(t *testing.T) {
	restore := captureResearcherDeps()
	t.Cleanup(restore)
	dialTemporal = func(client.Options) (client.Client, error) {
		return nil, errors.New("temporal dial failed")
	}
	cfg := testConfig("http://localhost:0")
	cfg.Runner = config.RunnerTemporal

	_, err := newApp(cfg, zap.NewNop())
	require.ErrorContains(t, err, "dial temporal: temporal dial failed")
}

func TestBuildLogger(t *testing.T) {
	cfg := testConfig("http://localhost:0")

	logger, err := buildLogger(cfg, true, true)
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.ErrorLevel), "interactive without a log file discards")

	logger, err = buildLogger(cfg, false, false)
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	logger, err = buildLogger(cfg, true, false)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	cfg.LogFile = filepath.Join(t.TempDir(), "researcher.log")
	logger, err = buildLogger(cfg, false, true)
	require.NoError(t, err)
	logger.Error("written")
	_ = logger.Sync()
	contents, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "written")
}
