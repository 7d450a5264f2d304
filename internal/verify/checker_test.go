package verify

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearproxy/internal/scaffold"
)

func serverPort(t *testing.T, ts *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

// closedPort returns a port nothing is listening on.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func configure(t *testing.T, base, name string, port int) string {
	t.Helper()
	result, err := scaffold.Generate(scaffold.Options{Workspace: name, BaseDir: base, Port: port})
	require.NoError(t, err)
	env := fmt.Sprintf("WORKSPACE_NAME=%s\nACME_PORT=%d\nACME_OAUTH_CLIENT_ID=lin_client\nACME_OAUTH_CLIENT_SECRET=lin_secret\n", name, port)
	require.NoError(t, os.WriteFile(filepath.Join(result.Dir, scaffold.EnvFileName), []byte(env), 0o600))
	return result.Dir
}

func newChecker() *Checker {
	return NewChecker(WithHealthHost("127.0.0.1"))
}

func TestDiscover(t *testing.T) {
	base := t.TempDir()
	for _, dir := range []string{"beta-proxy", "acme-proxy", "notes"} {
		require.NoError(t, os.Mkdir(filepath.Join(base, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(base, "file-proxy"), nil, 0o644))

	dirs, err := Discover(base)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(base, "acme-proxy"), filepath.Join(base, "beta-proxy")}, dirs)
}

func TestCheckWorkspace_PlaceholderCredentials(t *testing.T) {
	port := closedPort(t)
	result, err := scaffold.Generate(scaffold.Options{Workspace: "Acme", BaseDir: t.TempDir(), Port: port})
	require.NoError(t, err)

	report := newChecker().CheckWorkspace(context.Background(), result.Dir)

	assert.Equal(t, "Acme", report.Workspace)
	assert.True(t, report.EnvFilePresent)
	assert.Equal(t, []string{"ACME_OAUTH_CLIENT_ID", "ACME_OAUTH_CLIENT_SECRET"}, report.MissingVariables)
	assert.Equal(t, port, report.Port)
	assert.Equal(t, ServerNotRunning, report.Server)
	assert.Empty(t, report.MissingFiles())
	assert.False(t, report.Ready)
}

func TestCheckWorkspace_RunningAndConfigured(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"workspace":"Acme","authenticated":true,"connected":false}`))
	}))
	defer ts.Close()
	port := serverPort(t, ts)
	dir := configure(t, t.TempDir(), "Acme", port)

	report := newChecker().CheckWorkspace(context.Background(), dir)

	assert.Empty(t, report.MissingVariables)
	assert.Equal(t, ServerRunning, report.Server)
	assert.True(t, report.Authenticated)
	assert.False(t, report.Connected)
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/auth", port), report.AuthURL)
	assert.True(t, report.Ready)
}

func TestCheckWorkspace_HeadlessRequiresToken(t *testing.T) {
	base := t.TempDir()
	dir := configure(t, base, "Acme", closedPort(t))
	envPath := filepath.Join(dir, scaffold.EnvFileName)
	headless := "WORKSPACE_NAME=Acme\nACME_PORT=3004\nHEADLESS_MODE=true\n"

	require.NoError(t, os.WriteFile(envPath, []byte(headless), 0o600))
	report := newChecker().CheckWorkspace(context.Background(), dir)
	assert.Equal(t, []string{"ACME_ACCESS_TOKEN"}, report.MissingVariables)
	assert.False(t, report.Ready)

	require.NoError(t, os.WriteFile(envPath, []byte(headless+"ACME_ACCESS_TOKEN=lin_oauth_xyz\n"), 0o600))
	report = newChecker().CheckWorkspace(context.Background(), dir)
	assert.Empty(t, report.MissingVariables)
	assert.True(t, report.Ready)
}

func TestCheckWorkspace_Unhealthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()
	dir := configure(t, t.TempDir(), "Acme", serverPort(t, ts))

	report := newChecker().CheckWorkspace(context.Background(), dir)

	assert.Equal(t, ServerUnhealthy, report.Server)
	assert.True(t, report.Ready, "a stopped or broken proxy does not make the setup unready")
}

func TestCheckWorkspace_MissingEnvFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "beta-proxy")
	require.NoError(t, os.Mkdir(dir, 0o755))

	report := newChecker().CheckWorkspace(context.Background(), dir)

	assert.Equal(t, "Beta", report.Workspace)
	assert.False(t, report.EnvFilePresent)
	assert.Equal(t, []string{"WORKSPACE_NAME", "BETA_PORT", "BETA_OAUTH_CLIENT_ID", "BETA_OAUTH_CLIENT_SECRET"}, report.MissingVariables)
	assert.Equal(t, ServerUnknown, report.Server)
	assert.Equal(t, []string{"start.sh", "claude-config.json", "README.md"}, report.MissingFiles())
	assert.False(t, report.Ready)
}

func TestCheckWorkspace_MissingFile(t *testing.T) {
	dir := configure(t, t.TempDir(), "Acme", closedPort(t))
	require.NoError(t, os.Remove(filepath.Join(dir, scaffold.ReadmeName)))

	report := newChecker().CheckWorkspace(context.Background(), dir)

	assert.Equal(t, []string{"README.md"}, report.MissingFiles())
	assert.False(t, report.Ready)
}

func TestRun(t *testing.T) {
	base := t.TempDir()
	configure(t, base, "Acme", closedPort(t))
	_, err := scaffold.Generate(scaffold.Options{Workspace: "Beta", BaseDir: base, Port: 3002})
	require.NoError(t, err)

	report, err := newChecker().Run(context.Background(), base)
	require.NoError(t, err)

	require.Len(t, report.Workspaces, 2)
	assert.Equal(t, "Acme", report.Workspaces[0].Workspace)
	assert.True(t, report.Workspaces[0].Ready)
	assert.Equal(t, "Beta", report.Workspaces[1].Workspace)
	assert.False(t, report.Workspaces[1].Ready)
	assert.False(t, report.Ready)
	assert.NotEmpty(t, report.NextSteps())
}

func TestRun_NoWorkspaces(t *testing.T) {
	report, err := newChecker().Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, report.Workspaces)
	assert.False(t, report.Ready)
	assert.Equal(t, []string{"Create a workspace proxy with: linear-proxy setup <WorkspaceName>"}, report.NextSteps())
}

func TestRun_MissingBaseDir(t *testing.T) {
	_, err := newChecker().Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
