package scaffold

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearproxy/internal/workspace"
)

func TestGenerate_WritesAllFiles(t *testing.T) {
	base := t.TempDir()

	result, err := Generate(Options{Workspace: "Acme", BaseDir: base, Port: 3004})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "acme-proxy"), result.Dir)
	assert.Equal(t, workspace.NewIdentity("Acme", 3004), result.Identity)
	assert.Len(t, result.Files, 4)

	modes := map[string]os.FileMode{
		EnvFileName:     0o600,
		StartScriptName: 0o755,
		MCPConfigName:   0o644,
		ReadmeName:      0o644,
	}
	for name, mode := range modes {
		info, err := os.Stat(filepath.Join(result.Dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, mode, info.Mode().Perm(), name)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestGenerate_EnvFileRoundTrip(t *testing.T) {
	result, err := Generate(Options{Workspace: "Acme", BaseDir: t.TempDir(), Port: 3006})
	require.NoError(t, err)

	lookup, err := workspace.ReadEnvFile(filepath.Join(result.Dir, EnvFileName))
	require.NoError(t, err)

	cfg, err := workspace.Resolve("", lookup)
	require.NoError(t, err)

	assert.Equal(t, result.Identity, cfg.Identity)
	assert.Equal(t, workspace.ModeInteractive, cfg.Mode)
	assert.Equal(t, PlaceholderClientID, cfg.Credentials.ClientID)
	assert.Equal(t, PlaceholderClientSecret, cfg.Credentials.ClientSecret)
	assert.Empty(t, cfg.Credentials.PresetToken)
}

func TestGenerate_StartScript(t *testing.T) {
	result, err := Generate(Options{Workspace: "Acme", BaseDir: t.TempDir(), Port: 3002, Binary: "/usr/local/bin/linear-proxy"})
	require.NoError(t, err)

	script := readFile(t, result.Dir, StartScriptName)
	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"))
	assert.Contains(t, script, "http://localhost:${ACME_PORT}/auth")
	assert.Contains(t, script, `[ -z "${ACME_OAUTH_CLIENT_ID:-}" ]`)
	assert.Contains(t, script, `= 'your_oauth_client_id_here'`)
	assert.Contains(t, script, `case "${HEADLESS_MODE:-}" in`)
	assert.Contains(t, script, `[ -z "${ACME_ACCESS_TOKEN:-}" ]`)
	assert.Contains(t, script, "exec /usr/local/bin/linear-proxy --env-file .env 'Acme'")
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "echo ") {
			assert.True(t, strings.HasSuffix(line, ">&2"), "echo must not write to stdout: %s", line)
		}
	}
}

func TestStartScript_Modes(t *testing.T) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not available")
	}

	// The stub stands in for the proxy binary and reports how it was invoked.
	stub := filepath.Join(t.TempDir(), "fake-proxy")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\necho \"proxy $*\"\n"), 0o755))

	tests := []struct {
		name       string
		extraEnv   string
		wantErr    bool
		wantStdout string
		wantStderr string
	}{
		{
			name:       "placeholder credentials",
			wantErr:    true,
			wantStderr: "OAuth credentials not configured!",
		},
		{
			name:       "configured credentials",
			extraEnv:   "ACME_OAUTH_CLIENT_ID=real-id\n",
			wantStdout: "proxy --env-file .env Acme\n",
			wantStderr: "OAuth endpoint: http://localhost:3002/auth",
		},
		{
			name:       "headless with token",
			extraEnv:   "HEADLESS_MODE=true\nACME_ACCESS_TOKEN=lin_oauth_xyz\n",
			wantStdout: "proxy --env-file .env Acme\n",
			wantStderr: "Mode: headless",
		},
		{
			name:       "headless without token",
			extraEnv:   "HEADLESS_MODE=true\n",
			wantErr:    true,
			wantStderr: "Headless mode requires ACME_ACCESS_TOKEN in .env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Generate(Options{Workspace: "Acme", BaseDir: t.TempDir(), Port: 3002, Binary: stub})
			require.NoError(t, err)

			envPath := filepath.Join(result.Dir, EnvFileName)
			f, err := os.OpenFile(envPath, os.O_APPEND|os.O_WRONLY, 0)
			require.NoError(t, err)
			_, err = f.WriteString(tt.extraEnv)
			require.NoError(t, err)
			require.NoError(t, f.Close())

			var stdout, stderr strings.Builder
			cmd := exec.Command(bash, filepath.Join(result.Dir, StartScriptName))
			cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			err = cmd.Run()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err, stderr.String())
			}
			assert.Equal(t, tt.wantStdout, stdout.String())
			assert.Contains(t, stderr.String(), tt.wantStderr)
		})
	}
}

func TestGenerate_MCPConfig(t *testing.T) {
	result, err := Generate(Options{Workspace: "Acme", BaseDir: t.TempDir(), Port: 3002})
	require.NoError(t, err)

	var cfg struct {
		MCPServers map[string]struct {
			Command string            `json:"command"`
			Args    []string          `json:"args"`
			Cwd     string            `json:"cwd"`
			Env     map[string]string `json:"env"`
		} `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, result.Dir, MCPConfigName)), &cfg))

	entry, ok := cfg.MCPServers["AcmeLinear"]
	require.True(t, ok)
	assert.Equal(t, "bash", entry.Command)
	assert.Equal(t, []string{"./start.sh"}, entry.Args)
	assert.Equal(t, "./acme-proxy", entry.Cwd)
	assert.Empty(t, entry.Env)
}

func TestGenerate_Readme(t *testing.T) {
	result, err := Generate(Options{Workspace: "Acme", BaseDir: t.TempDir(), Port: 3008})
	require.NoError(t, err)

	readme := readFile(t, result.Dir, ReadmeName)
	assert.Contains(t, readme, "# Acme Linear MCP Proxy")
	assert.Contains(t, readme, "http://localhost:3008/oauth/callback")
	assert.Contains(t, readme, "- `AcmeLinear_list_issues`\n- `AcmeLinear_get_issue`\n")
	assert.Contains(t, readme, "- `AcmeLinear_get_user`\n")
	assert.Contains(t, readme, "curl http://localhost:3008/health")
}

func TestGenerate_ExistingFiles(t *testing.T) {
	base := t.TempDir()
	first, err := Generate(Options{Workspace: "Acme", BaseDir: base, Port: 3001})
	require.NoError(t, err)

	envPath := filepath.Join(first.Dir, EnvFileName)
	require.NoError(t, os.WriteFile(envPath, []byte("ACME_OAUTH_CLIENT_ID=real\n"), 0o600))

	_, err = Generate(Options{Workspace: "Acme", BaseDir: base, Port: 3001})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, "ACME_OAUTH_CLIENT_ID=real\n", readFile(t, first.Dir, EnvFileName))

	_, err = Generate(Options{Workspace: "Acme", BaseDir: base, Port: 3001, Force: true})
	require.NoError(t, err)
	assert.Contains(t, readFile(t, first.Dir, EnvFileName), PlaceholderClientID)
}

func TestGenerate_InvalidOptions(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		invalidName bool
	}{
		{name: "empty name", opts: Options{Workspace: "  "}},
		{name: "path separator", opts: Options{Workspace: "../Acme"}, invalidName: true},
		{name: "space", opts: Options{Workspace: "Acme Corp"}, invalidName: true},
		{name: "hyphen", opts: Options{Workspace: "Key-Lead", Port: 3005}, invalidName: true},
		{name: "dot", opts: Options{Workspace: "acme.io"}, invalidName: true},
		{name: "leading digit", opts: Options{Workspace: "9lives"}, invalidName: true},
		{name: "port out of range", opts: Options{Workspace: "Acme", Port: 70000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			tt.opts.BaseDir = base
			_, err := Generate(tt.opts)
			require.Error(t, err)

			if tt.invalidName {
				var configErr *workspace.ConfigError
				assert.True(t, errors.As(err, &configErr), "expected ConfigError, got %v", err)
			}
			entries, readErr := os.ReadDir(base)
			require.NoError(t, readErr)
			assert.Empty(t, entries, "nothing is written for invalid options")
		})
	}
}

func TestRandomPort(t *testing.T) {
	for i := 0; i < 200; i++ {
		port := RandomPort()
		require.GreaterOrEqual(t, port, MinRandomPort)
		require.LessOrEqual(t, port, MaxRandomPort)
	}
}

func TestGenerate_DefaultPortIsRandomInRange(t *testing.T) {
	result, err := Generate(Options{Workspace: "Beta", BaseDir: t.TempDir()})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Identity.Port, MinRandomPort)
	assert.LessOrEqual(t, result.Identity.Port, MaxRandomPort)
}

func TestIsPlaceholder(t *testing.T) {
	tests := map[string]bool{
		PlaceholderClientID:     true,
		PlaceholderClientSecret: true,
		"lin_oauth_123":         false,
		"":                      false,
		"paste_here":            true,
	}
	for value, want := range tests {
		assert.Equal(t, want, IsPlaceholder(value), value)
	}
}
