package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"linearproxy/internal/scaffold"
	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

// DefaultHealthTimeout bounds each /health probe.
const DefaultHealthTimeout = time.Second

// Checker verifies scaffolded workspace proxy directories.
type Checker struct {
	httpClient *http.Client
	healthHost string
	progress   io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient overrides the client used for health probes.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.httpClient = c }
}

// WithHealthHost overrides the host probed for /health, normally localhost.
func WithHealthHost(host string) Option {
	return func(ch *Checker) { ch.healthHost = host }
}

// WithProgress shows a spinner on w while probing. Nil disables it.
func WithProgress(w io.Writer) Option {
	return func(ch *Checker) { ch.progress = w }
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		httpClient: &http.Client{Timeout: DefaultHealthTimeout},
		healthHost: "localhost",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover returns the *-proxy directories directly under baseDir, sorted.
func Discover(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", baseDir, err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), workspace.ProxyDirSuffix) {
			dirs = append(dirs, filepath.Join(baseDir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Run checks every workspace proxy under baseDir.
func (c *Checker) Run(ctx context.Context, baseDir string) (*Report, error) {
	dirs, err := Discover(baseDir)
	if err != nil {
		return nil, err
	}

	report := &Report{BaseDir: baseDir, Ready: len(dirs) > 0}
	for _, dir := range dirs {
		ws := c.CheckWorkspace(ctx, dir)
		report.Ready = report.Ready && ws.Ready
		report.Workspaces = append(report.Workspaces, ws)
	}
	logging.Debug("Verify", "Checked %d workspace proxies under %s (ready=%t)", len(dirs), baseDir, report.Ready)
	return report, nil
}

// CheckWorkspace verifies one proxy directory: .env variables, the running
// server's health and the generated files.
func (c *Checker) CheckWorkspace(ctx context.Context, dir string) WorkspaceReport {
	env, envErr := readEnv(filepath.Join(dir, scaffold.EnvFileName))

	name := env.get(workspace.WorkspaceNameVar)
	if name == "" {
		name = nameFromDir(dir)
	}
	keys := workspace.KeysFor(name)

	report := WorkspaceReport{
		Workspace:      name,
		Dir:            dir,
		EnvFilePresent: envErr == nil,
		Server:         ServerUnknown,
	}

	if envErr != nil {
		logging.Debug("Verify", "No usable .env in %s: %v", dir, envErr)
	}
	required := []string{workspace.WorkspaceNameVar, keys.Port, keys.OAuthClientID, keys.OAuthClientSecret}
	if headless, _ := strconv.ParseBool(env.get(workspace.HeadlessModeVar)); headless {
		required = []string{workspace.WorkspaceNameVar, keys.Port, keys.AccessToken}
	}
	for _, key := range required {
		v := env.get(key)
		if v == "" || scaffold.IsPlaceholder(v) {
			report.MissingVariables = append(report.MissingVariables, key)
		}
	}

	if port, err := strconv.Atoi(env.get(keys.Port)); err == nil && port > 0 && port <= 65535 {
		report.Port = port
		report.AuthURL = workspace.NewIdentity(name, port).AuthURL()
		c.probeHealth(ctx, &report)
	}

	for _, f := range []string{scaffold.StartScriptName, scaffold.MCPConfigName, scaffold.ReadmeName} {
		_, err := os.Stat(filepath.Join(dir, f))
		report.Files = append(report.Files, FileCheck{Name: f, Present: err == nil})
	}

	report.Ready = report.EnvFilePresent && len(report.MissingVariables) == 0 && len(report.MissingFiles()) == 0
	return report
}

func (c *Checker) probeHealth(ctx context.Context, report *WorkspaceReport) {
	if c.progress != nil {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.progress))
		s.Suffix = fmt.Sprintf(" Checking %s proxy on port %d...", report.Workspace, report.Port)
		s.Start()
		defer s.Stop()
	}

	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(c.healthHost, strconv.Itoa(report.Port)), workspace.HealthPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		report.Server = ServerUnhealthy
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("Verify", "Health probe %s failed: %v", url, err)
		report.Server = ServerNotRunning
		return
	}
	defer resp.Body.Close()

	var health struct {
		Workspace     string `json:"workspace"`
		Authenticated bool   `json:"authenticated"`
		Connected     bool   `json:"connected"`
	}
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&health) != nil {
		report.Server = ServerUnhealthy
		return
	}

	report.Server = ServerRunning
	report.Authenticated = health.Authenticated
	report.Connected = health.Connected
}

// nameFromDir turns "acme-proxy" into "Acme".
func nameFromDir(dir string) string {
	base := strings.TrimSuffix(filepath.Base(dir), workspace.ProxyDirSuffix)
	if base == "" {
		return base
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

type envValues struct {
	lookup workspace.LookupFunc
}

func readEnv(path string) (envValues, error) {
	if _, err := os.Stat(path); err != nil {
		return envValues{}, err
	}
	lookup, err := workspace.ReadEnvFile(path)
	if err != nil {
		return envValues{}, err
	}
	return envValues{lookup: lookup}, nil
}

func (e envValues) get(key string) string {
	if e.lookup == nil {
		return ""
	}
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}
