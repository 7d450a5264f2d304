package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"linearproxy/internal/tools"
	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	// PlaceholderClientID is written to .env until the user fills it in.
	PlaceholderClientID = "your_oauth_client_id_here"
	// PlaceholderClientSecret is written to .env until the user fills it in.
	PlaceholderClientSecret = "your_oauth_client_secret_here"

	// DefaultBinary is the command start.sh executes.
	DefaultBinary = "linear-proxy"

	// MinRandomPort and MaxRandomPort bound the port picked when none is given.
	MinRandomPort = 3001
	MaxRandomPort = 3009
)

// Generated file names inside a proxy directory.
const (
	EnvFileName     = ".env"
	StartScriptName = "start.sh"
	MCPConfigName   = "claude-config.json"
	ReadmeName      = "README.md"
)

type fileSpec struct {
	name     string
	template string
	mode     os.FileMode
}

var files = []fileSpec{
	{name: EnvFileName, template: "env.tmpl", mode: 0o600},
	{name: StartScriptName, template: "start.sh.tmpl", mode: 0o755},
	{name: MCPConfigName, template: "claude-config.json.tmpl", mode: 0o644},
	{name: ReadmeName, template: "readme.md.tmpl", mode: 0o644},
}

// Options controls Generate.
type Options struct {
	// Workspace is the workspace name, case preserved.
	Workspace string
	// BaseDir is where <lower>-proxy/ is created. Empty means the current directory.
	BaseDir string
	// Port is written to .env. Zero picks a random port in MinRandomPort..MaxRandomPort.
	Port int
	// Binary is the command start.sh runs. Empty means DefaultBinary.
	Binary string
	// Force overwrites existing files.
	Force bool
}

// Result describes a generated proxy directory.
type Result struct {
	Identity workspace.Identity
	Dir      string
	Files    []string
}

// RandomPort picks a port in MinRandomPort..MaxRandomPort.
func RandomPort() int {
	return MinRandomPort + rand.IntN(MaxRandomPort-MinRandomPort+1)
}

// IsPlaceholder reports whether v is an unedited template value.
func IsPlaceholder(v string) bool {
	return strings.Contains(v, "your_") || strings.Contains(v, "_here")
}

type templateData struct {
	Name                string
	ToolPrefix          string
	Port                int
	Keys                workspace.Keys
	ClientID            string
	ClientSecret        string
	ClientIDPlaceholder string
	Binary              string
	CallbackURL         string
	AuthURL             string
	HealthURL           string
	Tools               []string
	MCPConfig           map[string]any
}

// Generate writes .env, start.sh, claude-config.json and README.md into
// <BaseDir>/<lower>-proxy/. Existing files are left untouched unless Force is set.
func Generate(opts Options) (*Result, error) {
	name := strings.TrimSpace(opts.Workspace)
	if name == "" {
		return nil, fmt.Errorf("workspace name is required")
	}
	if err := workspace.ValidateName(name); err != nil {
		return nil, err
	}

	port := opts.Port
	if port == 0 {
		port = RandomPort()
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	id := workspace.NewIdentity(name, port)
	dir := filepath.Join(opts.BaseDir, id.ProxyDir())

	if !opts.Force {
		for _, f := range files {
			path := filepath.Join(dir, f.name)
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data := newTemplateData(id, binary)
	tmpl, err := template.New("scaffold").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"envref": envRef}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	result := &Result{Identity: id, Dir: dir}
	for _, f := range files {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, f.template, data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, buf.Bytes(), f.mode); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(path, f.mode); err != nil {
			return nil, fmt.Errorf("failed to chmod %s: %w", path, err)
		}
		logging.Debug("Scaffold", "Wrote %s", path)
		result.Files = append(result.Files, path)
	}

	logging.Info("Scaffold", "Created %s workspace proxy in %s", id.Name, dir)
	return result, nil
}

func newTemplateData(id workspace.Identity, binary string) templateData {
	names := tools.NewNameTracker(id.ToolPrefix, tools.DefaultCatalog)
	return templateData{
		Name:                id.Name,
		ToolPrefix:          id.ToolPrefix,
		Port:                id.Port,
		Keys:                id.Keys(),
		ClientID:            PlaceholderClientID,
		ClientSecret:        PlaceholderClientSecret,
		ClientIDPlaceholder: PlaceholderClientID,
		Binary:              binary,
		CallbackURL:         id.CallbackURL(),
		AuthURL:             id.AuthURL(),
		HealthURL:           id.HealthURL(),
		Tools:               names.ExposedNames(),
		MCPConfig: map[string]any{
			"mcpServers": map[string]any{
				id.ToolPrefix: map[string]any{
					"command": "bash",
					"args":    []string{"./" + StartScriptName},
					"cwd":     "./" + id.ProxyDir(),
					"env":     map[string]string{},
				},
			},
		},
	}
}

// envRef renders a shell parameter expansion for key.
func envRef(key string) string {
	return "${" + key + "}"
}
