package verify

// ServerStatus describes what the health probe found.
type ServerStatus string

const (
	// ServerRunning means /health answered with a valid body.
	ServerRunning ServerStatus = "running"
	// ServerNotRunning means nothing answered on the configured port.
	ServerNotRunning ServerStatus = "not_running"
	// ServerUnhealthy means something answered but not with a health body.
	ServerUnhealthy ServerStatus = "unhealthy"
	// ServerUnknown means the port is not configured, so nothing was probed.
	ServerUnknown ServerStatus = "unknown"
)

// FileCheck records whether a generated file is present.
type FileCheck struct {
	Name    string `json:"name" yaml:"name"`
	Present bool   `json:"present" yaml:"present"`
}

// WorkspaceReport is the verification result for one proxy directory.
type WorkspaceReport struct {
	Workspace        string       `json:"workspace" yaml:"workspace"`
	Dir              string       `json:"dir" yaml:"dir"`
	Port             int          `json:"port,omitempty" yaml:"port,omitempty"`
	EnvFilePresent   bool         `json:"env_file_present" yaml:"env_file_present"`
	MissingVariables []string     `json:"missing_variables,omitempty" yaml:"missing_variables,omitempty"`
	Server           ServerStatus `json:"server" yaml:"server"`
	Authenticated    bool         `json:"authenticated" yaml:"authenticated"`
	Connected        bool         `json:"connected" yaml:"connected"`
	AuthURL          string       `json:"auth_url,omitempty" yaml:"auth_url,omitempty"`
	Files            []FileCheck  `json:"files" yaml:"files"`
	Ready            bool         `json:"ready" yaml:"ready"`
}

// MissingFiles returns the names of generated files that are absent.
func (w WorkspaceReport) MissingFiles() []string {
	var missing []string
	for _, f := range w.Files {
		if !f.Present {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Report aggregates every discovered workspace.
type Report struct {
	BaseDir    string            `json:"base_dir" yaml:"base_dir"`
	Workspaces []WorkspaceReport `json:"workspaces" yaml:"workspaces"`
	Ready      bool              `json:"ready" yaml:"ready"`
}

// NextSteps lists what a user still has to do when the report is not ready.
func (r *Report) NextSteps() []string {
	if r.Ready {
		return nil
	}
	if len(r.Workspaces) == 0 {
		return []string{"Create a workspace proxy with: linear-proxy setup <WorkspaceName>"}
	}
	return []string{
		"Configure OAuth credentials in workspace .env files",
		"Start workspace proxies: cd <workspace>-proxy && ./start.sh",
		"Authenticate at the OAuth URLs shown on stderr",
		"Add claude-config.json contents to your assistant's MCP settings",
	}
}
