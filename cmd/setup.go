package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"linearproxy/internal/scaffold"
)

func newSetupCmd(debug *bool) *cobra.Command {
	var (
		dir    string
		port   int
		binary string
		force  bool
	)

	setupCmd := &cobra.Command{
		Use:   "setup <WorkspaceName>",
		Short: "Create a proxy directory for a workspace",
		Long: `Creates <workspacename>-proxy/ with everything needed to launch the proxy
from an assistant's MCP configuration:

  .env                 workspace variables with placeholder OAuth credentials
  start.sh             loads .env and runs linear-proxy for the workspace
  claude-config.json   the mcpServers entry for <WorkspaceName>Linear
  README.md            setup instructions and the tool list

Without --port a random port between 3001 and 3009 is chosen.

Examples:
  linear-proxy setup Acme
  linear-proxy setup Acme --port 3005 --dir ~/proxies`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initCommandLogging(cmd, *debug)

			result, err := scaffold.Generate(scaffold.Options{
				Workspace: args[0],
				BaseDir:   dir,
				Port:      port,
				Binary:    binary,
				Force:     force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s workspace proxy in %s\n", result.Identity.Name, result.Dir)
			for _, f := range result.Files {
				fmt.Fprintf(out, "  %s\n", filepath.Base(f))
			}
			fmt.Fprintf(out, "\nNext steps:\n")
			fmt.Fprintf(out, "1. Create an OAuth application in Linear with callback URL %s\n", result.Identity.CallbackURL())
			fmt.Fprintf(out, "2. Edit %s with the Client ID and Client Secret\n", filepath.Join(result.Dir, scaffold.EnvFileName))
			fmt.Fprintf(out, "3. Add %s to your assistant's MCP settings\n", scaffold.MCPConfigName)
			fmt.Fprintf(out, "4. Authenticate at %s once the proxy is running\n", result.Identity.AuthURL())
			return nil
		},
	}

	setupCmd.Flags().StringVar(&dir, "dir", ".", "Directory in which to create the proxy directory")
	setupCmd.Flags().IntVar(&port, "port", 0, "Local listener port (default: random in 3001-3009)")
	setupCmd.Flags().StringVar(&binary, "binary", scaffold.DefaultBinary, "Command start.sh runs")
	setupCmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return setupCmd
}
