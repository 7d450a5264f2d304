package formatting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"linearproxy/internal/verify"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// FormatReport implements Formatter.
func (f *TableFormatter) FormatReport(w io.Writer, report *verify.Report) error {
	if len(report.Workspaces) == 0 {
		fmt.Fprintf(w, "%s\n", f.paint(text.FgYellow, "No workspace proxies found in "+report.BaseDir))
		f.writeNextSteps(w, report)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		f.paint(text.FgHiCyan, "WORKSPACE"),
		f.paint(text.FgHiCyan, "PORT"),
		f.paint(text.FgHiCyan, "ENV"),
		f.paint(text.FgHiCyan, "SERVER"),
		f.paint(text.FgHiCyan, "AUTHENTICATED"),
		f.paint(text.FgHiCyan, "CONNECTED"),
		f.paint(text.FgHiCyan, "FILES"),
		f.paint(text.FgHiCyan, "READY"),
	})

	for _, ws := range report.Workspaces {
		port := "-"
		if ws.Port > 0 {
			port = fmt.Sprintf("%d", ws.Port)
		}
		t.AppendRow(table.Row{
			f.paint(text.FgHiCyan, ws.Workspace),
			port,
			f.envCell(ws),
			f.serverCell(ws.Server),
			f.boolCell(ws.Authenticated),
			f.boolCell(ws.Connected),
			f.filesCell(ws),
			f.boolCell(ws.Ready),
		})
	}
	t.Render()

	for _, ws := range report.Workspaces {
		if len(ws.MissingVariables) > 0 {
			fmt.Fprintf(w, "%s: set %s in %s/.env\n", ws.Workspace, strings.Join(ws.MissingVariables, ", "), ws.Dir)
		}
		if ws.Server == verify.ServerRunning && !ws.Authenticated && ws.AuthURL != "" {
			fmt.Fprintf(w, "%s: authenticate at %s\n", ws.Workspace, ws.AuthURL)
		}
		if ws.Server == verify.ServerNotRunning {
			fmt.Fprintf(w, "%s: start with: cd %s && ./start.sh\n", ws.Workspace, ws.Dir)
		}
	}

	status := f.paint(text.FgGreen, "Overall Status: Ready to use!")
	if !report.Ready {
		status = f.paint(text.FgYellow, "Overall Status: Needs configuration")
	}
	fmt.Fprintf(w, "\n%s\n", status)
	f.writeNextSteps(w, report)
	return nil
}

func (f *TableFormatter) writeNextSteps(w io.Writer, report *verify.Report) {
	steps := report.NextSteps()
	if len(steps) == 0 {
		return
	}
	fmt.Fprintf(w, "\nNext steps:\n")
	for i, step := range steps {
		fmt.Fprintf(w, "%d. %s\n", i+1, step)
	}
}

func (f *TableFormatter) envCell(ws verify.WorkspaceReport) string {
	switch {
	case !ws.EnvFilePresent:
		return f.paint(text.FgRed, "missing")
	case len(ws.MissingVariables) > 0:
		return f.paint(text.FgYellow, fmt.Sprintf("%d unset", len(ws.MissingVariables)))
	default:
		return f.paint(text.FgGreen, "ok")
	}
}

func (f *TableFormatter) serverCell(s verify.ServerStatus) string {
	switch s {
	case verify.ServerRunning:
		return f.paint(text.FgGreen, string(s))
	case verify.ServerUnhealthy:
		return f.paint(text.FgRed, string(s))
	default:
		return f.paint(text.FgYellow, string(s))
	}
}

func (f *TableFormatter) filesCell(ws verify.WorkspaceReport) string {
	missing := ws.MissingFiles()
	if len(missing) == 0 {
		return f.paint(text.FgGreen, "ok")
	}
	return f.paint(text.FgRed, "missing "+strings.Join(missing, ", "))
}

func (f *TableFormatter) boolCell(b bool) string {
	if b {
		return f.paint(text.FgGreen, "yes")
	}
	return f.paint(text.FgRed, "no")
}

func (f *TableFormatter) paint(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}
