package tools

import (
	"fmt"
	"strings"
)

// Catalog is the ordered list of remote operations exposed as tools.
type Catalog []string

// DefaultCatalog lists the Linear operations every workspace exposes.
var DefaultCatalog = Catalog{
	"list_issues",
	"get_issue",
	"create_issue",
	"update_issue",
	"add_comment",
	"list_projects",
	"list_teams",
	"get_user",
}

// Describe returns the tool description for op, for example
// "list issues in Acme Linear workspace".
func Describe(op, workspaceName string) string {
	return fmt.Sprintf("%s in %s Linear workspace", strings.ReplaceAll(op, "_", " "), workspaceName)
}

// isReadOnly reports whether op only reads data.
func isReadOnly(op string) bool {
	return strings.HasPrefix(op, "list_") || strings.HasPrefix(op, "get_")
}
