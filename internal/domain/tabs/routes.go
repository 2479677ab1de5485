package tabs

import (
	"fmt"
	"strings"

	"github.com/coraldesk/studio/backend/internal/shared/types"
)

// Route templates are the only coupling to the dashboard's URL space.
// The router collaborator receives fully-formed paths; nothing here
// performs navigation.

// TabPath builds the route for a single tab
func TabPath(ref string, tab types.Tab) string {
	switch tab.Type {
	case types.TypeSQL:
		snippetID := ""
		if tab.Metadata != nil {
			snippetID = tab.Metadata.SQLID
		}
		if snippetID == "" {
			snippetID = strings.TrimPrefix(tab.ID, "sql-")
		}
		return withSchema(fmt.Sprintf("/project/%s/sql/%s", ref, snippetID), tab)
	default:
		tableID := ""
		if tab.Metadata != nil {
			tableID = tab.Metadata.TableID
		}
		if tableID == "" {
			tableID = strings.TrimPrefix(tab.ID, string(tab.Type)+"-")
		}
		return withSchema(fmt.Sprintf("/project/%s/editor/%s", ref, tableID), tab)
	}
}

// SectionPath builds the section-level default route for an editor family
func SectionPath(ref string, family types.EditorFamily) string {
	if family == types.EditorSQL {
		return fmt.Sprintf("/project/%s/sql", ref)
	}
	return fmt.Sprintf("/project/%s/editor", ref)
}

// EditorPath is the generic fallback route when the closed tab's type is
// unknown (e.g. the "new" sentinel)
func EditorPath(ref string, family types.EditorFamily) string {
	return fmt.Sprintf("/project/%s/%s", ref, family)
}

func withSchema(path string, tab types.Tab) string {
	if tab.Metadata != nil && tab.Metadata.Schema != "" {
		return fmt.Sprintf("%s?schema=%s", path, tab.Metadata.Schema)
	}
	return path
}

// familyFromID partitions tab ids by their textual prefix
func familyFromID(id string) types.EditorFamily {
	if strings.HasPrefix(id, "sql-") {
		return types.EditorSQL
	}
	return types.EditorTable
}
