package contextmgr

import (
	"fmt"
	"sort"
	"strings"
)

// RenderIndex renders a run as a markdown document: a table of contents
// grouped by top-level section name, followed by every section's file
// list and analysis
func RenderIndex(run *Run) string {
	var b strings.Builder
	b.WriteString("# Repository Analysis Index\n\n")
	b.WriteString("## Sections\n\n")

	grouped := make(map[string][]string)
	for _, res := range run.Results {
		top := res.Section.Name
		if i := strings.IndexByte(top, '/'); i >= 0 {
			top = top[:i]
		}
		grouped[top] = append(grouped[top], res.Section.Name)
	}
	tops := make([]string, 0, len(grouped))
	for top := range grouped {
		tops = append(tops, top)
	}
	sort.Strings(tops)

	counts := make(map[string]int, len(run.Results))
	for _, res := range run.Results {
		counts[res.Section.Name] = res.Section.FileCount()
	}

	for _, top := range tops {
		fmt.Fprintf(&b, "### %s\n\n", top)
		names := grouped[top]
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- [%s](#%s) (%d files)\n", name, anchor(name), counts[name])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Analysis by Section\n\n")
	for _, res := range run.Results {
		fmt.Fprintf(&b, "<h3 id='%s'>%s (%d files)</h3>\n\n", anchor(res.Section.Name), res.Section.Name, res.Section.FileCount())
		b.WriteString("**Files:**\n\n")
		for _, path := range res.Section.Paths() {
			fmt.Fprintf(&b, "- `%s`\n", path)
		}
		b.WriteString("\n")
		if res.State == StateCompleted {
			b.WriteString("**Analysis:**\n\n")
			b.WriteString(res.Analysis)
			b.WriteString("\n\n---\n\n")
		} else {
			b.WriteString("*No analysis available for this section.*\n\n---\n\n")
		}
	}
	return b.String()
}

// anchor sanitizes a section name into an HTML anchor id
func anchor(name string) string {
	r := strings.NewReplacer("/", "_", ".", "_")
	return strings.ToLower(r.Replace(name))
}
