package deps

import (
	"regexp"

	"repodoc/pkg/types"
)

// rawRef is an unresolved reference found by pattern matching
type rawRef struct {
	spec string
	kind types.EdgeKind
}

// importPattern pairs a regexp (capture group 1 is the module spec) with
// the edge kind it produces
type importPattern struct {
	re   *regexp.Regexp
	kind types.EdgeKind
}

var languagePatterns = map[string][]importPattern{
	types.LangPython: {
		{regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import\b`), types.EdgeImport},
		{regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`), types.EdgeImport},
	},
	types.LangGo: {
		{regexp.MustCompile(`(?m)^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`), types.EdgeImport},
	},
	types.LangJavaScript: {
		{regexp.MustCompile(`(?m)^\s*(?:import|export)\b[^'"\n]*['"]([^'"]+)['"]`), types.EdgeImport},
		{regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`), types.EdgeReference},
	},
	types.LangTypeScript: {
		{regexp.MustCompile(`(?m)^\s*(?:import|export)\b[^'"\n]*['"]([^'"]+)['"]`), types.EdgeImport},
		{regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`), types.EdgeReference},
	},
	types.LangJava: {
		{regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.]+)\s*;`), types.EdgeImport},
	},
	types.LangRust: {
		{regexp.MustCompile(`(?m)^\s*(?:pub\s+)?use\s+([\w:]+)`), types.EdgeImport},
		{regexp.MustCompile(`(?m)^\s*(?:pub\s+)?mod\s+(\w+)\s*;`), types.EdgeReference},
	},
	types.LangRuby: {
		{regexp.MustCompile(`(?m)^\s*require_relative\s+['"]([^'"]+)['"]`), types.EdgeImport},
		{regexp.MustCompile(`(?m)^\s*require\s+['"]([^'"]+)['"]`), types.EdgeImport},
	},
	types.LangC: {
		{regexp.MustCompile(`(?m)^\s*#include\s+"([^"]+)"`), types.EdgeImport},
	},
}

// goImportBlock matches grouped import declarations, which the single-line
// pattern above does not catch
var (
	goImportBlock = regexp.MustCompile(`(?s)import\s*\(([^)]*)\)`)
	goQuotedPath  = regexp.MustCompile(`"([^"]+)"`)
)

// Extract builds the dependency graph for a snapshot. Files whose language
// is not recognized contribute nodes but no outgoing edges. Unresolvable
// references never fail the build.
func Extract(snapshot []types.FileRecord) *types.DependencyGraph {
	paths := make([]string, len(snapshot))
	for i, f := range snapshot {
		paths[i] = f.Path
	}
	g := types.NewDependencyGraph(paths)
	res := newResolver(snapshot)

	for i := range snapshot {
		f := &snapshot[i]
		for _, ref := range scanFile(f) {
			for _, target := range res.resolve(f, ref.spec) {
				_ = g.AddEdge(f.Path, target, ref.kind)
			}
		}
	}
	return g
}

// scanFile locates raw import/reference specs in a single file
func scanFile(f *types.FileRecord) []rawRef {
	patterns, ok := languagePatterns[f.Language]
	if !ok {
		return nil
	}

	var refs []rawRef
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(f.Content, -1) {
			refs = append(refs, rawRef{spec: m[1], kind: p.kind})
		}
	}

	if f.Language == types.LangGo {
		for _, block := range goImportBlock.FindAllStringSubmatch(f.Content, -1) {
			for _, m := range goQuotedPath.FindAllStringSubmatch(block[1], -1) {
				refs = append(refs, rawRef{spec: m[1], kind: types.EdgeImport})
			}
		}
	}
	return refs
}
