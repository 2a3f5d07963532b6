package deps

import (
	"path"
	"sort"
	"strings"

	"repodoc/pkg/types"
)

// jsExtensions are tried in order when a JavaScript/TypeScript import omits
// the file extension
var jsExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs"}

// resolver maps raw module specs to snapshot paths
type resolver struct {
	paths     map[string]struct{}
	modules   map[string][]string // dotted module name -> paths (python)
	dirs      map[string][]string // slash directory -> member file paths
	dirNames  []string            // sorted for deterministic longest-suffix match
	basenames map[string][]string // file name without extension -> paths
}

func newResolver(snapshot []types.FileRecord) *resolver {
	r := &resolver{
		paths:     make(map[string]struct{}, len(snapshot)),
		modules:   make(map[string][]string),
		dirs:      make(map[string][]string),
		basenames: make(map[string][]string),
	}

	for i := range snapshot {
		p := snapshot[i].Path
		r.paths[p] = struct{}{}

		dir := path.Dir(p)
		if dir == "." {
			dir = ""
		}
		r.dirs[dir] = append(r.dirs[dir], p)

		base := strings.TrimSuffix(path.Base(p), path.Ext(p))
		r.basenames[base] = append(r.basenames[base], p)

		if snapshot[i].Language == types.LangPython {
			r.modules[pythonModuleName(p)] = append(r.modules[pythonModuleName(p)], p)
		}
	}

	for dir := range r.dirs {
		sort.Strings(r.dirs[dir])
		r.dirNames = append(r.dirNames, dir)
	}
	r.dirNames = sortedKeysByLengthDesc(r.dirNames)
	for _, paths := range r.basenames {
		sort.Strings(paths)
	}
	for _, paths := range r.modules {
		sort.Strings(paths)
	}
	return r
}

// resolve maps a raw spec from file f to zero or more snapshot paths.
// An empty result means the reference is dropped.
func (r *resolver) resolve(f *types.FileRecord, spec string) []string {
	switch f.Language {
	case types.LangPython:
		return r.resolvePython(f, spec)
	case types.LangGo:
		return r.resolveGo(f, spec)
	case types.LangJavaScript, types.LangTypeScript:
		return r.resolveJS(f, spec)
	case types.LangJava:
		return r.resolveJava(f, spec)
	case types.LangRust:
		return r.resolveRust(f, spec)
	case types.LangRuby:
		return r.resolveRuby(f, spec)
	case types.LangC:
		return r.resolveC(f, spec)
	default:
		return nil
	}
}

// resolvePython matches the dotted module name directly, then each parent
// prefix (covers "from pkg.mod import name" where name is an attribute).
func (r *resolver) resolvePython(f *types.FileRecord, spec string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(paths []string) {
		for _, p := range paths {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}

	add(r.modules[spec])
	parts := strings.Split(spec, ".")
	for i := len(parts) - 1; i > 0; i-- {
		add(r.modules[strings.Join(parts[:i], ".")])
	}
	if len(out) > 0 {
		return out
	}
	return r.fuzzy(f, parts[len(parts)-1])
}

// resolveGo matches the import path's trailing components against snapshot
// directories; the edge targets every file of the matched package directory.
func (r *resolver) resolveGo(f *types.FileRecord, spec string) []string {
	for _, dir := range r.dirNames {
		if dir == "" {
			continue
		}
		if spec == dir || strings.HasSuffix(spec, "/"+dir) {
			return r.dirs[dir]
		}
	}
	return r.fuzzy(f, path.Base(spec))
}

func (r *resolver) resolveJS(f *types.FileRecord, spec string) []string {
	spec = strings.TrimSuffix(spec, "/")
	var base string
	if strings.HasPrefix(spec, ".") {
		base = path.Join(path.Dir(f.Path), spec)
	} else {
		base = spec // project-root style import; bare package names fall through
	}

	candidates := []string{base}
	for _, ext := range jsExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range jsExtensions {
		candidates = append(candidates, path.Join(base, "index"+ext))
	}
	for _, c := range candidates {
		if r.exists(c) {
			return []string{c}
		}
	}
	if strings.HasPrefix(spec, ".") {
		return r.fuzzy(f, path.Base(spec))
	}
	return nil // external package, drop
}

// resolveJava maps dotted class names onto path suffixes, falling back to a
// package-directory match for wildcard-style imports.
func (r *resolver) resolveJava(f *types.FileRecord, spec string) []string {
	slashed := strings.ReplaceAll(spec, ".", "/")

	if r.exists(slashed + ".java") {
		return []string{slashed + ".java"}
	}
	suffix := "/" + slashed + ".java"
	var matches []string
	for p := range r.paths {
		if strings.HasSuffix(p, suffix) {
			matches = append(matches, p)
		}
	}
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches[:1]
	}

	for _, dir := range r.dirNames {
		if dir != "" && (dir == slashed || strings.HasSuffix(dir, "/"+slashed)) {
			return r.dirs[dir]
		}
	}
	parts := strings.Split(spec, ".")
	return r.fuzzy(f, parts[len(parts)-1])
}

func (r *resolver) resolveRust(f *types.FileRecord, spec string) []string {
	spec = strings.TrimPrefix(spec, "crate::")
	spec = strings.TrimPrefix(spec, "self::")
	spec = strings.TrimPrefix(spec, "super::")
	segments := strings.Split(spec, "::")

	roots := []string{path.Dir(f.Path), "", "src"}
	// Trailing segments may name items rather than modules; peel them off
	for end := len(segments); end > 0; end-- {
		rel := path.Join(segments[:end]...)
		for _, root := range roots {
			for _, candidate := range []string{
				path.Join(root, rel+".rs"),
				path.Join(root, rel, "mod.rs"),
			} {
				if r.exists(candidate) {
					return []string{candidate}
				}
			}
		}
	}
	return r.fuzzy(f, segments[len(segments)-1])
}

func (r *resolver) resolveRuby(f *types.FileRecord, spec string) []string {
	candidates := []string{
		path.Join(path.Dir(f.Path), spec+".rb"),
		path.Join(path.Dir(f.Path), spec),
		spec + ".rb",
		path.Join("lib", spec+".rb"),
	}
	for _, c := range candidates {
		if r.exists(c) {
			return []string{c}
		}
	}
	return r.fuzzy(f, path.Base(spec))
}

func (r *resolver) resolveC(f *types.FileRecord, spec string) []string {
	candidates := []string{
		path.Join(path.Dir(f.Path), spec),
		spec,
		path.Join("include", spec),
	}
	for _, c := range candidates {
		if r.exists(c) {
			return []string{c}
		}
	}
	return r.fuzzy(f, path.Base(spec))
}

// fuzzy matches a reference against file basenames. Of the candidates, the
// one sharing the longest directory prefix with the source wins; ties go to
// the lexicographically smaller path.
func (r *resolver) fuzzy(f *types.FileRecord, name string) []string {
	name = strings.TrimSuffix(name, path.Ext(name))
	candidates := r.basenames[name]
	if len(candidates) == 0 {
		return nil
	}

	best := ""
	bestShared := -1
	srcDir := path.Dir(f.Path)
	for _, c := range candidates {
		if c == f.Path {
			continue
		}
		shared := sharedSegments(srcDir, path.Dir(c))
		if shared > bestShared || (shared == bestShared && c < best) {
			best = c
			bestShared = shared
		}
	}
	if best == "" {
		return nil
	}
	return []string{best}
}

func (r *resolver) exists(p string) bool {
	_, ok := r.paths[p]
	return ok
}

// pythonModuleName converts a path to its dotted module name;
// package __init__.py files name their directory.
func pythonModuleName(p string) string {
	p = strings.TrimSuffix(p, ".py")
	parts := strings.Split(p, "/")
	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// sharedSegments counts leading path segments two directories have in common
func sharedSegments(a, b string) int {
	if a == "." {
		a = ""
	}
	if b == "." {
		b = ""
	}
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

// sortedKeysByLengthDesc orders directory names longest-first so suffix
// matching prefers the most specific package directory, ties lexicographic
func sortedKeysByLengthDesc(keys []string) []string {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
