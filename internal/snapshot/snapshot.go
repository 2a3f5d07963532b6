package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"repodoc/pkg/types"
)

// Defaults for loading
const (
	DefaultMaxFileSize = 1 << 20 // 1 MiB per file
	binarySniffLen     = 8000
)

// Directories never walked into
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"bin":          true,
	"obj":          true,
}

// Config controls snapshot loading
type Config struct {
	Workers      int   // concurrent file reads (default: runtime.NumCPU())
	MaxFileSize  int64 // files larger than this are skipped (default: 1 MiB)
	IncludeTests bool  // keep files whose path names them as tests
}

// Loader reads a repository from disk into an in-memory snapshot of
// recognized source files
type Loader struct {
	config Config
}

// New creates a Loader with the given configuration
func New(config Config) *Loader {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	return &Loader{config: config}
}

// Load walks rootPath and returns a snapshot: one record per recognized
// source file, paths relative to the root with forward slashes, sorted by
// path. Hidden directories, dependency caches, build output, binary
// files, and files over the size limit are skipped. An empty result is
// reported as ErrEmptySnapshot.
func (l *Loader) Load(ctx context.Context, rootPath string) ([]types.FileRecord, error) {
	paths, err := l.discover(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	records := make([]types.FileRecord, len(paths))
	keep := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Workers)
	for i, relPath := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(filepath.Join(rootPath, filepath.FromSlash(relPath)))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", relPath, err)
			}
			if isBinary(content) {
				return nil
			}
			records[i] = types.NewFileRecord(relPath, string(content))
			keep[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := make([]types.FileRecord, 0, len(records))
	for i, rec := range records {
		if keep[i] {
			snapshot = append(snapshot, rec)
		}
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("%w: no source files under %s", types.ErrEmptySnapshot, rootPath)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Path < snapshot[j].Path })
	return snapshot, nil
}

// discover finds candidate source files under rootPath
func (l *Loader) discover(rootPath string) ([]string, error) {
	var paths []string
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") || skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if types.LanguageForPath(path) == "" {
			return nil
		}
		if info.Size() > l.config.MaxFileSize {
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !l.config.IncludeTests && isTestPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	return paths, err
}

// isTestPath reports whether a path names a test file or lives under a
// tests directory
func isTestPath(relPath string) bool {
	lower := strings.ToLower(relPath)
	if strings.HasPrefix(lower, "tests/") || strings.Contains(lower, "/tests/") {
		return true
	}
	base := lower[strings.LastIndexByte(lower, '/')+1:]
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.go") || strings.HasSuffix(base, ".spec.ts") || strings.HasSuffix(base, ".spec.js")
}

// isBinary sniffs the leading bytes for a NUL, the same heuristic git uses
func isBinary(content []byte) bool {
	n := len(content)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(content[:n], 0) >= 0
}

// Hash returns a stable identity for a snapshot, derived from every path
// and content in order
func Hash(snapshot []types.FileRecord) string {
	h := sha256.New()
	for _, f := range snapshot {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write([]byte(f.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
