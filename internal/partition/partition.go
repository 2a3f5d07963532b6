package partition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"repodoc/internal/docgen"
	"repodoc/pkg/types"
)

// Method selects a partitioning strategy
type Method string

const (
	MethodStructural Method = "structural"
	MethodDependency Method = "dependency"
	MethodHybrid     Method = "hybrid"
	MethodLLMCluster Method = "llm_cluster"
)

// Default size bounds
const (
	DefaultMaxSectionSize = 15
	DefaultMinSectionSize = 2
)

var (
	// ErrGraphRequired is returned when a graph-driven strategy is invoked
	// without a dependency graph
	ErrGraphRequired = errors.New("dependency graph required")
	// ErrUnknownMethod is returned by the factory for unrecognized methods
	ErrUnknownMethod = errors.New("unknown partition method")
	// ErrGeneratorRequired is returned when the model-assisted strategy is
	// constructed without a generator
	ErrGeneratorRequired = errors.New("documentation generator required")
)

// Bounds are the file-count limits on a section. A single-file section may
// violate either bound when it cannot be split or merged further.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds returns the default section size bounds
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinSectionSize, Max: DefaultMaxSectionSize}
}

// Partitioner partitions a snapshot into named sections respecting size
// bounds. Implementations are stateless; concurrent calls over different
// snapshots are safe.
type Partitioner interface {
	Method() Method
	Partition(ctx context.Context, snapshot []types.FileRecord, graph *types.DependencyGraph, bounds Bounds) (*types.Partition, error)
}

// New returns the partitioner for a method. The generator is only needed
// for the model-assisted clustering strategy.
func New(method Method, gen docgen.Generator) (Partitioner, error) {
	switch method {
	case MethodStructural:
		return &Structural{}, nil
	case MethodDependency:
		return &Dependency{}, nil
	case MethodHybrid:
		return &Hybrid{}, nil
	case MethodLLMCluster:
		if gen == nil {
			return nil, ErrGeneratorRequired
		}
		return &LLMCluster{gen: gen}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// checkInputs performs the fatal validations shared by every strategy
func checkInputs(snapshot []types.FileRecord, bounds Bounds) error {
	if len(snapshot) == 0 {
		return types.ErrEmptySnapshot
	}
	if bounds.Min < 1 || bounds.Max < 1 {
		return fmt.Errorf("%w: bounds must be positive", types.ErrInvalidBounds)
	}
	if bounds.Min > bounds.Max {
		return fmt.Errorf("%w: min %d > max %d", types.ErrInvalidBounds, bounds.Min, bounds.Max)
	}
	return nil
}

// group is the working representation of a section during partitioning:
// a name and a sorted set of file paths
type group struct {
	name  string
	paths []string
}

func newGroup(name string, paths []string) group {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	return group{name: name, paths: sorted}
}

// fileIndex maps snapshot paths to their records
func fileIndex(snapshot []types.FileRecord) map[string]types.FileRecord {
	index := make(map[string]types.FileRecord, len(snapshot))
	for _, f := range snapshot {
		index[f.Path] = f
	}
	return index
}

// buildPartition converts groups into a sorted partition, disambiguating
// any duplicate group names deterministically
func buildPartition(method Method, groups []group, index map[string]types.FileRecord) *types.Partition {
	sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })

	used := make(map[string]int, len(groups))
	p := &types.Partition{Method: string(method)}
	for _, grp := range groups {
		if len(grp.paths) == 0 {
			continue
		}
		name := grp.name
		if n := used[name]; n > 0 {
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[grp.name]++

		files := make([]types.FileRecord, 0, len(grp.paths))
		for _, path := range grp.paths {
			files = append(files, index[path])
		}
		p.Sections = append(p.Sections, types.NewSection(name, files))
	}
	p.Sort()
	return p
}

// commonPrefix returns the deepest directory segment shared by all paths,
// or "" when they diverge at the root
func commonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	parts := strings.Split(paths[0], "/")
	shared := len(parts) - 1 // never include the file name itself
	for _, p := range paths[1:] {
		other := strings.Split(p, "/")
		n := 0
		for n < shared && n < len(other)-1 && parts[n] == other[n] {
			n++
		}
		shared = n
	}
	if shared == 0 {
		return ""
	}
	return parts[shared-1]
}

// topLevelDir returns the first path segment, or "root" for files with no
// directory
func topLevelDir(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "root"
}
