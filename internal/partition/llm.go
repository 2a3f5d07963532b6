package partition

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"repodoc/internal/docgen"
	"repodoc/pkg/types"
)

// LLMCluster asks the documentation model to group files by purpose. The
// model sees a manifest of paths with language and size, never file
// contents. Model failures and malformed replies degrade to an
// unclassified bucket rather than failing the partition.
type LLMCluster struct {
	gen docgen.Generator
}

func (l *LLMCluster) Method() Method { return MethodLLMCluster }

func (l *LLMCluster) Partition(ctx context.Context, snapshot []types.FileRecord, graph *types.DependencyGraph, bounds Bounds) (*types.Partition, error) {
	if err := checkInputs(snapshot, bounds); err != nil {
		return nil, err
	}

	index := fileIndex(snapshot)
	grouping := l.requestGrouping(ctx, snapshot, bounds)
	groups := assignGrouping(grouping, index)

	// rebalancing needs a graph; an edgeless one still drives the
	// balanced-bisection and smallest-name merge paths
	if graph == nil {
		paths := make([]string, 0, len(snapshot))
		for _, f := range snapshot {
			paths = append(paths, f.Path)
		}
		graph = types.NewDependencyGraph(paths)
	}
	groups = rebalance(groups, graph, bounds)
	return buildPartition(MethodLLMCluster, groups, index), nil
}

// requestGrouping returns the model's proposed grouping, or an empty map
// when the model fails or replies with something unparseable
func (l *LLMCluster) requestGrouping(ctx context.Context, snapshot []types.FileRecord, bounds Bounds) map[string][]string {
	prompt := clusteringPrompt(snapshot, bounds)
	resp, err := l.gen.Generate(ctx, docgen.Request{Prompt: prompt})
	if err != nil {
		log.Printf("model clustering failed, files will be grouped as unclassified: %v", err)
		return nil
	}
	grouping, err := parseGrouping(resp)
	if err != nil {
		log.Printf("model clustering response unusable, files will be grouped as unclassified: %v", err)
		return nil
	}
	return grouping
}

// clusteringPrompt renders the file manifest and grouping instructions
func clusteringPrompt(snapshot []types.FileRecord, bounds Bounds) string {
	var manifest strings.Builder
	for _, f := range snapshot {
		fmt.Fprintf(&manifest, "\nPath: %s\nLanguage: %s\nLines: %d\n", f.Path, f.Language, f.Size)
	}

	total := len(snapshot)
	minClusters := (total + bounds.Max - 1) / bounds.Max
	if minClusters < 2 {
		minClusters = 2
	}
	maxClusters := total / 2
	if maxClusters > 10 {
		maxClusters = 10
	}
	if maxClusters < 3 {
		maxClusters = 3
	}

	return fmt.Sprintf(`You are helping analyze a codebase for documentation purposes.
Group these files into logical clusters of related functionality.
%s
Rules:
1. Create between %d and %d distinct clusters
2. No cluster should contain more than %d files
3. Group files based on functional relationships, shared dependencies, and similar purposes

Format your response as a valid JSON object with cluster names as keys and arrays of file paths as values. Example:
`+"```json"+`
{
  "cluster_name_1": ["file/path1.py", "file/path2.py"],
  "cluster_name_2": ["file/path3.py", "file/path4.py"]
}
`+"```"+`

Choose descriptive cluster names that reflect the purpose of the grouped files.
`, manifest.String(), minClusters, maxClusters, bounds.Max)
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseGrouping extracts the cluster map from a model reply, accepting
// either a bare JSON object or one inside a fenced code block
func parseGrouping(resp string) (map[string][]string, error) {
	var grouping map[string][]string

	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(resp[start:end+1]), &grouping); err == nil {
			return grouping, nil
		}
	}
	if m := fencedJSON.FindStringSubmatch(resp); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &grouping); err == nil {
			return grouping, nil
		}
	}
	return nil, fmt.Errorf("%w: no cluster object found", types.ErrMalformedModelResponse)
}

// assignGrouping turns the model's grouping into groups over the real
// snapshot: paths the model invented are dropped with a warning, paths it
// omitted land in an unclassified bucket, and a path claimed by several
// clusters stays with the first cluster by name.
func assignGrouping(grouping map[string][]string, index map[string]types.FileRecord) []group {
	names := make([]string, 0, len(grouping))
	for name := range grouping {
		names = append(names, name)
	}
	sort.Strings(names)

	claimed := make(map[string]bool, len(index))
	var groups []group
	for _, name := range names {
		var paths []string
		for _, p := range grouping[name] {
			if _, ok := index[p]; !ok {
				log.Printf("model grouping referenced unknown path %q, dropping", p)
				continue
			}
			if claimed[p] {
				continue
			}
			claimed[p] = true
			paths = append(paths, p)
		}
		if len(paths) > 0 {
			groups = append(groups, newGroup(name, paths))
		}
	}

	var leftover []string
	for p := range index {
		if !claimed[p] {
			leftover = append(leftover, p)
		}
	}
	if len(leftover) > 0 {
		groups = append(groups, newGroup("unclassified", leftover))
	}
	return groups
}
