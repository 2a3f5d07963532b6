package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"repodoc/internal/contextmgr"
	"repodoc/internal/deps"
	"repodoc/internal/partition"
	"repodoc/internal/snapshot"
	"repodoc/internal/storage"
	"repodoc/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyRepository = -32001 // Repository contains no recognizable source files
	ErrorCodeNotCached       = -32002 // No cached partition for this snapshot
)

// handlePartitionRepository handles the partition_repository tool invocation
func (s *Server) handlePartitionRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	method := partition.Method(getStringDefault(args, "method", string(partition.MethodLLMCluster)))
	bounds, err := parseBounds(args)
	if err != nil {
		return nil, err
	}
	includeTests := getBoolDefault(args, "include_tests", false)

	_, partitionID, p, err := s.partitionRepo(ctx, path, method, bounds, includeTests)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"method":        p.Method,
		"partition_id":  partitionID,
		"section_count": len(p.Sections),
		"sections":      sectionSummaries(p),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDocumentRepository handles the document_repository tool invocation
func (s *Server) handleDocumentRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	method := partition.Method(getStringDefault(args, "method", string(partition.MethodLLMCluster)))
	bounds, err := parseBounds(args)
	if err != nil {
		return nil, err
	}
	query := getStringDefault(args, "query", s.cfg.Query)
	useContext := getBoolDefault(args, "use_context", s.cfg.UseContext)

	_, partitionID, p, err := s.partitionRepo(ctx, path, method, bounds, s.cfg.IncludeTests)
	if err != nil {
		return nil, err
	}

	mgr := contextmgr.New(s.gen, contextmgr.Options{
		Query:          query,
		UseContext:     useContext,
		Concurrency:    s.cfg.Concurrency,
		SectionTimeout: s.cfg.SectionTimeout,
	})
	run, err := mgr.DocumentAll(ctx, p)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "documentation run failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	for _, res := range run.Results {
		a := &storage.Analysis{
			RunID:       run.ID,
			PartitionID: partitionID,
			SectionName: res.Section.Name,
			State:       string(res.State),
			Analysis:    res.Analysis,
		}
		if res.Err != nil {
			a.Error = res.Err.Error()
		}
		if err := s.store.SaveAnalysis(ctx, a); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to persist analysis", map[string]interface{}{
				"section": res.Section.Name,
				"error":   err.Error(),
			})
		}
	}

	response := map[string]interface{}{
		"run_id":        run.ID,
		"method":        run.Method,
		"section_count": len(run.Results),
		"completed":     run.Completed(),
		"failed":        len(run.Results) - run.Completed(),
		"duration_ms":   run.Finished.Sub(run.Started).Milliseconds(),
		"index":         contextmgr.RenderIndex(run),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetCachedPartition handles the get_cached_partition tool invocation
func (s *Server) handleGetCachedPartition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	method := getStringDefault(args, "method", string(partition.MethodLLMCluster))
	bounds, err := parseBounds(args)
	if err != nil {
		return nil, err
	}

	files, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, snapshotError(path, err)
	}
	hash := snapshot.Hash(files)

	snap, err := s.store.GetSnapshot(ctx, path, hash)
	if err == storage.ErrNotFound {
		response := map[string]interface{}{
			"cached":  false,
			"path":    path,
			"message": "No cached partition for the current repository contents. Use partition_repository to compute one.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to look up snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	key := storage.PartitionKey{SnapshotID: snap.ID, Method: method, MinSize: bounds.Min, MaxSize: bounds.Max}
	partitionID, p, err := s.store.GetPartition(ctx, key)
	if err == storage.ErrNotFound {
		response := map[string]interface{}{
			"cached":  false,
			"path":    path,
			"message": fmt.Sprintf("No cached %s partition with these bounds.", method),
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load cached partition", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"cached":        true,
		"method":        p.Method,
		"partition_id":  partitionID,
		"section_count": len(p.Sections),
		"sections":      sectionSummaries(p),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// partitionRepo runs the full pipeline: load, extract, partition,
// validate, cache
func (s *Server) partitionRepo(ctx context.Context, path string, method partition.Method, bounds partition.Bounds, includeTests bool) (int64, int64, *types.Partition, error) {
	if err := validatePath(path); err != nil {
		return 0, 0, nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	loader := s.loader
	if includeTests != s.cfg.IncludeTests {
		loader = snapshot.New(snapshot.Config{IncludeTests: includeTests})
	}
	files, err := loader.Load(ctx, path)
	if err != nil {
		return 0, 0, nil, snapshotError(path, err)
	}

	graph := deps.Extract(files)

	part, err := partition.New(method, s.gen)
	if err != nil {
		return 0, 0, nil, newMCPError(ErrorCodeInvalidParams, "invalid method", map[string]interface{}{
			"param": "method",
			"error": err.Error(),
		})
	}
	p, err := part.Partition(ctx, files, graph, bounds)
	if err != nil {
		return 0, 0, nil, newMCPError(ErrorCodeInternalError, "partitioning failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := p.Validate(files, bounds.Min, bounds.Max); err != nil {
		return 0, 0, nil, newMCPError(ErrorCodeInternalError, "partition validation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	snap := &storage.Snapshot{RootPath: path, Hash: snapshot.Hash(files), FileCount: len(files)}
	if err := s.store.CreateSnapshot(ctx, snap); err == storage.ErrAlreadyExists {
		existing, getErr := s.store.GetSnapshot(ctx, snap.RootPath, snap.Hash)
		if getErr != nil {
			return 0, 0, nil, newMCPError(ErrorCodeInternalError, "failed to look up snapshot", map[string]interface{}{
				"error": getErr.Error(),
			})
		}
		snap = existing
	} else if err != nil {
		return 0, 0, nil, newMCPError(ErrorCodeInternalError, "failed to record snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	key := storage.PartitionKey{SnapshotID: snap.ID, Method: string(method), MinSize: bounds.Min, MaxSize: bounds.Max}
	partitionID, err := s.store.SavePartition(ctx, key, p)
	if err != nil {
		return 0, 0, nil, newMCPError(ErrorCodeInternalError, "failed to cache partition", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return snap.ID, partitionID, p, nil
}

// sectionSummaries renders a partition's sections for a tool response
func sectionSummaries(p *types.Partition) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(p.Sections))
	for _, sec := range p.Sections {
		out = append(out, map[string]interface{}{
			"name":       sec.Name,
			"file_count": sec.FileCount(),
			"total_size": sec.TotalSize,
			"files":      sec.Paths(),
		})
	}
	return out
}

// snapshotError maps a snapshot load failure onto an MCP error
func snapshotError(path string, err error) error {
	if errors.Is(err, types.ErrEmptySnapshot) {
		return newMCPError(ErrorCodeEmptyRepository, "repository contains no recognizable source files", map[string]interface{}{
			"path": path,
		})
	}
	return newMCPError(ErrorCodeInternalError, "failed to load repository", map[string]interface{}{
		"path":  path,
		"error": err.Error(),
	})
}

// requirePath extracts and validates the mandatory path argument
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	return path, nil
}

// parseBounds extracts the section size bounds from tool arguments
func parseBounds(args map[string]interface{}) (partition.Bounds, error) {
	bounds := partition.Bounds{
		Min: getIntDefault(args, "min_section_size", partition.DefaultMinSectionSize),
		Max: getIntDefault(args, "max_section_size", partition.DefaultMaxSectionSize),
	}
	if bounds.Min < 1 || bounds.Min > 2 {
		return partition.Bounds{}, newMCPError(ErrorCodeInvalidParams, "min_section_size must be 1 or 2", map[string]interface{}{
			"param": "min_section_size",
			"value": bounds.Min,
		})
	}
	if bounds.Max < bounds.Min {
		return partition.Bounds{}, newMCPError(ErrorCodeInvalidParams, "max_section_size must be at least min_section_size", map[string]interface{}{
			"param": "max_section_size",
			"value": bounds.Max,
		})
	}
	return bounds, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is an accessible directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
