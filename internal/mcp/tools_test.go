package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoc/internal/config"
	"repodoc/internal/docgen"
	"repodoc/internal/snapshot"
	"repodoc/internal/storage"
)

func newTestServer(t *testing.T, responses ...string) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &Server{
		store:  store,
		loader: snapshot.New(snapshot.Config{}),
		gen:    docgen.NewMockProvider(responses...),
		cfg:    config.Default(),
	}
}

func testRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"api/handlers.py": "from core.engine import run\n",
		"api/routes.py":   "from api.handlers import handle\n",
		"core/engine.py":  "import os\n",
		"core/state.py":   "from core.engine import run\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func mcpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	return mcpErr.Code
}

func TestHandlePartitionRepository(t *testing.T) {
	srv := newTestServer(t)
	root := testRepo(t)

	result, err := srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{
		"path":   root,
		"method": "structural",
	}))
	require.NoError(t, err)

	resp := resultJSON(t, result)
	assert.Equal(t, "structural", resp["method"])
	assert.Equal(t, float64(2), resp["section_count"])
	assert.NotZero(t, resp["partition_id"])

	sections := resp["sections"].([]interface{})
	names := make([]string, 0, len(sections))
	for _, raw := range sections {
		sec := raw.(map[string]interface{})
		names = append(names, sec["name"].(string))
		assert.Equal(t, float64(2), sec["file_count"])
	}
	assert.ElementsMatch(t, []string{"api", "core"}, names)
}

func TestHandlePartitionRepository_MissingPath(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))
}

func TestHandlePartitionRepository_RelativePath(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{
		"path": "relative/repo",
	}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))
}

func TestHandlePartitionRepository_EmptyRepository(t *testing.T) {
	srv := newTestServer(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("no code\n"), 0o644))

	_, err := srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{
		"path": root,
	}))
	assert.Equal(t, ErrorCodeEmptyRepository, mcpErrorCode(t, err))
}

func TestHandlePartitionRepository_BadBounds(t *testing.T) {
	srv := newTestServer(t)
	root := testRepo(t)

	_, err := srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{
		"path":             root,
		"min_section_size": float64(3),
	}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))

	_, err = srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{
		"path":             root,
		"max_section_size": float64(1),
	}))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErrorCode(t, err))
}

func TestHandlePartitionRepository_DefaultsToModelClustering(t *testing.T) {
	grouping := `{"api_layer": ["api/handlers.py", "api/routes.py"], "core_engine": ["core/engine.py", "core/state.py"]}`
	srv := newTestServer(t, grouping)
	root := testRepo(t)

	// no method argument: the model-assisted strategy is the default
	result, err := srv.handlePartitionRepository(context.Background(), callRequest(map[string]interface{}{
		"path": root,
	}))
	require.NoError(t, err)

	resp := resultJSON(t, result)
	assert.Equal(t, "llm_cluster", resp["method"])
	assert.Equal(t, float64(2), resp["section_count"])
}

func TestHandleGetCachedPartition(t *testing.T) {
	srv := newTestServer(t)
	root := testRepo(t)
	args := map[string]interface{}{"path": root, "method": "structural"}

	// nothing cached yet
	result, err := srv.handleGetCachedPartition(context.Background(), callRequest(args))
	require.NoError(t, err)
	resp := resultJSON(t, result)
	assert.Equal(t, false, resp["cached"])

	_, err = srv.handlePartitionRepository(context.Background(), callRequest(args))
	require.NoError(t, err)

	result, err = srv.handleGetCachedPartition(context.Background(), callRequest(args))
	require.NoError(t, err)
	resp = resultJSON(t, result)
	assert.Equal(t, true, resp["cached"])
	assert.Equal(t, float64(2), resp["section_count"])

	// a different method has no cache entry
	result, err = srv.handleGetCachedPartition(context.Background(), callRequest(map[string]interface{}{
		"path":   root,
		"method": "hybrid",
	}))
	require.NoError(t, err)
	resp = resultJSON(t, result)
	assert.Equal(t, false, resp["cached"])
}

func TestHandleDocumentRepository(t *testing.T) {
	srv := newTestServer(t, "The api section handles routing.", "The core section drives execution.")
	root := testRepo(t)

	result, err := srv.handleDocumentRepository(context.Background(), callRequest(map[string]interface{}{
		"path":   root,
		"method": "structural",
		"query":  "What does each section do?",
	}))
	require.NoError(t, err)

	resp := resultJSON(t, result)
	assert.Equal(t, float64(2), resp["section_count"])
	assert.Equal(t, float64(2), resp["completed"])
	assert.Equal(t, float64(0), resp["failed"])
	assert.Contains(t, resp["index"], "# Repository Analysis Index")

	runID, ok := resp["run_id"].(string)
	require.True(t, ok)
	analyses, err := srv.store.ListAnalysesByRun(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "completed", analyses[0].State)
}

func TestParseBounds(t *testing.T) {
	bounds, err := parseBounds(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 2, bounds.Min)
	assert.Equal(t, 15, bounds.Max)

	// JSON numbers arrive as float64
	bounds, err = parseBounds(map[string]interface{}{
		"min_section_size": float64(1),
		"max_section_size": float64(8),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, bounds.Min)
	assert.Equal(t, 8, bounds.Max)

	_, err = parseBounds(map[string]interface{}{"min_section_size": float64(0)})
	assert.Error(t, err)
	_, err = parseBounds(map[string]interface{}{"max_section_size": float64(1)})
	assert.Error(t, err)
}

func TestValidatePath(t *testing.T) {
	assert.ErrorIs(t, validatePath(""), ErrPathRequired)
	assert.ErrorIs(t, validatePath("relative/path"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(t.TempDir(), "missing")), ErrPathNotFound)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.ErrorIs(t, validatePath(file), ErrNotDirectory)

	assert.NoError(t, validatePath(t.TempDir()))
}

func TestArgumentHelpers(t *testing.T) {
	args := map[string]interface{}{
		"count":   float64(7),
		"flag":    true,
		"label":   "x",
		"badType": "seven",
	}
	assert.Equal(t, 7, getIntDefault(args, "count", 1))
	assert.Equal(t, 1, getIntDefault(args, "missing", 1))
	assert.Equal(t, 1, getIntDefault(args, "badType", 1))
	assert.True(t, getBoolDefault(args, "flag", false))
	assert.False(t, getBoolDefault(args, "missing", false))
	assert.Equal(t, "x", getStringDefault(args, "label", "y"))
	assert.Equal(t, "y", getStringDefault(args, "missing", "y"))
}

func TestMCPError_Error(t *testing.T) {
	err := newMCPError(ErrorCodeNotCached, "nothing cached", nil)
	assert.Equal(t, "MCP error -32002: nothing cached", err.Error())

	var mcpErr *MCPError
	assert.True(t, errors.As(err, &mcpErr))
}

func TestToolDefinitions(t *testing.T) {
	for _, tool := range []mcp.Tool{partitionRepositoryTool(), documentRepositoryTool(), getCachedPartitionTool()} {
		assert.NotEmpty(t, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, []string{"path"}, tool.InputSchema.Required)
	}
	assert.Equal(t, "partition_repository", partitionRepositoryTool().Name)
	assert.Equal(t, "document_repository", documentRepositoryTool().Name)
	assert.Equal(t, "get_cached_partition", getCachedPartitionTool().Name)
}
