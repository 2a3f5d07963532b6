package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// partitionRepositoryTool returns the tool definition for partition_repository
func partitionRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "partition_repository",
		Description: "Partition a repository's source files into named sections of bounded size",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"method": map[string]interface{}{
					"type":        "string",
					"description": "Partitioning strategy",
					"enum":        []string{"structural", "dependency", "hybrid", "llm_cluster"},
					"default":     "llm_cluster",
				},
				"max_section_size": map[string]interface{}{
					"type":        "integer",
					"description": "Largest number of files allowed in a section",
					"default":     15,
					"minimum":     1,
				},
				"min_section_size": map[string]interface{}{
					"type":        "integer",
					"description": "Smallest number of files allowed in a section (1 or 2)",
					"default":     2,
					"minimum":     1,
					"maximum":     2,
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include test files in the snapshot",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// documentRepositoryTool returns the tool definition for document_repository
func documentRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "document_repository",
		Description: "Partition a repository and generate documentation for every section",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"method": map[string]interface{}{
					"type":        "string",
					"description": "Partitioning strategy",
					"enum":        []string{"structural", "dependency", "hybrid", "llm_cluster"},
					"default":     "llm_cluster",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Question to ask about each section; empty uses a general analysis prompt",
				},
				"use_context": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, carry a summary of earlier sections into later prompts; if false, document sections concurrently",
					"default":     true,
				},
				"max_section_size": map[string]interface{}{
					"type":        "integer",
					"description": "Largest number of files allowed in a section",
					"default":     15,
					"minimum":     1,
				},
				"min_section_size": map[string]interface{}{
					"type":        "integer",
					"description": "Smallest number of files allowed in a section (1 or 2)",
					"default":     2,
					"minimum":     1,
					"maximum":     2,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getCachedPartitionTool returns the tool definition for get_cached_partition
func getCachedPartitionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_cached_partition",
		Description: "Return a previously computed partition for a repository if its contents are unchanged",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"method": map[string]interface{}{
					"type":        "string",
					"description": "Partitioning strategy the cached partition was built with",
					"enum":        []string{"structural", "dependency", "hybrid", "llm_cluster"},
					"default":     "llm_cluster",
				},
				"max_section_size": map[string]interface{}{
					"type":        "integer",
					"description": "Upper size bound the cached partition was built with",
					"default":     15,
				},
				"min_section_size": map[string]interface{}{
					"type":        "integer",
					"description": "Lower size bound the cached partition was built with",
					"default":     2,
				},
			},
			Required: []string{"path"},
		},
	}
}
