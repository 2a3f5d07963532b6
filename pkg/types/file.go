package types

import (
	"path"
	"strings"
)

// Language identifiers for files recognized by the dependency extractor
const (
	LangPython     = "python"
	LangGo         = "go"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangJava       = "java"
	LangRust       = "rust"
	LangRuby       = "ruby"
	LangC          = "c"
	LangUnknown    = ""
)

// extensionLanguages maps file extensions to language identifiers
var extensionLanguages = map[string]string{
	".py":   LangPython,
	".go":   LangGo,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".java": LangJava,
	".rs":   LangRust,
	".rb":   LangRuby,
	".c":    LangC,
	".h":    LangC,
	".cc":   LangC,
	".cpp":  LangC,
	".hpp":  LangC,
}

// FileRecord is a single file within a repository snapshot.
// Records are immutable once loaded; Path is unique within a snapshot.
type FileRecord struct {
	Path     string
	Content  string
	Size     int // line count
	Language string
}

// NewFileRecord builds a record with derived size and language
func NewFileRecord(filePath, content string) FileRecord {
	return FileRecord{
		Path:     filePath,
		Content:  content,
		Size:     countLines(content),
		Language: LanguageForPath(filePath),
	}
}

// LanguageForPath infers a language identifier from a file extension
func LanguageForPath(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
	return extensionLanguages[ext]
}

// countLines counts newline-delimited lines; empty content counts as zero
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
