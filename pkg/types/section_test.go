package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileWithLines(path string, lines int) FileRecord {
	content := ""
	for i := 0; i < lines; i++ {
		content += fmt.Sprintf("line %d\n", i)
	}
	return NewFileRecord(path, content)
}

func TestNewSection_SortsAndSizes(t *testing.T) {
	sec := NewSection("core", []FileRecord{
		fileWithLines("b.py", 3),
		fileWithLines("a.py", 2),
	})

	assert.Equal(t, []string{"a.py", "b.py"}, sec.Paths())
	assert.Equal(t, 5, sec.TotalSize)
	assert.Equal(t, 2, sec.FileCount())
}

func TestPartitionSort_SizeDescThenName(t *testing.T) {
	p := &Partition{Sections: []Section{
		NewSection("small", []FileRecord{fileWithLines("a.py", 1)}),
		NewSection("bigger", []FileRecord{fileWithLines("b.py", 10)}),
		NewSection("alpha", []FileRecord{fileWithLines("c.py", 1)}),
	}}

	p.Sort()

	names := []string{p.Sections[0].Name, p.Sections[1].Name, p.Sections[2].Name}
	assert.Equal(t, []string{"bigger", "alpha", "small"}, names)
}

func TestValidate_CoversSnapshot(t *testing.T) {
	snapshot := []FileRecord{
		fileWithLines("a.py", 1),
		fileWithLines("b.py", 1),
		fileWithLines("c.py", 1),
		fileWithLines("d.py", 1),
	}
	p := &Partition{Sections: []Section{
		NewSection("one", snapshot[:2]),
		NewSection("two", snapshot[2:]),
	}}

	assert.NoError(t, p.Validate(snapshot, 2, 15))
}

func TestValidate_MissingFile(t *testing.T) {
	snapshot := []FileRecord{
		fileWithLines("a.py", 1),
		fileWithLines("b.py", 1),
		fileWithLines("c.py", 1),
	}
	p := &Partition{Sections: []Section{
		NewSection("one", snapshot[:2]),
	}}

	err := p.Validate(snapshot, 1, 15)
	require.ErrorIs(t, err, ErrCoverViolation)
	assert.Contains(t, err.Error(), "c.py")
}

func TestValidate_DuplicateFile(t *testing.T) {
	snapshot := []FileRecord{
		fileWithLines("a.py", 1),
		fileWithLines("b.py", 1),
	}
	p := &Partition{Sections: []Section{
		NewSection("one", snapshot),
		NewSection("two", snapshot[1:]),
	}}

	err := p.Validate(snapshot, 1, 15)
	assert.ErrorIs(t, err, ErrCoverViolation)
}

func TestValidate_FileOutsideSnapshot(t *testing.T) {
	snapshot := []FileRecord{fileWithLines("a.py", 1), fileWithLines("b.py", 1)}
	p := &Partition{Sections: []Section{
		NewSection("one", []FileRecord{snapshot[0], snapshot[1], fileWithLines("ghost.py", 1)}),
	}}

	err := p.Validate(snapshot, 1, 15)
	require.ErrorIs(t, err, ErrCoverViolation)
	assert.Contains(t, err.Error(), "ghost.py")
}

func TestValidate_BoundsViolation(t *testing.T) {
	var snapshot []FileRecord
	for i := 0; i < 5; i++ {
		snapshot = append(snapshot, fileWithLines(fmt.Sprintf("f%d.py", i), 1))
	}
	p := &Partition{Sections: []Section{NewSection("all", snapshot)}}

	err := p.Validate(snapshot, 1, 3)
	assert.ErrorIs(t, err, ErrBoundsViolation)
}

func TestValidate_SingleFileEscape(t *testing.T) {
	snapshot := []FileRecord{
		fileWithLines("a.py", 1),
		fileWithLines("b.py", 1),
		fileWithLines("c.py", 1),
	}
	// the lone-file section violates the lower bound of 2, which is allowed
	p := &Partition{Sections: []Section{
		NewSection("pair", snapshot[:2]),
		NewSection("lone", snapshot[2:]),
	}}

	assert.NoError(t, p.Validate(snapshot, 2, 15))
}

func TestValidate_WholeSnapshotBelowMinimum(t *testing.T) {
	snapshot := []FileRecord{fileWithLines("a.py", 1), fileWithLines("b.py", 1)}
	p := &Partition{Sections: []Section{NewSection("all", snapshot)}}

	// two files, lower bound 2: satisfied exactly
	assert.NoError(t, p.Validate(snapshot, 2, 15))
}

func TestValidate_InvalidBounds(t *testing.T) {
	snapshot := []FileRecord{fileWithLines("a.py", 1)}
	p := &Partition{Sections: []Section{NewSection("all", snapshot)}}

	assert.ErrorIs(t, p.Validate(snapshot, 5, 2), ErrInvalidBounds)
}

func TestPartitionMarshalJSON(t *testing.T) {
	p := &Partition{
		Method: "structural",
		Sections: []Section{
			NewSection("core", []FileRecord{fileWithLines("a.py", 2), fileWithLines("b.py", 3)}),
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded struct {
		Method   string `json:"method"`
		Sections []struct {
			Name      string   `json:"name"`
			Files     []string `json:"files"`
			TotalSize int      `json:"total_size"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "structural", decoded.Method)
	require.Len(t, decoded.Sections, 1)
	assert.Equal(t, "core", decoded.Sections[0].Name)
	assert.Equal(t, []string{"a.py", "b.py"}, decoded.Sections[0].Files)
	assert.Equal(t, 5, decoded.Sections[0].TotalSize)
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/app.py", LangPython},
		{"main.go", LangGo},
		{"web/index.TSX", LangTypeScript},
		{"README.md", LangUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LanguageForPath(tt.path), tt.path)
	}
}

func TestNewFileRecord_CountsLines(t *testing.T) {
	assert.Equal(t, 0, NewFileRecord("a.py", "").Size)
	assert.Equal(t, 1, NewFileRecord("a.py", "x").Size)
	assert.Equal(t, 2, NewFileRecord("a.py", "x\ny\n").Size)
}
