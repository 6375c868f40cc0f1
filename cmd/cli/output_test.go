package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-analyzer/internal/dashboard"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
)

func sampleReport() *dashboard.Report {
	goMod := "module example.com/demo"
	return &dashboard.Report{
		Repo: "octo/demo",
		Analysis: &domain.Analysis{
			Name:         "demo",
			FullName:     "octo/demo",
			Stars:        1500,
			Languages:    map[string]int{"Go": 4096},
			Contributors: []domain.Contributor{{Login: "alice", Contributions: 12}},
		},
		Tree: dashboard.Panel[[]domain.DirectoryNode]{Value: []domain.DirectoryNode{
			{Name: "src", Type: domain.NodeTypeDir, Children: []domain.DirectoryNode{{Name: "a.js", Type: domain.NodeTypeFile}}},
		}},
		Coverage:     dashboard.Panel[*domain.Coverage]{Value: &domain.Coverage{}},
		Dependencies: dashboard.Panel[domain.Dependencies]{Value: domain.Dependencies{"go.mod": &goMod}},
		Topics:       dashboard.Panel[[]string]{Value: []string{"cli", "go"}},
		Releases:     dashboard.Panel[[]domain.Release]{Err: apperrors.NewUnsupportedError("releases")},
	}
}

func TestWriteTables(t *testing.T) {
	var buf bytes.Buffer
	writeTables(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "Repository: octo/demo")
	assert.Contains(t, out, "No description available")
	assert.Contains(t, out, "1.5K")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "src/\n  a.js\n")
	assert.Contains(t, out, "No coverage data available.")
	assert.Contains(t, out, "module example.com/demo")
	assert.Contains(t, out, "cli, go")
	assert.Contains(t, out, "unavailable: ")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "octo/demo", got["repo"])

	releases, ok := got["releases"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, releases["error"])
	assert.NotContains(t, releases, "data")

	topics, ok := got["topics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"cli", "go"}, topics["data"])
}
