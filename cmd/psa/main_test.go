package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/testutil"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI with args and returns what it wrote to its own writer.
// Reports go to stdout unless -o is given, so tests pass -o.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.RunContext(context.Background(), append([]string{"psa"}, args...))
	return buf.String(), err
}

func smartCity(t *testing.T, dir string) string {
	t.Helper()
	return testutil.WriteSnapshot(t, dir, "smartcity.json", testutil.SmartCity())
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, path)), v))
}

func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "no args defaults to current dir",
			args:     []string{},
			expected: []string{"."},
		},
		{
			name:     "single path",
			args:     []string{"/data/city.json"},
			expected: []string{"/data/city.json"},
		},
		{
			name:     "multiple paths",
			args:     []string{"/data", "/more"},
			expected: []string{"/data", "/more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			app := &cli.App{
				Action: func(c *cli.Context) error {
					got = getPaths(c)
					return nil
				},
			}
			require.NoError(t, app.Run(append([]string{"psa"}, tt.args...)))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)
	out := filepath.Join(dir, "out.json")

	_, err := runApp(t, "analyze", "-f", "json", "-o", out, path)
	require.NoError(t, err)

	var doc struct {
		Metadata report.Metadata `json:"metadata"`
		Analysis struct {
			Summary struct {
				Applications int `json:"applications"`
				PatternHits  int `json:"pattern_hits"`
			} `json:"summary"`
			Categories []json.RawMessage `json:"categories"`
		} `json:"analysis"`
	}
	readJSON(t, out, &doc)

	assert.Equal(t, "smartcity", doc.Metadata.Dataset)
	assert.Equal(t, path, doc.Metadata.Path)
	assert.NotEmpty(t, doc.Metadata.RunID)
	assert.Equal(t, 6, doc.Analysis.Summary.Applications)
	assert.Equal(t, 17, doc.Analysis.Summary.PatternHits)
	assert.Len(t, doc.Analysis.Categories, 4)
}

func TestAnalyzeCommand_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)
	out := filepath.Join(dir, "out.md")

	_, err := runApp(t, "analyze", "--format", "md", "--top", "2", "-o", out, path)
	require.NoError(t, err)

	content := testutil.ReadFile(t, out)
	assert.Contains(t, content, "# Structural analysis: smartcity")
	assert.Contains(t, content, "## Applications")
	assert.Contains(t, content, "4 more")
}

func TestRankCommand_Kind(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)
	out := filepath.Join(dir, "rank.json")

	_, err := runApp(t, "rank", "--kind", "libraries", "-f", "json", "-o", out, path)
	require.NoError(t, err)

	var doc report.RankingDocument
	readJSON(t, out, &doc)
	require.Len(t, doc.Rankings, 1)
	assert.Equal(t, "libraries", doc.Rankings[0].Category)
	assert.Equal(t, "ros2", doc.Rankings[0].Entries[0].ID)
	assert.InDelta(t, 2.18, doc.Rankings[0].Entries[0].Score, 1e-9)
}

func TestRankCommand_AnalysisOverrides(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)
	out := filepath.Join(dir, "rank.json")

	_, err := runApp(t, "rank", "-k", "library", "--lambda", "0", "-f", "json", "-o", out, path)
	require.NoError(t, err)

	var doc report.RankingDocument
	readJSON(t, out, &doc)
	assert.Equal(t, "ros2", doc.Rankings[0].Entries[0].ID)
	assert.InDelta(t, 2.0, doc.Rankings[0].Entries[0].Score, 1e-9)
}

func TestRankCommand_UnknownKind(t *testing.T) {
	path := smartCity(t, t.TempDir())

	_, err := runApp(t, "rank", "--kind", "broker", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker")
}

func TestAnalyzeCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	testutil.WriteSnapshot(t, data, "b.json", testutil.SmartCity())
	testutil.WriteSnapshot(t, data, "a.json", testutil.NewSnapshot().Apps("x").Topics("t").Pub("x", "t").Build())
	testutil.WriteFile(t, filepath.Join(data, "notes.txt"), "ignored")
	out := filepath.Join(dir, "rank.json")

	_, err := runApp(t, "--workers", "2", "rank", "-f", "json", "-o", out, data)
	require.NoError(t, err)

	var docs []report.RankingDocument
	readJSON(t, out, &docs)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Metadata.Dataset)
	assert.Equal(t, "b", docs[1].Metadata.Dataset)
}

func TestAnalyzeCommand_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	testutil.WriteSnapshot(t, data, "good.json", testutil.SmartCity())
	testutil.WriteFile(t, filepath.Join(data, "bad.json"), `{"applications": [{"name": "no id"}]}`)
	out := filepath.Join(dir, "out.json")

	_, err := runApp(t, "rank", "-f", "json", "-o", out, data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 datasets failed")
	assert.Contains(t, err.Error(), "bad.json")

	var doc report.RankingDocument
	readJSON(t, out, &doc)
	assert.Equal(t, "good", doc.Metadata.Dataset)
}

func TestAnalyzeCommand_Strict(t *testing.T) {
	dir := t.TempDir()
	snap := testutil.NewSnapshot().Apps("a").Topics("t").Pub("a", "t").Pub("a", "ghost").Build()
	path := testutil.WriteSnapshot(t, dir, "dangling.json", snap)
	out := filepath.Join(dir, "out.json")

	_, err := runApp(t, "analyze", "-f", "json", "-o", out, path)
	require.NoError(t, err)

	_, err = runApp(t, "analyze", "--strict", "-f", "json", "-o", out, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)

	_, err := runApp(t, "analyze", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "invalid path")

	_, err = runApp(t, "analyze", "-f", "xml", path)
	assert.ErrorContains(t, err, "Format")

	_, err = runApp(t, "analyze", "--tau", "2", path)
	assert.ErrorContains(t, err, "Tau")
}

func TestAnalyzeCommand_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")

	_, err := runApp(t, "analyze", "-o", out, t.TempDir())

	require.NoError(t, err)
	assert.False(t, testutil.FileExists(out))
}

func TestAnalyzeCommand_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)
	metrics := filepath.Join(dir, "psa.prom")

	_, err := runApp(t, "--metrics-file", metrics, "analyze", "-f", "json", "-o", filepath.Join(dir, "out.json"), path)
	require.NoError(t, err)

	content := testutil.ReadFile(t, metrics)
	assert.Contains(t, content, `psa_datasets_total{status="ok"} 1`)
	assert.Contains(t, content, "psa_max_score")
}

func TestStatsCommand(t *testing.T) {
	dir := t.TempDir()
	path := smartCity(t, dir)
	out := filepath.Join(dir, "stats.md")

	_, err := runApp(t, "stats", "-f", "markdown", "-o", out, path)
	require.NoError(t, err)

	content := testutil.ReadFile(t, out)
	assert.Contains(t, content, "# Basic statistics: smartcity")
	assert.Contains(t, content, "edge1")
}

func TestLoopsCommand(t *testing.T) {
	dir := t.TempDir()
	snap := testutil.NewSnapshot().
		Apps("a", "b").
		Topics("t1", "t2").
		Pub("a", "t1").Sub("b", "t1").
		Pub("b", "t2").Sub("a", "t2").
		Build()
	path := testutil.WriteSnapshot(t, dir, "loop.json", snap)
	out := filepath.Join(dir, "loops.json")

	_, err := runApp(t, "loops", "-f", "json", "-o", out, path)
	require.NoError(t, err)

	var doc report.LoopsDocument
	readJSON(t, out, &doc)
	require.Len(t, doc.Loops.PingPongs, 1)
	assert.Equal(t, "a", doc.Loops.PingPongs[0].First)
	assert.Equal(t, "t1", doc.Loops.PingPongs[0].Forward)
}

func TestPatternsCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "legend.json")

	_, err := runApp(t, "patterns", "--kind", "topic", "-f", "json", "-o", out)
	require.NoError(t, err)

	var legend struct {
		Metrics  []struct{ Kind string } `json:"metrics"`
		Patterns []struct{ Kind string } `json:"patterns"`
	}
	readJSON(t, out, &legend)
	require.NotEmpty(t, legend.Patterns)
	for _, p := range legend.Patterns {
		assert.Equal(t, string(models.KindTopic), p.Kind)
	}
	for _, m := range legend.Metrics {
		assert.Equal(t, string(models.KindTopic), m.Kind)
	}
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psa.toml")
	testutil.WriteFile(t, path, "[analysis]\ntau = 0.5\n")

	out, err := runApp(t, "-c", path, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "tau = 0.5")
	assert.Contains(t, out, "min_lcp_len = 3")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	testutil.WriteFile(t, good, "output:\n  format: toon\n")
	bad := filepath.Join(dir, "bad.toml")
	testutil.WriteFile(t, bad, "[analysis]\nlambda = -1.0\n")

	_, err := runApp(t, "-c", good, "config", "validate")
	assert.NoError(t, err)

	out, err := runApp(t, "-c", bad, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "Lambda")
}

func TestMCPManifest(t *testing.T) {
	out, err := runApp(t, "mcp", "manifest")

	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	assert.Equal(t, "io.github.canetizen/psa", manifest["name"])
}
