package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repodoc/internal/source"
)

func TestGenerateCmdDefaultFlags(t *testing.T) {
	cmd := generateCmd()
	assert.Equal(t, "generate <repo-url>", cmd.Use)

	format, _ := cmd.Flags().GetString("format")
	assert.Equal(t, "markdown", format)

	render, _ := cmd.Flags().GetString("render")
	assert.Equal(t, "raw-md", render)

	out, _ := cmd.Flags().GetString("output")
	assert.Equal(t, "docs", out)

	pub, _ := cmd.Flags().GetBool("publish")
	assert.False(t, pub)
}

func TestRunGenerate(t *testing.T) {
	a := newTestApp(t, newFakeSource())
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	err := a.runGenerate(context.Background(), "https://github.com/octo/demo", generateOptions{
		format:    "json",
		render:    "raw-md",
		outputDir: dir,
	}, &stdout, &stderr)
	require.NoError(t, err)

	for _, name := range []string{"README.md", "ARCHITECTURE.md", "TECH_STACK.md"} {
		requireFile(t, filepath.Join(dir, name))
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "Hello.")

	var report map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, "github.com/octo/demo", report["repository"])
	assert.Equal(t, "main", report["branch"])
	assert.Equal(t, "mock", report["generator"])
	assert.Contains(t, stderr.String(), "wrote 3 documents")
}

func TestRunGenerateScopeAndHugo(t *testing.T) {
	a := newTestApp(t, newFakeSource())
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	err := a.runGenerate(context.Background(), "octo/demo", generateOptions{
		scope:     "packages/api",
		format:    "yaml",
		render:    "hugo",
		outputDir: dir,
	}, &stdout, &stderr)
	require.NoError(t, err)

	requireFile(t, filepath.Join(dir, "config.toml"))
	requireFile(t, filepath.Join(dir, "content", "README.md"))
	assert.Contains(t, stdout.String(), "scope: packages/api")
	assert.Contains(t, stdout.String(), "- packages/api/package.json")
}

func TestRunGenerateEmptySelection(t *testing.T) {
	src := newFakeSource()
	src.tree = &source.Tree{Entries: []source.TreeEntry{{Path: "logo.png", Type: source.EntryBlob}}}
	a := newTestApp(t, src)
	dir := filepath.Join(t.TempDir(), "out")
	var stdout, stderr bytes.Buffer

	err := a.runGenerate(context.Background(), "octo/demo", generateOptions{format: "json", outputDir: dir}, &stdout, &stderr)
	require.NoError(t, err)
	assert.NoDirExists(t, dir)
	assert.Contains(t, stdout.String(), `"empty": true`)
	assert.Contains(t, stderr.String(), "nothing to document")
}

func TestRunGenerateAuthRequiredWithoutTerminal(t *testing.T) {
	src := newFakeSource()
	src.infoErr = fmt.Errorf("%w (HTTP 404)", source.ErrAuthRequired)
	a := newTestApp(t, src)
	var stdout, stderr bytes.Buffer

	err := a.runGenerate(context.Background(), "octo/demo", generateOptions{format: "json", outputDir: t.TempDir()}, &stdout, &stderr)
	assert.True(t, errors.Is(err, source.ErrAuthRequired))
}

func TestRunGenerateRejectsBadInput(t *testing.T) {
	a := newTestApp(t, newFakeSource())
	var stdout, stderr bytes.Buffer

	err := a.runGenerate(context.Background(), "octo/demo", generateOptions{format: "xml"}, &stdout, &stderr)
	assert.Error(t, err)

	err = a.runGenerate(context.Background(), "https://bitbucket.org/a/b", generateOptions{format: "json"}, &stdout, &stderr)
	assert.True(t, errors.Is(err, source.ErrInvalidReference))

	err = a.runGenerate(context.Background(), "https://gitlab.com/a/b", generateOptions{format: "json"}, &stdout, &stderr)
	assert.True(t, errors.Is(err, source.ErrInvalidReference), "no gitlab source registered")
}
