package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runIn(t *testing.T, source string, optimize bool) *Artifacts {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	artifacts, ce := Run(Options{
		Filename:   "t.c",
		Source:     source,
		OutputStem: "out",
		Optimize:   optimize,
	})
	require.Nil(t, ce)
	return artifacts
}

func TestRunProducesThreeArtifacts(t *testing.T) {
	artifacts := runIn(t, `int func(int p) { return p + 1; }`, false)

	assert.Equal(t, "out.ll", artifacts.IRPath)
	assert.Equal(t, "out_new.ll", artifacts.OptimizedIRPath)
	assert.Equal(t, "out_new.s", artifacts.AssemblyPath)

	for _, path := range []string{artifacts.IRPath, artifacts.OptimizedIRPath, artifacts.AssemblyPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	asm, err := os.ReadFile(artifacts.AssemblyPath)
	require.NoError(t, err)
	assert.Contains(t, string(asm), "func:")
}

func TestRunWithOptimizeFoldsConstants(t *testing.T) {
	artifacts := runIn(t, `int func(int p) {
		int x;
		x = 2 + 3;
		return x;
	}`, true)

	optimized, err := os.ReadFile(artifacts.OptimizedIRPath)
	require.NoError(t, err)
	assert.NotContains(t, string(optimized), "add 2, 3")
}

func TestRunReportsParseError(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	_, ce := Run(Options{Filename: "t.c", Source: `int func(int p) { x = ; }`, OutputStem: "out"})
	require.NotNil(t, ce)
	assert.NotEmpty(t, ce.Message)

	_, statErr := os.Stat(filepath.Join(dir, "out.ll"))
	assert.True(t, os.IsNotExist(statErr), "no IR file should be written on a parse failure")
}

func TestRunReportsSemanticError(t *testing.T) {
	_, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	_, ce := Run(Options{Filename: "t.c", Source: `int func(int p) { return q; }`, OutputStem: "out"})
	require.NotNil(t, ce)
	assert.Contains(t, ce.Message, "not declared")
}
