package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "prog.anm")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	return path
}

func TestCmdBuildAssembleOnlyProducesAssembly(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "glyph main [] yields ember\noffer 0\nseal\n")
	out := filepath.Join(dir, "prog.s")

	if err := cmdBuild([]string{"-S", "-o", out, src}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected assembly output: %v", err)
	}
	if !strings.Contains(string(data), "main:") {
		t.Errorf("expected assembly to contain main:, got:\n%s", data)
	}
}

func TestCmdBuildRejectsMissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	if err := cmdBuild([]string{filepath.Join(dir, "does-not-exist.anm")}); err == nil {
		t.Errorf("expected an error for a missing source file")
	}
}

func TestCmdBuildRejectsWrongArgCount(t *testing.T) {
	if err := cmdBuild([]string{}); err == nil {
		t.Errorf("expected an error when no source file is given")
	}
}

func TestCmdBuildRejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.txt")
	if err := os.WriteFile(path, []byte("glyph main [] yields ember\noffer 0\nseal\n"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	if err := cmdBuild([]string{path}); err == nil {
		t.Errorf("expected an error for a non-.anm source file")
	}
}
