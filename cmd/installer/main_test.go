package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildFlags(t *testing.T) {
	built := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := buildFlags("abc123", built)
	want := "-X lox/pkg/version.GitCommit=abc123 -X lox/pkg/version.BuildDate=2026-01-02T03:04:05Z"
	if got != want {
		t.Fatalf("buildFlags wrong.\nexpected=%q\ngot=%q", want, got)
	}
}

func TestBinaryFor(t *testing.T) {
	if got := binaryFor("windows"); got != "lox.exe" {
		t.Errorf("windows binary wrong: %q", got)
	}
	if got := binaryFor("linux"); got != "lox" {
		t.Errorf("linux binary wrong: %q", got)
	}
	if got := defaultInstallDir("linux"); got != "/usr/local/bin" {
		t.Errorf("linux install dir wrong: %q", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "binary" {
		t.Fatalf("copied content wrong: %q", data)
	}
}
