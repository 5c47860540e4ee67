package main

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunDryRunPrintsConfigAndExits0(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{
		"--dry-run",
		"--hard-datadir", filepath.Join(dir, "hard"),
		"--easy-datadir", filepath.Join(dir, "easy"),
	}, &out, &errOut)

	if code != 0 {
		t.Fatalf("code=%d, want 0, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "hard_datadir") {
		t.Fatalf("expected config JSON in stdout, got %q", out.String())
	}
}

func TestRunRejectsEqualDataDirs(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{
		"--dry-run",
		"--hard-datadir", dir,
		"--easy-datadir", dir,
	}, &out, &errOut)

	if code != 2 {
		t.Fatalf("code=%d, want 2", code)
	}
	if !strings.Contains(errOut.String(), "must differ") {
		t.Fatalf("expected datadir-collision error, got %q", errOut.String())
	}
}

func TestRunShowsTipThenAppendsOnGenesis(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{
		"--hard-datadir", filepath.Join(dir, "hard"),
		"--easy-datadir", filepath.Join(dir, "easy"),
		"--tip",
	}, &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d, want 0, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "tip: hash=") {
		t.Fatalf("expected tip line, got %q", out.String())
	}

	genesisLine := out.String()
	genesisHex := genesisLine[strings.Index(genesisLine, "hash=")+len("hash=") : strings.Index(genesisLine, " height=")]
	genesisHash, err := hex.DecodeString(genesisHex)
	if err != nil || len(genesisHash) != 32 {
		t.Fatalf("malformed genesis hash in output %q: %v", genesisLine, err)
	}

	var appendOut, appendErr bytes.Buffer
	code = run([]string{
		"--hard-datadir", filepath.Join(dir, "hard"),
		"--easy-datadir", filepath.Join(dir, "easy"),
		"--append-parent", genesisHex,
		"--append-height", "1",
		"--append-salt", "ab",
	}, &appendOut, &appendErr)
	if code != 0 {
		t.Fatalf("append code=%d, want 0, stderr=%s", code, appendErr.String())
	}
	if !strings.Contains(appendOut.String(), "appended: hash=") {
		t.Fatalf("expected appended line, got %q", appendOut.String())
	}
}

func TestRunRejectsMalformedQueryHash(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{
		"--hard-datadir", filepath.Join(dir, "hard"),
		"--easy-datadir", filepath.Join(dir, "easy"),
		"--query", "not-hex",
	}, &out, &errOut)
	if code != 2 {
		t.Fatalf("code=%d, want 2", code)
	}
}
