package main

import (
	"path/filepath"
	"testing"
)

func TestRunScript(t *testing.T) {
	if err := runScript(filepath.Join("testdata", "dnslookup.js")); err != nil {
		t.Fatal(err)
	}
}

func TestRunScriptWithMissingFile(t *testing.T) {
	err := runScript(filepath.Join(t.TempDir(), "missing.js"))
	if err == nil {
		t.Fatal("expected an error here")
	}
}
