package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestUnparseCmd_ObjectArrayToCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	data := `[{"a":"1","b":"2"},{"a":"3","b":"4"}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	unparseHeader = true
	unparseDelimiter = ""

	cmd := newUnparseCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	if err := runUnparse(cmd, []string{path}); err != nil {
		t.Fatalf("runUnparse: %v", err)
	}

	want := "a,b\r\n1,2\r\n3,4"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestUnparseCmd_RejectsNonArrayTopLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	if err := os.WriteFile(path, []byte(`{"a":"1"}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cmd := newUnparseCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	if err := runUnparse(cmd, []string{path}); err == nil {
		t.Fatal("expected an error for non-array top-level JSON")
	}
}
