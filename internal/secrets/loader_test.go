package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromValue(t *testing.T) {
	got, err := Load(Source{Name: "api key", Value: "  s3cret \n"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "s3cret" {
		t.Errorf("Load = %q", got)
	}
}

func TestLoadFromFileTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("file-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(Source{Name: "api key", Value: "inline", File: path})
	if err != nil {
		t.Fatal(err)
	}
	if got != "file-secret" {
		t.Errorf("Load = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Error("empty source accepted")
	}

	if _, err := Load(Source{Name: "api key", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("missing file accepted")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(Source{Name: "api key", File: empty})
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("blank file: err = %v", err)
	}
}
