package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukerupert/portfolio/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	// point at a missing dotenv file so the working directory does not leak in
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		contentTier = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	oldVersion := Version
	t.Cleanup(func() { Version = oldVersion })
	Version = "1.2.3"

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "portfolio 1.2.3") {
		t.Errorf("output = %q", out)
	}
}

func TestContentCmd(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	out, err := execute(t, "content")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	var items []model.ContentItem
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(items) != 3 {
		t.Errorf("len = %d, want 3", len(items))
	}
}

func TestContentCmdTier(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")

	out, err := execute(t, "content", "--tier", "professional")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	var items []model.ContentItem
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(items) != 2 || items[0].MinTier != model.TierBasic || items[1].MinTier != model.TierProfessional {
		t.Errorf("items = %+v", items)
	}
}

func TestContentCmdInvalidTier(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	if _, err := execute(t, "content", "--tier", "gold"); err == nil {
		t.Fatal("expected error for invalid tier")
	}
}
