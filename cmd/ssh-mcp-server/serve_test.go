package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadInventoryMalformedServesEmpty(t *testing.T) {
	path := writeFile(t, "machines.json", `{"this is": "not a machine list"`)

	inv := loadInventory(path, zap.NewNop())
	if inv == nil {
		t.Fatal("loadInventory returned nil for a malformed file")
	}
	if inv.Len() != 0 {
		t.Errorf("Len = %d, want 0 for a malformed file", inv.Len())
	}
}

func TestLoadInventoryMissingFileServesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	inv := loadInventory(path, zap.NewNop())
	if inv == nil {
		t.Fatal("loadInventory returned nil for a missing file")
	}
	if inv.Len() != 0 {
		t.Errorf("Len = %d, want 0 for a missing file", inv.Len())
	}
}

func TestLoadInventoryValid(t *testing.T) {
	path := writeFile(t, "machines.json", `[
		{"machine_id": "web-1", "host": "web1.internal", "username": "deploy", "password": "secret"}
	]`)

	inv := loadInventory(path, zap.NewNop())
	if inv.Len() != 1 {
		t.Fatalf("Len = %d, want 1", inv.Len())
	}
	if _, err := inv.Find("web-1"); err != nil {
		t.Errorf("Find(web-1) failed: %v", err)
	}
}
