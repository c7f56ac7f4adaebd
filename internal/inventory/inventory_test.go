package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machines.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write inventory: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeInventory(t, `[
		{"machine_id": "web-1", "label": "Web server", "os": "linux", "source": "prod",
		 "host": "web1.internal", "port": 2222, "username": "deploy", "key_file": "/keys/web1"},
		{"machine_id": "db-1", "label": "Database", "os": "linux", "source": "prod",
		 "host": "db1.internal", "username": "admin", "password": "hunter2"}
	]`)

	inv, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if inv.Len() != 2 {
		t.Fatalf("Len = %d, want 2", inv.Len())
	}

	// Stable load order.
	machines := inv.List()
	if machines[0].ID != "web-1" || machines[1].ID != "db-1" {
		t.Errorf("List order = %s, %s; want web-1, db-1", machines[0].ID, machines[1].ID)
	}

	m, err := inv.Find("web-1")
	if err != nil {
		t.Fatalf("Find(web-1) failed: %v", err)
	}
	if m.Addr() != "web1.internal:2222" {
		t.Errorf("Addr = %s, want web1.internal:2222", m.Addr())
	}

	// Default port.
	m, _ = inv.Find("db-1")
	if m.Addr() != "db1.internal:22" {
		t.Errorf("Addr = %s, want db1.internal:22", m.Addr())
	}
}

func TestFindNotFound(t *testing.T) {
	inv, err := New([]Machine{{ID: "a", Host: "h", Username: "u", UseAgent: true}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := inv.Find("nope"); !errors.Is(err, ErrMachineNotFound) {
		t.Errorf("Find(nope) = %v, want ErrMachineNotFound", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	inv, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if inv.Len() != 0 {
		t.Errorf("Len = %d, want 0", inv.Len())
	}
}

func TestLoadMalformedYieldsEmptyInventory(t *testing.T) {
	path := writeInventory(t, `{"not": "an array"`)

	inv, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if inv == nil || inv.Len() != 0 {
		t.Fatalf("malformed load must still return an empty usable inventory, got %v", inv)
	}
	// The empty inventory still answers lookups with not-found.
	if _, err := inv.Find("anything"); !errors.Is(err, ErrMachineNotFound) {
		t.Errorf("Find on empty inventory = %v, want ErrMachineNotFound", err)
	}
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			"duplicate id",
			`[{"machine_id": "a", "host": "h", "username": "u", "use_agent": true},
			  {"machine_id": "a", "host": "h2", "username": "u", "use_agent": true}]`,
			ErrDuplicateID,
		},
		{
			"missing id",
			`[{"host": "h", "username": "u", "use_agent": true}]`,
			ErrMissingID,
		},
		{
			"missing host",
			`[{"machine_id": "a", "username": "u", "use_agent": true}]`,
			ErrMissingHost,
		},
		{
			"missing username",
			`[{"machine_id": "a", "host": "h", "use_agent": true}]`,
			ErrMissingUsername,
		},
		{
			"no credential",
			`[{"machine_id": "a", "host": "h", "username": "u"}]`,
			ErrNoCredential,
		},
		{
			"two credentials",
			`[{"machine_id": "a", "host": "h", "username": "u", "password": "p", "use_agent": true}]`,
			ErrMultipleCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := Load(writeInventory(t, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
			if inv.Len() != 0 {
				t.Errorf("invalid file must yield empty inventory, got %d machines", inv.Len())
			}
		})
	}
}

func TestListReturnsCopy(t *testing.T) {
	inv, err := New([]Machine{{ID: "a", Host: "h", Username: "u", UseAgent: true}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	list := inv.List()
	list[0].ID = "tampered"
	if m, _ := inv.Find("a"); m.ID != "a" {
		t.Error("mutating List result leaked into the inventory")
	}
}
