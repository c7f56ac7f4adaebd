package audit

import (
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		rec := Record{
			Time:         time.Now().UTC(),
			ConnectionID: "conn-1",
			MachineID:    "web-1",
			Command:      fmt.Sprintf("command-%d", i),
			Decision:     "allowed",
		}
		if err := s.Append(rec); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	records, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Recent(3) returned %d records", len(records))
	}
	// Newest first.
	for i, want := range []string{"command-4", "command-3", "command-2"} {
		if records[i].Command != want {
			t.Errorf("records[%d].Command = %s, want %s", i, records[i].Command, want)
		}
	}
}

func TestRecentMoreThanStored(t *testing.T) {
	s := openTestStore(t)
	if err := s.Append(Record{Command: "only", Decision: "denied", Category: "privilege-escalation"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Recent(10) returned %d records, want 1", len(records))
	}
	if records[0].Category != "privilege-escalation" {
		t.Errorf("Category = %s", records[0].Category)
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	if err := s.Append(Record{Command: "x"}); err != nil {
		t.Errorf("nil Append = %v, want nil", err)
	}
	if records, err := s.Recent(5); err != nil || records != nil {
		t.Errorf("nil Recent = %v, %v; want nil, nil", records, err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil Close = %v, want nil", err)
	}
}
