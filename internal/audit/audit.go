// Package audit persists the trail of restricted-mode policy decisions.
//
// The trail is append-only: one record per classification, allowed or
// denied, keyed by a monotonic sequence so iteration order is append order.
// Auditing is optional; every method is safe on a nil *Store, and audit
// failures are reported to the caller but never block execution.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces audit records inside the database.
const keyPrefix = "audit/"

// Record is one restricted-mode classification decision.
type Record struct {
	// Time is when the decision was made.
	Time time.Time `json:"time"`

	// ConnectionID is the session the command targeted.
	ConnectionID string `json:"connection_id"`

	// MachineID is the machine behind that session.
	MachineID string `json:"machine_id"`

	// Command is the submitted command, original casing.
	Command string `json:"command"`

	// Decision is "allowed" or "denied".
	Decision string `json:"decision"`

	// Category is the rule category behind the decision.
	Category string `json:"category,omitempty"`

	// Rule is the matching rule id, empty for default verdicts.
	Rule string `json:"rule,omitempty"`
}

// Store is a badger-backed audit trail.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (or creates) the audit database in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logging is noise on a stdio server
	opts = opts.WithValueLogFileSize(1 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open audit store %s: %w", dir, err)
	}
	seq, err := db.GetSequence([]byte("audit-seq"), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open audit sequence: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

// Append writes one record. No-op on a nil store.
func (s *Store) Append(rec Record) error {
	if s == nil {
		return nil
	}
	n, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("audit sequence: %w", err)
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}
	key := []byte(fmt.Sprintf("%s%020d", keyPrefix, n))
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first. On a nil store it returns
// nothing.
func (s *Store) Recent(n int) ([]Record, error) {
	if s == nil || n <= 0 {
		return nil, nil
	}
	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek past the last possible key.
		seek := append([]byte(keyPrefix), 0xFF)
		for it.Seek(seek); it.Valid() && len(records) < n; it.Next() {
			var rec Record
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read audit records: %w", err)
	}
	return records, nil
}

// Close releases the sequence and closes the database. No-op on nil.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if err := s.seq.Release(); err != nil {
		s.db.Close()
		return fmt.Errorf("release audit sequence: %w", err)
	}
	return s.db.Close()
}
