// Package inventory holds the fixed list of known remote machines.
//
// The inventory is loaded once at startup from a JSON array and is immutable
// for the life of the process. A malformed file yields an empty inventory
// plus the load error, so the service can still start and report "no
// machines available" instead of crashing.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
)

// Machine describes one remote target and how to reach it.
type Machine struct {
	// ID is the unique, stable identifier callers use to name the machine.
	ID string `json:"machine_id"`

	// Label is the display name.
	Label string `json:"label"`

	// OS tags the remote operating system (linux, darwin, ...).
	OS string `json:"os"`

	// Source tags provenance (environment, team, import origin).
	Source string `json:"source"`

	// Host is the hostname or address to dial.
	Host string `json:"host"`

	// Port is the SSH port; 0 means 22.
	Port int `json:"port,omitempty"`

	// Username is the remote login user.
	Username string `json:"username"`

	// Exactly one credential mechanism must be set.

	// Password authenticates with a plain password.
	Password string `json:"password,omitempty"`

	// KeyFile is a path to a private key file.
	KeyFile string `json:"key_file,omitempty"`

	// Passphrase unlocks KeyFile when the key is encrypted.
	Passphrase string `json:"passphrase,omitempty"`

	// UseAgent authenticates via the local SSH agent (SSH_AUTH_SOCK).
	UseAgent bool `json:"use_agent,omitempty"`
}

// Addr returns the host:port dial address, defaulting the port to 22.
func (m Machine) Addr() string {
	port := m.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", m.Host, port)
}

// validate checks the descriptor is complete and names exactly one
// credential mechanism.
func (m Machine) validate() error {
	if m.ID == "" {
		return ErrMissingID
	}
	if m.Host == "" {
		return fmt.Errorf("machine %q: %w", m.ID, ErrMissingHost)
	}
	if m.Username == "" {
		return fmt.Errorf("machine %q: %w", m.ID, ErrMissingUsername)
	}
	credentials := 0
	if m.Password != "" {
		credentials++
	}
	if m.KeyFile != "" {
		credentials++
	}
	if m.UseAgent {
		credentials++
	}
	switch credentials {
	case 0:
		return fmt.Errorf("machine %q: %w", m.ID, ErrNoCredential)
	case 1:
		return nil
	default:
		return fmt.Errorf("machine %q: %w", m.ID, ErrMultipleCredentials)
	}
}

// Inventory is the immutable set of known machines, in load order.
type Inventory struct {
	machines []Machine
	index    map[string]int
}

// New builds an inventory from a machine list, validating every entry and
// rejecting duplicate ids.
func New(machines []Machine) (*Inventory, error) {
	inv := &Inventory{
		machines: make([]Machine, 0, len(machines)),
		index:    make(map[string]int, len(machines)),
	}
	for _, m := range machines {
		if err := m.validate(); err != nil {
			return nil, err
		}
		if _, ok := inv.index[m.ID]; ok {
			return nil, fmt.Errorf("machine %q: %w", m.ID, ErrDuplicateID)
		}
		inv.index[m.ID] = len(inv.machines)
		inv.machines = append(inv.machines, m)
	}
	return inv, nil
}

// Empty returns an inventory with no machines.
func Empty() *Inventory {
	return &Inventory{index: map[string]int{}}
}

// Load reads a JSON array of machines from path.
//
// A missing file is a fresh deployment: Load returns an empty inventory and
// no error. Any parse or validation failure returns an empty, usable
// inventory together with the error, so callers can log once and keep going.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return Empty(), fmt.Errorf("read inventory %s: %w", path, err)
	}

	var machines []Machine
	if err := json.Unmarshal(data, &machines); err != nil {
		return Empty(), fmt.Errorf("parse inventory %s: %w", path, err)
	}

	inv, err := New(machines)
	if err != nil {
		return Empty(), fmt.Errorf("invalid inventory %s: %w", path, err)
	}
	return inv, nil
}

// List returns the machines in load order. The returned slice is a copy;
// the inventory itself never changes after Load.
func (inv *Inventory) List() []Machine {
	out := make([]Machine, len(inv.machines))
	copy(out, inv.machines)
	return out
}

// Find returns the machine with the given id, or ErrMachineNotFound.
func (inv *Inventory) Find(id string) (Machine, error) {
	i, ok := inv.index[id]
	if !ok {
		return Machine{}, fmt.Errorf("machine %q: %w", id, ErrMachineNotFound)
	}
	return inv.machines[i], nil
}

// Len returns the number of machines.
func (inv *Inventory) Len() int {
	return len(inv.machines)
}
