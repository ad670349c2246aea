package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"climdiag/domain/core"
	"climdiag/internal/errors"
)

// Identity keys one persisted vault file. Re-running with the same identity
// overwrites the same path.
type Identity struct {
	DiagnosticID string `json:"diagnostic_id"`
	Variable     string `json:"variable"`
	FieldType    string `json:"field_type"`
}

// Filename derives the deterministic file name for this identity.
func (id Identity) Filename() string {
	return fmt.Sprintf("%s_%s_%s.json", id.DiagnosticID, id.Variable, id.FieldType)
}

// Vault caches computed diagnostic arrays by name within a run and persists
// them to a self-describing file so later runs can retrieve without
// recomputing. Single owner per run; no locking.
type Vault struct {
	dir     string
	entries map[string]core.DiagnosticArray
	order   []string
}

// NewVault creates an empty vault persisting under dir.
func NewVault(dir string) *Vault {
	return &Vault{
		dir:     dir,
		entries: make(map[string]core.DiagnosticArray),
	}
}

// Store registers or overwrites an in-memory entry.
func (v *Vault) Store(name string, array core.DiagnosticArray) {
	if _, exists := v.entries[name]; !exists {
		v.order = append(v.order, name)
	}
	array.Name = name
	v.entries[name] = array
}

// Retrieve returns the named entry.
func (v *Vault) Retrieve(name string) (core.DiagnosticArray, error) {
	entry, ok := v.entries[name]
	if !ok {
		return core.DiagnosticArray{}, errors.NotFound("vault entry " + name)
	}
	return entry, nil
}

// Names lists stored entries in insertion order.
func (v *Vault) Names() []string {
	names := make([]string, len(v.order))
	copy(names, v.order)
	return names
}

// vaultFile is the on-disk document. Every entry carries its axis labels,
// coordinate vectors, units, long name, and missing sentinel, so the file
// round-trips without outside knowledge.
type vaultFile struct {
	RunID     string                 `json:"run_id"`
	CreatedAt time.Time              `json:"created_at"`
	Identity  Identity               `json:"identity"`
	Entries   []core.DiagnosticArray `json:"entries"`
}

// Persist serializes all current entries to the identity's deterministic
// path. All-or-nothing: the document is written to a temporary file in the
// same directory and atomically renamed into place, so a failure mid-write
// never leaves a partial file visible under the final path.
func (v *Vault) Persist(id Identity) (string, error) {
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating vault directory")
	}
	doc := vaultFile{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Identity:  id,
	}
	for _, name := range v.order {
		doc.Entries = append(doc.Entries, v.entries[name])
	}

	final := filepath.Join(v.dir, id.Filename())
	tmp, err := os.CreateTemp(v.dir, ".vault-*")
	if err != nil {
		return "", errors.Wrap(err, "creating temporary vault file")
	}
	enc := json.NewEncoder(tmp)
	if err := enc.Encode(&doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "serializing vault entries")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "closing temporary vault file")
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "finalizing vault file")
	}
	return final, nil
}

// Load deserializes only the requested names from the identity's file and
// registers them in the vault. A requested name absent from the file is a
// MISSING_VARIABLE error.
func (v *Vault) Load(id Identity, names []string) ([]core.DiagnosticArray, error) {
	path := filepath.Join(v.dir, id.Filename())
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Retrieve mode assumes a prior successful compute run.
		return nil, errors.NotFound("vault file " + path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading vault file %s", path)
	}
	var doc vaultFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "decoding vault file %s", path)
	}

	byName := make(map[string]core.DiagnosticArray, len(doc.Entries))
	for _, entry := range doc.Entries {
		byName[entry.Name] = entry
	}
	out := make([]core.DiagnosticArray, 0, len(names))
	for _, name := range names {
		entry, ok := byName[name]
		if !ok {
			return nil, errors.MissingVariable(name, path)
		}
		v.Store(name, entry)
		out = append(out, entry)
	}
	return out, nil
}
