// Package semdb stores per-function semantic records: reference
// counting behavior, argument reference stealing and error return
// values for external APIs. Records are keyed by function name and
// persisted as a single JSON object.
package semdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"

	"lisa/internal/ir"
)

var log = commonlog.GetLogger("lisa.semdb")

// Entry pairs a function name with its semantic record, the shape
// bulk updates arrive in.
type Entry struct {
	FuncName string           `json:"func_name"`
	Info     *ir.RefSemantics `json:"info"`
}

// Database is a name-keyed semantic record store. A missing record is
// a normal outcome, not an error: lookups distinguish "unknown
// function" from "known with these semantics". Safe for concurrent
// readers and writers.
type Database struct {
	mu   sync.RWMutex
	path string
	recs map[string]*ir.RefSemantics
}

// Open loads the database at path, or starts empty when the file does
// not exist yet. A corrupt file is logged and treated as empty rather
// than failing the run.
func Open(path string) *Database {
	if path == "" {
		path = "semantic_db.json"
	}
	db := &Database{path: path, recs: map[string]*ir.RefSemantics{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("semantic database %s does not exist, starting empty", path)
		} else {
			log.Warningf("failed to read semantic database %s: %s", path, err)
		}
		return db
	}
	var raw map[string]*ir.RefSemantics
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warningf("failed to parse semantic database %s: %s", path, err)
		return db
	}
	loaded := 0
	for name, info := range raw {
		if err := Validate(info); err != nil {
			log.Warningf("invalid record for %s in %s: %s", name, path, err)
			continue
		}
		db.recs[name] = info
		loaded++
	}
	log.Infof("semantic database %s loaded with %d entries", path, loaded)
	return db
}

// Validate checks a semantic record. Only the fields that are present
// are checked; an empty record is valid.
func Validate(info *ir.RefSemantics) error {
	if info == nil {
		return fmt.Errorf("record is null")
	}
	if info.ReturnRefType != "" && !ir.ValidRefReturnKind(info.ReturnRefType) {
		return fmt.Errorf("invalid return_ref_type %q", info.ReturnRefType)
	}
	for idx := range info.ArgRefSteal {
		if idx < 0 {
			return fmt.Errorf("invalid arg_ref_steal index %d", idx)
		}
	}
	return nil
}

// Lookup returns the record for a function name. The second result
// reports whether the name is known at all.
func (d *Database) Lookup(name string) (*ir.RefSemantics, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, ok := d.recs[name]
	if !ok {
		return nil, false
	}
	return info.Clone(), true
}

// Has reports whether a function is known.
func (d *Database) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.recs[name]
	return ok
}

// Len returns the number of records.
func (d *Database) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.recs)
}

// Functions returns all known function names.
func (d *Database) Functions() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.recs))
	for name := range d.recs {
		names = append(names, name)
	}
	return names
}

// FunctionsByRefType returns the functions whose return reference
// kind matches.
func (d *Database) FunctionsByRefType(kind ir.RefReturnKind) ([]string, error) {
	if !ir.ValidRefReturnKind(kind) {
		return nil, fmt.Errorf("invalid ref type %q", kind)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var names []string
	for name, info := range d.recs {
		if info.ReturnRefType == kind {
			names = append(names, name)
		}
	}
	return names, nil
}

// UpdateFunction validates and stores one record, then persists. An
// invalid record leaves the prior record untouched and returns the
// validation error.
func (d *Database) UpdateFunction(name string, info *ir.RefSemantics) error {
	if err := Validate(info); err != nil {
		log.Warningf("rejecting semantic record for %s: %s", name, err)
		return err
	}
	d.mu.Lock()
	d.recs[name] = info.Clone()
	d.mu.Unlock()
	log.Infof("updated semantic record for %s", name)
	return d.Save()
}

// Update stores every valid record from the map and skips invalid
// ones. It returns the number of records applied.
func (d *Database) Update(records map[string]*ir.RefSemantics) int {
	applied := 0
	d.mu.Lock()
	for name, info := range records {
		if err := Validate(info); err != nil {
			log.Warningf("skipping invalid record for %s: %s", name, err)
			continue
		}
		d.recs[name] = info.Clone()
		applied++
	}
	d.mu.Unlock()
	if applied > 0 {
		if err := d.Save(); err != nil {
			log.Errorf("failed to persist semantic database: %s", err)
		}
		log.Infof("updated %d semantic records", applied)
	}
	return applied
}

// BulkUpdate applies a list of entries, skipping malformed or invalid
// ones, and returns the number applied.
func (d *Database) BulkUpdate(entries []Entry) int {
	applied := 0
	d.mu.Lock()
	for _, entry := range entries {
		if entry.FuncName == "" || entry.Info == nil {
			log.Warningf("skipping malformed bulk entry %+v", entry)
			continue
		}
		if err := Validate(entry.Info); err != nil {
			log.Warningf("skipping invalid record for %s: %s", entry.FuncName, err)
			continue
		}
		d.recs[entry.FuncName] = entry.Info.Clone()
		applied++
	}
	d.mu.Unlock()
	if applied > 0 {
		if err := d.Save(); err != nil {
			log.Errorf("failed to persist semantic database: %s", err)
		}
		log.Infof("bulk updated %d semantic records", applied)
	}
	return applied
}

// Remove deletes a record. It reports whether the record existed.
func (d *Database) Remove(name string) bool {
	d.mu.Lock()
	_, ok := d.recs[name]
	delete(d.recs, name)
	d.mu.Unlock()
	if ok {
		if err := d.Save(); err != nil {
			log.Errorf("failed to persist semantic database: %s", err)
		}
	}
	return ok
}

// Merge copies every valid record from another database into this
// one, overwriting on name collision, then persists.
func (d *Database) Merge(other *Database) {
	other.mu.RLock()
	incoming := make(map[string]*ir.RefSemantics, len(other.recs))
	for name, info := range other.recs {
		incoming[name] = info.Clone()
	}
	other.mu.RUnlock()

	d.mu.Lock()
	for name, info := range incoming {
		if err := Validate(info); err != nil {
			continue
		}
		d.recs[name] = info
	}
	total := len(d.recs)
	d.mu.Unlock()
	if err := d.Save(); err != nil {
		log.Errorf("failed to persist semantic database: %s", err)
	}
	log.Infof("merged semantic databases, now %d entries", total)
}

// Save writes the database back to its file, creating parent
// directories as needed.
func (d *Database) Save() error {
	d.mu.RLock()
	data, err := json.MarshalIndent(d.recs, "", "  ")
	d.mu.RUnlock()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(d.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write semantic database: %w", err)
	}
	return nil
}
