// Package permission holds the data-driven role/status permission matrix.
// The matrix is declared statically, loaded once, and answers field and
// action queries in O(1). It drives two independent consumers: output
// shaping on the read path and transition authorization on the command path.
package permission

import (
	"github.com/unicef/etools-sub003/internal/domain/identity"
)

// FieldPermission is the access level for one field.
type FieldPermission int

const (
	Hidden FieldPermission = iota
	Read
	Write
)

// entryKey addresses one matrix row.
type entryKey struct {
	kind   identity.WorkflowKind
	status string
	role   identity.Role
}

// Entry declares the permissions one role holds in one status.
type Entry struct {
	Kind   identity.WorkflowKind
	Status string
	Role   identity.Role
	// Fields maps field name to its permission. Fields absent from the map
	// fall back to DefaultField.
	Fields map[string]FieldPermission
	// DefaultField applies to fields not listed explicitly.
	DefaultField FieldPermission
	// Actions lists the transition actions the role may execute.
	Actions []string
}

// Matrix answers permission queries for every workflow kind.
type Matrix struct {
	entries map[entryKey]*compiledEntry
}

type compiledEntry struct {
	fields       map[string]FieldPermission
	defaultField FieldPermission
	actions      map[string]bool
}

// NewMatrix compiles a set of declarations into a queryable matrix.
func NewMatrix(declarations []Entry) *Matrix {
	m := &Matrix{entries: make(map[entryKey]*compiledEntry, len(declarations))}
	for _, d := range declarations {
		key := entryKey{kind: d.Kind, status: d.Status, role: d.Role}
		ce := &compiledEntry{
			fields:       make(map[string]FieldPermission, len(d.Fields)),
			defaultField: d.DefaultField,
			actions:      make(map[string]bool, len(d.Actions)),
		}
		for f, p := range d.Fields {
			ce.fields[f] = p
		}
		for _, a := range d.Actions {
			ce.actions[a] = true
		}
		m.entries[key] = ce
	}
	return m
}

// FieldPermission answers the access level one role has on one field.
func (m *Matrix) FieldPermission(kind identity.WorkflowKind, status string, role identity.Role, field string) FieldPermission {
	ce, ok := m.entries[entryKey{kind: kind, status: status, role: role}]
	if !ok {
		return Hidden
	}
	if p, ok := ce.fields[field]; ok {
		return p
	}
	return ce.defaultField
}

// ActionAllowed answers whether one role may execute an action.
func (m *Matrix) ActionAllowed(kind identity.WorkflowKind, status string, role identity.Role, action string) bool {
	ce, ok := m.entries[entryKey{kind: kind, status: status, role: role}]
	return ok && ce.actions[action]
}

// CombinedFieldPermission merges multiple roles by taking the most
// permissive result.
func (m *Matrix) CombinedFieldPermission(kind identity.WorkflowKind, status string, roles []identity.Role, field string) FieldPermission {
	best := Hidden
	for _, role := range roles {
		if p := m.FieldPermission(kind, status, role, field); p > best {
			best = p
		}
	}
	return best
}

// AnyActionAllowed merges multiple roles: the action is allowed if any role
// permits it.
func (m *Matrix) AnyActionAllowed(kind identity.WorkflowKind, status string, roles []identity.Role, action string) bool {
	for _, role := range roles {
		if m.ActionAllowed(kind, status, role, action) {
			return true
		}
	}
	return false
}
