// Package cases resolves a named analysis case into a parameter set by
// applying ordered, typed overrides to a base set.
package cases

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexiusacademia/bridgepsci/internal/params"
)

// Baseline is always a known case; it resolves to the base set unchanged.
const Baseline = "baseline"

// Override is one row of a case table.
type Override struct {
	Case        string      `yaml:"case" json:"case"`
	Key         string      `yaml:"key" json:"key"`
	Value       any         `yaml:"value" json:"value"`
	Type        params.Type `yaml:"type,omitempty" json:"type,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
}

// Table is an ordered list of overrides. Labels may be declared without any
// rows so that they resolve to the base set. Fallback, when set, supplies
// extra known labels; its rows are never applied.
type Table struct {
	Rows     []Override
	Declared []string
	Fallback *Table
}

// Normalize trims and case-folds a case label.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Add appends an override row.
func (t *Table) Add(o Override) {
	o.Case = Normalize(o.Case)
	o.Key = strings.TrimSpace(o.Key)
	t.Rows = append(t.Rows, o)
}

// Declare marks label as known.
func (t *Table) Declare(label string) {
	label = Normalize(label)
	for _, l := range t.Declared {
		if l == label {
			return
		}
	}
	t.Declared = append(t.Declared, label)
}

// RowsFor returns the override rows of label in table order.
func (t *Table) RowsFor(label string) []Override {
	if t == nil {
		return nil
	}
	label = Normalize(label)
	var out []Override
	for _, r := range t.Rows {
		if Normalize(r.Case) == label {
			out = append(out, r)
		}
	}
	return out
}

// Defines reports whether the table itself knows label, by rows or by
// declaration.
func (t *Table) Defines(label string) bool {
	if t == nil {
		return false
	}
	label = Normalize(label)
	for _, l := range t.Declared {
		if l == label {
			return true
		}
	}
	return len(t.RowsFor(label)) > 0
}

// Labels returns every label known to the table and its fallback, sorted,
// with baseline first.
func (t *Table) Labels() []string {
	set := map[string]bool{Baseline: true}
	for tt := t; tt != nil; tt = tt.Fallback {
		for _, l := range tt.Declared {
			set[l] = true
		}
		for _, r := range tt.Rows {
			set[Normalize(r.Case)] = true
		}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		if l != Baseline {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return append([]string{Baseline}, out...)
}

// UnknownCaseError is returned for a label no table knows.
type UnknownCaseError struct {
	Label string
	Known []string
}

func (e *UnknownCaseError) Error() string {
	return fmt.Sprintf("unknown case %q (known: %s)", e.Label, strings.Join(e.Known, ", "))
}

// ErrDerivedKey is wrapped by the OverrideError of a row that sets a key
// Derive recomputes.
var ErrDerivedKey = errors.New("derived parameter cannot be overridden")

// OverrideError wraps a failure to apply one override row.
type OverrideError struct {
	Case string
	Key  string
	Err  error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("case %s: override %s: %v", e.Case, e.Key, e.Err)
}

func (e *OverrideError) Unwrap() error { return e.Err }

// Resolve returns the parameter set for label. Rows for label are applied
// in order onto a copy of base, so the last row for a key wins. A label
// without rows resolves to a copy of base when it is the baseline, is
// declared by table, or is known to table's fallback. base is never
// modified.
func Resolve(base params.Set, label string, table *Table) (params.Set, error) {
	label = Normalize(label)
	rows := table.RowsFor(label)
	if len(rows) == 0 {
		known := label == Baseline || table.Defines(label)
		if !known && table != nil {
			known = table.Fallback.Defines(label)
		}
		if !known {
			return params.Set{}, &UnknownCaseError{Label: label, Known: table.Labels()}
		}
		return base.Merge(nil), nil
	}

	out := base
	for _, r := range rows {
		next, err := apply(out, r)
		if err != nil {
			return params.Set{}, &OverrideError{Case: label, Key: r.Key, Err: err}
		}
		out = next
	}
	return out, nil
}

func apply(s params.Set, o Override) (params.Set, error) {
	if o.Key == "" {
		return s, fmt.Errorf("empty key")
	}
	key, err := params.PathKey(o.Key)
	if err != nil {
		return s, err
	}
	if params.IsDerived(key) {
		return s, fmt.Errorf("%w: %s is recomputed from the primary inputs; override Bearing_Base_Stiffness, bearing_multiplier or Bearing_Table instead", ErrDerivedKey, key)
	}
	if params.IsPath(o.Key) {
		return s.WithPath(o.Key, o.Value)
	}
	return s.With(o.Key, o.Value), nil
}
