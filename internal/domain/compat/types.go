// Package compat evaluates the fixed set of pairwise compatibility rules
// over a normalized parts table. Evaluation is pure: no I/O, no logging,
// and every rule key is present in the result even when it produced no
// edges.
package compat

import "github.com/corey/fpvcompat/internal/domain/part"

// Status is the verdict of one candidate pairing.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusWarn Status = "WARN"
)

// DefaultHeadroom is the ESC-to-motor current safety factor.
const DefaultHeadroom = 1.2

// Trailing columns shared by every table.
const (
	ColStatus = "status"
	ColReason = "reason"
)

// Params are the knobs a rule may read.
type Params struct {
	Headroom float64
}

// PartRef identifies one side of an edge.
type PartRef struct {
	SKU  string
	Name string
}

func refOf(r part.Record) PartRef {
	return PartRef{SKU: r.SKU, Name: r.Name}
}

// Edge is one evaluated pairing. Values line up with Table.Fields; an
// unknown value is nil.
type Edge struct {
	Left   PartRef
	Right  PartRef
	Values []any
	Status Status
	Reason string
}

// Table is the result set of one rule.
type Table struct {
	Key    string
	Left   string // role prefix of the left columns, e.g. "frame"
	Right  string
	Fields []string
	Edges  []Edge
}

// Columns returns the table schema in output order.
func (t Table) Columns() []string {
	cols := make([]string, 0, len(t.Fields)+6)
	cols = append(cols, t.Left+"_sku", t.Left+"_name", t.Right+"_sku", t.Right+"_name")
	cols = append(cols, t.Fields...)
	return append(cols, ColStatus, ColReason)
}

// Row renders an edge in Columns order.
func (e Edge) Row() []any {
	row := make([]any, 0, len(e.Values)+6)
	row = append(row, e.Left.SKU, e.Left.Name, e.Right.SKU, e.Right.Name)
	row = append(row, e.Values...)
	return append(row, string(e.Status), e.Reason)
}

// Rows renders every edge in Columns order.
func (t Table) Rows() [][]any {
	rows := make([][]any, len(t.Edges))
	for i, e := range t.Edges {
		rows[i] = e.Row()
	}
	return rows
}

// Results holds one table per rule, in rule order.
type Results []Table

// Get returns the table for a key.
func (rs Results) Get(key string) (Table, bool) {
	for _, t := range rs {
		if t.Key == key {
			return t, true
		}
	}
	return Table{}, false
}

// Keys returns the table keys in rule order.
func (rs Results) Keys() []string {
	keys := make([]string, len(rs))
	for i, t := range rs {
		keys[i] = t.Key
	}
	return keys
}

// EdgeCount returns the total number of edges across all tables.
func (rs Results) EdgeCount() int {
	n := 0
	for _, t := range rs {
		n += len(t.Edges)
	}
	return n
}
