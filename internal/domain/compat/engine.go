package compat

import "github.com/corey/fpvcompat/internal/domain/part"

// Build evaluates the full rule set with the given headroom. A non-positive
// headroom falls back to DefaultHeadroom.
func Build(t part.Table, headroom float64) Results {
	if headroom <= 0 {
		headroom = DefaultHeadroom
	}
	return Evaluate(t, Rules(), Params{Headroom: headroom})
}

// Evaluate runs each rule over the table. Every rule yields a table, empty
// when no candidates exist.
func Evaluate(t part.Table, rs []Rule, p Params) Results {
	out := make(Results, 0, len(rs))
	for _, r := range rs {
		out = append(out, evalRule(t, r, p))
	}
	return out
}

func evalRule(t part.Table, r Rule, p Params) Table {
	res := Table{
		Key:    r.Key,
		Left:   r.Left.Role,
		Right:  r.Right.Role,
		Fields: r.Fields,
		Edges:  []Edge{},
	}
	lefts := candidates(t, r.Left)
	rights := candidates(t, r.Right)
	if len(lefts) == 0 || len(rights) == 0 {
		return res
	}

	emit := func(l, rt part.Record) {
		v := r.Check(l, rt, p)
		res.Edges = append(res.Edges, Edge{
			Left:   refOf(l),
			Right:  refOf(rt),
			Values: v.Values,
			Status: v.Status,
			Reason: v.Reason,
		})
	}

	if !r.Joined() {
		for _, l := range lefts {
			for _, rt := range rights {
				emit(l, rt)
			}
		}
		return res
	}

	byKey := make(map[string][]part.Record)
	for _, rt := range rights {
		if k, ok := r.Right.Key(rt); ok {
			byKey[k] = append(byKey[k], rt)
		}
	}
	for _, l := range lefts {
		k, ok := r.Left.Key(l)
		if !ok {
			continue
		}
		for _, rt := range byKey[k] {
			emit(l, rt)
		}
	}
	return res
}

// candidates returns the records of s.Type that carry every required
// attribute and pass the gate, in input order.
func candidates(t part.Table, s Side) []part.Record {
	var out []part.Record
next:
	for _, rec := range t.OfType(s.Type) {
		for _, col := range s.Require {
			if !rec.Has(col) {
				continue next
			}
		}
		if s.Gate != nil && !s.Gate(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
