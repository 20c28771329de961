package compat

import "sort"

// PairSummary tallies the verdicts of one rule table. Unknown counts WARN.
type PairSummary struct {
	Pair    string `json:"pair"`
	Pass    int    `json:"pass"`
	Fail    int    `json:"fail"`
	Unknown int    `json:"unknown"`
}

// Total returns the number of edges counted.
func (s PairSummary) Total() int { return s.Pass + s.Fail + s.Unknown }

// Summarize counts verdicts per table, sorted by key.
func Summarize(rs Results) []PairSummary {
	out := make([]PairSummary, 0, len(rs))
	for _, t := range rs {
		s := PairSummary{Pair: t.Key}
		for _, e := range t.Edges {
			switch e.Status {
			case StatusPass:
				s.Pass++
			case StatusFail:
				s.Fail++
			default:
				s.Unknown++
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair < out[j].Pair })
	return out
}

// PassOnly returns a copy of rs keeping only PASS edges. Every key is kept.
func PassOnly(rs Results) Results {
	out := make(Results, len(rs))
	for i, t := range rs {
		kept := make([]Edge, 0, len(t.Edges))
		for _, e := range t.Edges {
			if e.Status == StatusPass {
				kept = append(kept, e)
			}
		}
		t.Edges = kept
		out[i] = t
	}
	return out
}
