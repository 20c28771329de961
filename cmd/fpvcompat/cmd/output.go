package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// palette applies colors only when enabled.
type palette bool

func (p palette) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + colorReset
}

const minPairWidth = 16

// writeSummary prints the per-pair verdict counts as an aligned table:
//
//	PAIR                        PASS  FAIL  UNK
//	--------------------------------------------
//	Compat_frame_prop              1     1    0
func writeSummary(w io.Writer, rows []compat.PairSummary, color bool) {
	if len(rows) == 0 {
		return
	}
	p := palette(color)
	width := minPairWidth
	for _, r := range rows {
		if len(r.Pair) > width {
			width = len(r.Pair)
		}
	}

	header := fmt.Sprintf("%-*s  PASS  FAIL  UNK", width, "PAIR")
	fmt.Fprintln(w, p.paint(colorBold, header))
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %s  %s  %s\n", width, r.Pair,
			count(p, colorGreen, r.Pass, 4),
			count(p, colorRed, r.Fail, 4),
			count(p, colorYellow, r.Unknown, 3))
	}
}

// count pads n to width and colors it when non-zero.
func count(p palette, code string, n, width int) string {
	s := fmt.Sprintf("%*d", width, n)
	if n == 0 {
		return p.paint(colorGray, s)
	}
	return p.paint(code, s)
}

// writeRuns prints stored run headers, newest first.
func writeRuns(w io.Writer, runs []ports.RunInfo, color bool) {
	p := palette(color)
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  headroom %s  %d parts  %d sources\n",
			p.paint(colorBold, r.ID),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			formatHeadroom(r.Headroom),
			r.Parts, len(r.Sources))
	}
}

func formatHeadroom(h float64) string {
	return fmt.Sprintf("%gx", h)
}

// writeRules prints the rule catalog: key, roles, evaluation mode and
// comparison columns.
func writeRules(w io.Writer, rules []compat.Rule, color bool) {
	p := palette(color)
	width := minPairWidth
	for _, r := range rules {
		if len(r.Key) > width {
			width = len(r.Key)
		}
	}
	for _, r := range rules {
		mode := "cross"
		if r.Joined() {
			mode = "join"
		}
		fields := "-"
		if len(r.Fields) > 0 {
			fields = strings.Join(r.Fields, ", ")
		}
		fmt.Fprintf(w, "%-*s  %-9s → %-9s  %-5s  %s\n", width, r.Key,
			r.Left.Role, r.Right.Role, mode, p.paint(colorGray, fields))
	}
}
