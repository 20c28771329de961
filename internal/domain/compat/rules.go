package compat

import (
	"fmt"
	"math"
	"strings"

	"github.com/corey/fpvcompat/internal/domain/part"
)

// Side selects one part-type slice of a rule.
type Side struct {
	Type    part.Type
	Role    string                           // column prefix in the result table
	Require []string                         // rows lacking any of these are not candidates
	Gate    func(part.Record) bool           // optional extra filter
	Key     func(part.Record) (string, bool) // join key; nil on both sides means cross-product
}

// Verdict is what a rule's check returns for one candidate pair.
type Verdict struct {
	Status Status
	Reason string
	Values []any // aligned with Rule.Fields
}

// Rule is one closed compatibility check between two part types.
type Rule struct {
	Key    string
	Left   Side
	Right  Side
	Fields []string
	Check  func(l, r part.Record, p Params) Verdict
}

// Joined reports whether candidates come from an equality join rather than
// a cross-product.
func (r Rule) Joined() bool {
	return r.Left.Key != nil && r.Right.Key != nil
}

const (
	cellVoltage      = 4.2
	capVoltageMargin = 1.05
)

var rules = buildRules()

// Rules returns the fixed rule set in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func buildRules() []Rule {
	rs := []Rule{
		framePropRule(),
		mountRule("Compat_frame_fc",
			Side{Type: part.TypeFrame, Role: "frame", Require: []string{part.ColFrameFCMount}},
			Side{Type: part.TypeFC, Role: "fc", Require: []string{part.ColFCMount}},
			"Mount pattern overlaps"),
		mountRule("Compat_frame_motor",
			Side{Type: part.TypeFrame, Role: "frame", Require: []string{part.ColFrameMotorMount}},
			Side{Type: part.TypeMotor, Role: "motor", Require: []string{part.ColMotorMount}},
			"Mount pattern overlaps"),
		mountRule("Compat_esc_fc",
			Side{Type: part.TypeESC, Role: "esc", Require: []string{part.ColESCMount}},
			Side{Type: part.TypeFC, Role: "fc", Require: []string{part.ColFCMount}},
			"Form factor matches"),
		batteryESCRule(),
		escMotorRule(),
		escMotorHeadroomRule(),
		vtxCameraRule(),
		vtxAntennaRule(),
		fcVTXVbatRule(),
	}
	for _, v := range []int{5, 9, 10, 12} {
		rs = append(rs, fcVTXRailRule(v))
	}
	rs = append(rs, fcCamCurrentRule())
	for _, v := range []int{10, 12} {
		rs = append(rs, fcCamVoltageRule(v))
	}
	return append(rs,
		rxAntennaRule(),
		connectorRule("Compat_pigtail_esc",
			Side{Type: part.TypePigtail, Role: "pigtail", Key: textKey(part.ColPigtailConn)},
			Side{Type: part.TypeESC, Role: "esc", Key: textKey(part.ColESCConn)}),
		connectorRule("Compat_battery_pigtail",
			Side{Type: part.TypePigtail, Role: "pigtail", Key: textKey(part.ColPigtailConn)},
			Side{Type: part.TypeBattery, Role: "battery", Key: textKey(part.ColBatteryConn)}),
		capESCRule(),
		motorPropHubRule(),
	)
}

func pass(reason string, values ...any) Verdict {
	return Verdict{Status: StatusPass, Reason: reason, Values: values}
}

func fail(reason string, values ...any) Verdict {
	return Verdict{Status: StatusFail, Reason: reason, Values: values}
}

func passIf(ok bool, passReason, failReason string, values ...any) Verdict {
	if ok {
		return pass(passReason, values...)
	}
	return fail(failReason, values...)
}

// num returns a numeric attribute or nil when unknown.
func num(r part.Record, col string) any {
	if v, ok := r.Float(col); ok {
		return v
	}
	return nil
}

func text(r part.Record, col string) any {
	if v, ok := r.Text(col); ok {
		return v
	}
	return nil
}

func textKey(col string) func(part.Record) (string, bool) {
	return func(r part.Record) (string, bool) { return r.Text(col) }
}

// span is an inclusive numeric range; ok is false when a bound is unknown.
type span struct {
	min, max float64
	ok       bool
}

func spanOf(r part.Record, minCol, maxCol string) span {
	lo, okLo := r.Float(minCol)
	hi, okHi := r.Float(maxCol)
	return span{min: lo, max: hi, ok: okLo && okHi}
}

// overlap reports whether two ranges intersect. defined is false when any
// bound is unknown.
func overlap(a, b span) (overlaps, defined bool) {
	if !a.ok || !b.ok {
		return false, false
	}
	return math.Max(a.min, b.min) <= math.Min(a.max, b.max), true
}

func framePropRule() Rule {
	return Rule{
		Key:    "Compat_frame_prop",
		Left:   Side{Type: part.TypeFrame, Role: "frame", Require: []string{"frame_max_prop_in"}},
		Right:  Side{Type: part.TypeProp, Role: "prop", Require: []string{"prop_diameter_in"}},
		Fields: []string{"frame_max_prop_in", "prop_diameter_in"},
		Check: func(l, r part.Record, _ Params) Verdict {
			maxIn, _ := l.Float("frame_max_prop_in")
			dia, _ := r.Float("prop_diameter_in")
			return passIf(dia <= maxIn, "Prop diameter ≤ frame max", "Prop diameter > frame max", maxIn, dia)
		},
	}
}

func mountRule(key string, left, right Side, passReason string) Rule {
	lc, rc := left.Require[0], right.Require[0]
	return Rule{
		Key:   key,
		Left:  left,
		Right: right,
		Check: func(l, r part.Record, _ Params) Verdict {
			lm, _ := l.Mounts(lc)
			rm, _ := r.Mounts(rc)
			return passIf(part.MountsOverlap(lm, rm), passReason, "No common mount pattern")
		},
	}
}

func batteryESCRule() Rule {
	return Rule{
		Key:    "Compat_battery_esc",
		Left:   Side{Type: part.TypeBattery, Role: "battery", Key: textKey(part.ColBatteryConn)},
		Right:  Side{Type: part.TypeESC, Role: "esc", Key: textKey(part.ColESCConn)},
		Fields: []string{part.ColBatteryConn, "esc_cells_min", "esc_cells_max", "cell_count"},
		Check: func(l, r part.Record, _ Params) Verdict {
			values := []any{text(l, part.ColBatteryConn), num(r, "esc_cells_min"), num(r, "esc_cells_max"), num(l, "cell_count")}
			cells, okCells := l.Float("cell_count")
			esc := spanOf(r, "esc_cells_min", "esc_cells_max")
			if !okCells || !esc.ok {
				return pass("Connector matched", values...)
			}
			return passIf(cells >= esc.min && cells <= esc.max, "Connector + cells OK", "Cells out of ESC range", values...)
		},
	}
}

var escMotorFields = []string{
	"esc_continuous_current_a", "max_current_a",
	"esc_cells_min", "esc_cells_max", "cells_min", "cells_max",
}

func escMotorValues(l, r part.Record) []any {
	return []any{
		num(l, "esc_continuous_current_a"), num(r, "max_current_a"),
		num(l, "esc_cells_min"), num(l, "esc_cells_max"),
		num(r, "cells_min"), num(r, "cells_max"),
	}
}

func escMotorRule() Rule {
	return Rule{
		Key:    "Compat_esc_motor",
		Left:   Side{Type: part.TypeESC, Role: "esc"},
		Right:  Side{Type: part.TypeMotor, Role: "motor"},
		Fields: escMotorFields,
		Check: func(l, r part.Record, _ Params) Verdict {
			values := escMotorValues(l, r)
			escA, okE := l.Float("esc_continuous_current_a")
			motA, okM := r.Float("max_current_a")
			currentOK := okE && okM && escA >= motA
			cells, defined := overlap(spanOf(l, "esc_cells_min", "esc_cells_max"), spanOf(r, "cells_min", "cells_max"))

			switch {
			case defined && !cells:
				return fail("Cell ranges do not overlap", values...)
			case currentOK && cells:
				return pass("current OK & cells overlap", values...)
			case currentOK:
				return pass("current OK", values...)
			case cells:
				return pass("cells overlap (current unknown)", values...)
			}
			return Verdict{Status: StatusWarn, Reason: "insufficient data", Values: values}
		},
	}
}

func escMotorHeadroomRule() Rule {
	return Rule{
		Key:    "Compat_esc_motor_headroom",
		Left:   Side{Type: part.TypeESC, Role: "esc"},
		Right:  Side{Type: part.TypeMotor, Role: "motor"},
		Fields: escMotorFields,
		Check: func(l, r part.Record, p Params) Verdict {
			values := escMotorValues(l, r)
			escA, okE := l.Float("esc_continuous_current_a")
			motA, okM := r.Float("max_current_a")
			if !okE || !okM {
				return fail("missing current rating(s)", values...)
			}
			cells, defined := overlap(spanOf(l, "esc_cells_min", "esc_cells_max"), spanOf(r, "cells_min", "cells_max"))
			if !defined {
				return fail("missing cell ranges", values...)
			}
			if !cells {
				return fail("Cell ranges do not overlap", values...)
			}
			ok := escA >= p.Headroom*motA
			cmp := "<"
			if ok {
				cmp = "≥"
			}
			reason := fmt.Sprintf("current %s %.1f× & cells overlap", cmp, p.Headroom)
			return passIf(ok, reason, reason, values...)
		},
	}
}

func systemKey(col string) func(part.Record) (string, bool) {
	return func(r part.Record) (string, bool) {
		s, ok := r.Text(col)
		return strings.ToLower(s), ok
	}
}

func vtxCameraRule() Rule {
	return Rule{
		Key:    "Compat_vtx_camera",
		Left:   Side{Type: part.TypeVTX, Role: "vtx", Key: systemKey("vtx_system")},
		Right:  Side{Type: part.TypeCamera, Role: "camera", Key: systemKey("camera_system")},
		Fields: []string{"sys"},
		Check: func(l, _ part.Record, _ Params) Verdict {
			sys, _ := systemKey("vtx_system")(l)
			return pass("Systems match", sys)
		},
	}
}

// fpvAntenna gates antennas to FPV video use: declared use "fpv" or a band
// inside the 5.8 GHz video allocation.
func fpvAntenna(r part.Record) bool {
	if use, ok := r.Text("antenna_use"); ok && strings.ToLower(use) == "fpv" {
		return true
	}
	band, ok := r.Float("antenna_band_ghz")
	return ok && band >= 5.4 && band <= 6.2
}

func vtxAntennaRule() Rule {
	return Rule{
		Key:    "Compat_vtx_antenna",
		Left:   Side{Type: part.TypeVTX, Role: "vtx", Key: textKey(part.ColVTXAntConn)},
		Right:  Side{Type: part.TypeAntenna, Role: "antenna", Gate: fpvAntenna, Key: textKey(part.ColAntConn)},
		Fields: []string{"conn"},
		Check: func(l, _ part.Record, _ Params) Verdict {
			return pass("RF connector matches", text(l, part.ColVTXAntConn))
		},
	}
}

func fcVTXVbatRule() Rule {
	fcCols := []string{"fc_vbat_min_s", "fc_vbat_max_s"}
	vtxCols := []string{"vtx_input_s_min", "vtx_input_s_max"}
	return Rule{
		Key:    "Compat_fc_vtx_vbat",
		Left:   Side{Type: part.TypeFC, Role: "fc", Require: fcCols},
		Right:  Side{Type: part.TypeVTX, Role: "vtx", Require: vtxCols},
		Fields: append(append([]string{}, fcCols...), vtxCols...),
		Check: func(l, r part.Record, _ Params) Verdict {
			ok, _ := overlap(spanOf(l, fcCols[0], fcCols[1]), spanOf(r, vtxCols[0], vtxCols[1]))
			return passIf(ok, "VBAT ranges overlap", "VBAT ranges do not overlap",
				num(l, fcCols[0]), num(l, fcCols[1]), num(r, vtxCols[0]), num(r, vtxCols[1]))
		},
	}
}

// currentRule compares a supply current on the left against a draw on the
// right.
func currentRule(key string, left, right Side, passReason, failReason string) Rule {
	supply, draw := left.Require[0], right.Require[0]
	return Rule{
		Key:    key,
		Left:   left,
		Right:  right,
		Fields: []string{supply, draw},
		Check: func(l, r part.Record, _ Params) Verdict {
			s, _ := l.Float(supply)
			d, _ := r.Float(draw)
			return passIf(s >= d, passReason, failReason, s, d)
		},
	}
}

func fcVTXRailRule(volts int) Rule {
	fcCol := fmt.Sprintf("fc_bec_%dv_a", volts)
	vtxCol := fmt.Sprintf("vtx_%dv_current_a", volts)
	return currentRule(fmt.Sprintf("Compat_fc_vtx_%dv", volts),
		Side{Type: part.TypeFC, Role: "fc", Require: []string{fcCol}},
		Side{Type: part.TypeVTX, Role: "vtx", Require: []string{vtxCol}},
		fmt.Sprintf("FC %dV BEC ≥ VTX current", volts),
		fmt.Sprintf("FC %dV BEC < VTX current", volts))
}

func fcCamCurrentRule() Rule {
	return currentRule("Compat_fc_cam_5v",
		Side{Type: part.TypeFC, Role: "fc", Require: []string{"fc_bec_5v_a"}},
		Side{Type: part.TypeCamera, Role: "camera", Require: []string{"camera_5v_current_a"}},
		"FC 5V BEC ≥ camera current",
		"FC 5V BEC < camera current")
}

func fcCamVoltageRule(volts int) Rule {
	camCols := []string{"camera_input_v_min", "camera_input_v_max"}
	v := float64(volts)
	return Rule{
		Key:    fmt.Sprintf("Compat_fc_cam_%dv", volts),
		Left:   Side{Type: part.TypeFC, Role: "fc", Require: []string{fmt.Sprintf("fc_bec_%dv_a", volts)}},
		Right:  Side{Type: part.TypeCamera, Role: "camera", Require: camCols},
		Fields: camCols,
		Check: func(_, r part.Record, _ Params) Verdict {
			accepted := spanOf(r, camCols[0], camCols[1])
			return passIf(accepted.min <= v && accepted.max >= v,
				fmt.Sprintf("Camera accepts %dV", volts),
				fmt.Sprintf("Camera %dV out of range", volts),
				accepted.min, accepted.max)
		},
	}
}

// bandBucket coarsens a frequency in GHz to the band it serves.
func bandBucket(ghz float64) (string, bool) {
	switch {
	case math.Abs(ghz-5.8) < 0.4:
		return "5.8", true
	case math.Abs(ghz-2.4) < 0.3:
		return "2.4", true
	case ghz >= 0.7 && ghz <= 1.0:
		return "0.9", true
	}
	return "", false
}

// connBandKey joins on connector and band bucket together.
func connBandKey(connCol, bandCol string) func(part.Record) (string, bool) {
	return func(r part.Record) (string, bool) {
		conn, ok := r.Text(connCol)
		if !ok {
			return "", false
		}
		ghz, ok := r.Float(bandCol)
		if !ok {
			return "", false
		}
		bb, ok := bandBucket(ghz)
		if !ok {
			return "", false
		}
		return conn + "|" + bb, true
	}
}

func rxAntennaRule() Rule {
	return Rule{
		Key: "Compat_rx_antenna",
		Left: Side{Type: part.TypeRX, Role: "rx", Require: []string{part.ColRXAntConn, "rx_band_ghz"},
			Key: connBandKey(part.ColRXAntConn, "rx_band_ghz")},
		Right: Side{Type: part.TypeAntenna, Role: "antenna", Require: []string{part.ColAntConn, "antenna_band_ghz"},
			Key: connBandKey(part.ColAntConn, "antenna_band_ghz")},
		Fields: []string{"conn", "bb"},
		Check: func(l, _ part.Record, _ Params) Verdict {
			ghz, _ := l.Float("rx_band_ghz")
			bb, _ := bandBucket(ghz)
			return pass("Connector + band", text(l, part.ColRXAntConn), bb)
		},
	}
}

// connectorRule matches parts on a shared canonical power connector.
func connectorRule(key string, left, right Side) Rule {
	return Rule{
		Key:    key,
		Left:   left,
		Right:  right,
		Fields: []string{part.ColPigtailConn},
		Check: func(l, _ part.Record, _ Params) Verdict {
			return pass("Connector matched", text(l, part.ColPigtailConn))
		},
	}
}

func capESCRule() Rule {
	return Rule{
		Key:    "Compat_cap_esc",
		Left:   Side{Type: part.TypeCapacitor, Role: "capacitor", Require: []string{"capacitor_voltage_v"}},
		Right:  Side{Type: part.TypeESC, Role: "esc", Require: []string{"esc_cells_max"}},
		Fields: []string{"capacitor_voltage_v", "esc_vmax"},
		Check: func(l, r part.Record, _ Params) Verdict {
			capV, _ := l.Float("capacitor_voltage_v")
			cells, _ := r.Float("esc_cells_max")
			vmax := cells * cellVoltage
			return passIf(capV >= vmax*capVoltageMargin, "Cap voltage ≥ VBAT max", "Cap voltage < VBAT max", capV, vmax)
		},
	}
}

func motorPropHubRule() Rule {
	return Rule{
		Key:    "Compat_motor_prop_hub",
		Left:   Side{Type: part.TypeMotor, Role: "motor"},
		Right:  Side{Type: part.TypeProp, Role: "prop", Require: []string{part.ColPropHub}},
		Fields: []string{"shaft_mm", part.ColMotorHub, part.ColPropHub},
		Check: func(l, r part.Record, _ Params) Verdict {
			values := []any{num(l, "shaft_mm"), text(l, part.ColMotorHub), text(r, part.ColPropHub)}
			mh, okM := l.Text(part.ColMotorHub)
			ph, okP := r.Text(part.ColPropHub)
			switch {
			case okM && okP && mh == ph:
				return pass("Hub type matches", values...)
			case !okM || !okP:
				return Verdict{Status: StatusWarn, Reason: "Insufficient hub/shaft data", Values: values}
			}
			return fail("Hub type mismatch", values...)
		},
	}
}
