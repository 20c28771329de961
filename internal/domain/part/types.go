// Package part defines FPV part records and the Normalizer that turns
// loosely typed source rows into comparable, canonical attributes.
// All types are pure Go with no external dependencies.
package part

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is a canonical part type. Values outside the known set are allowed
// (they pass through normalization unchanged) but take part in no rule.
type Type string

const (
	TypeFrame     Type = "frame"
	TypeMotor     Type = "motor"
	TypeESC       Type = "esc"
	TypeBattery   Type = "battery"
	TypeFC        Type = "fc"
	TypeVTX       Type = "vtx"
	TypeCamera    Type = "camera"
	TypeProp      Type = "prop"
	TypeAntenna   Type = "antenna"
	TypeRX        Type = "rx"
	TypePigtail   Type = "pigtail"
	TypeCapacitor Type = "capacitor"
)

// Types lists the canonical part types in catalog order.
var Types = []Type{
	TypeFrame, TypeMotor, TypeESC, TypeBattery, TypeFC, TypeVTX,
	TypeCamera, TypeProp, TypeAntenna, TypeRX, TypePigtail, TypeCapacitor,
}

// Known reports whether t is one of the canonical part types.
func (t Type) Known() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Mount is a canonical hole-pattern token, e.g. "30.5x30.5".
type Mount string

const (
	Mount9  Mount = "9x9"
	Mount12 Mount = "12x12"
	Mount16 Mount = "16x16"
	Mount19 Mount = "19x19"
	Mount20 Mount = "20x20"
	Mount25 Mount = "25.5x25.5"
	Mount30 Mount = "30.5x30.5"
)

// Mounts is the allowed mount set.
var Mounts = []Mount{Mount9, Mount12, Mount16, Mount19, Mount20, Mount25, Mount30}

// Hub is a coarse propeller-mounting interface class.
type Hub string

const (
	HubM5     Hub = "M5"
	HubTMount Hub = "T-MOUNT"
)

// Attribute column names read by the rules or produced by the Normalizer.
// Only names used from more than one place are listed.
const (
	ColSKU  = "sku"
	ColType = "type"
	ColName = "name"

	ColFrameFCMount    = "frame_fc_mount_pattern_eff"
	ColFrameMotorMount = "frame_motor_mount_pattern_eff"
	ColFCMount         = "fc_mount_pattern_eff"
	ColESCMount        = "esc_mount_pattern_eff"
	ColMotorMount      = "motor_mount_pattern_eff"

	ColBatteryConn = "battery_connector_eff"
	ColESCConn     = "esc_batt_connector_eff"
	ColPigtailConn = "pigtail_connector_eff"

	ColVTXAntConn = "vtx_ant_conn_eff"
	ColAntConn    = "antenna_conn_eff"
	ColRXAntConn  = "rx_ant_conn_eff"

	ColPropHub  = "prop_hub_eff"
	ColMotorHub = "motor_hub_eff"
)

// Raw is one loosely typed source row: column name to string, number,
// bool, list, nested map or nil.
type Raw map[string]any

// Record is one normalized part. Attrs holds everything except the three
// identity columns; a missing key means "unknown".
type Record struct {
	SKU   string
	Type  Type
	Name  string
	Attrs map[string]any
}

// Has reports whether col holds a known value.
func (r Record) Has(col string) bool {
	switch col {
	case ColSKU, ColType, ColName:
		return true
	}
	v, ok := r.Attrs[col]
	return ok && v != nil
}

// Float returns a numeric attribute. Non-numeric and non-finite values
// report false.
func (r Record) Float(col string) (float64, bool) {
	switch v := r.Attrs[col].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Text returns an attribute rendered as a trimmed string; blank values
// report false.
func (r Record) Text(col string) (string, bool) {
	v, ok := r.Attrs[col]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(scalarString(v))
	return s, s != ""
}

// Mounts returns a canonical mount list. A present but empty list reports
// true: the record declared a pattern, none of it recognizable.
func (r Record) Mounts(col string) ([]Mount, bool) {
	m, ok := r.Attrs[col].([]Mount)
	return m, ok
}

// Get returns the raw attribute value (nil if unknown). Identity columns
// are served from their fields.
func (r Record) Get(col string) any {
	switch col {
	case ColSKU:
		return r.SKU
	case ColType:
		return string(r.Type)
	case ColName:
		return r.Name
	}
	return r.Attrs[col]
}

// Raw converts the record back into a source row. Normalizing the result
// yields an identical record.
func (r Record) Raw() Raw {
	out := make(Raw, len(r.Attrs)+3)
	for k, v := range r.Attrs {
		out[k] = v
	}
	out[ColSKU] = r.SKU
	out[ColType] = string(r.Type)
	out[ColName] = r.Name
	return out
}

// Table is the unified, normalized parts table in input order.
type Table struct {
	Records []Record
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// OfType returns the records of one type, preserving input order.
func (t Table) OfType(typ Type) []Record {
	var out []Record
	for _, r := range t.Records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

// CountByType tallies records per type, unknown types included.
func (t Table) CountByType() map[Type]int {
	out := make(map[Type]int)
	for _, r := range t.Records {
		out[r.Type]++
	}
	return out
}

// Raw converts every record back into a source row.
func (t Table) Raw() []Raw {
	out := make([]Raw, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Raw()
	}
	return out
}

// scalarString renders a source value the way it would read in a CSV cell.
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return FormatNumber(x)
	case []Mount:
		return JoinMounts(x)
	default:
		return fmt.Sprint(x)
	}
}

// FormatNumber renders a float in its shortest exact decimal form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
