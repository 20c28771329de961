package part

// columnAliases lists, per canonical column, the alternative names a source
// may use. The canonical column wins; otherwise the first alias present.
var columnAliases = []struct {
	canonical string
	aliases   []string
}{
	{ColType, []string{"part_type"}},
	{ColName, []string{"generic_name"}},
	{ColFrameFCMount, []string{"frame_fc_mount_pattern"}},
	{ColFrameMotorMount, []string{"frame_motor_mount_pattern"}},
	{ColFCMount, []string{"fc_mount_pattern"}},
	{ColESCMount, []string{"esc_mount_pattern"}},
	{ColMotorMount, []string{"motor_mount_pattern"}},
}

// NumericColumns are coerced to float64; anything unparseable becomes
// unknown.
var NumericColumns = []string{
	"frame_max_prop_in", "prop_diameter_in", "prop_pitch_in", "prop_blade_count",
	"shaft_mm", "max_current_a", "cells_min", "cells_max",
	"esc_continuous_current_a", "esc_cells_min", "esc_cells_max",
	"cell_count",
	"fc_bec_5v_a", "fc_bec_9v_a", "fc_bec_10v_a", "fc_bec_12v_a",
	"fc_vbat_min_s", "fc_vbat_max_s",
	"vtx_5v_current_a", "vtx_9v_current_a", "vtx_10v_current_a", "vtx_12v_current_a",
	"vtx_input_s_min", "vtx_input_s_max",
	"camera_input_v_min", "camera_input_v_max",
	"camera_5v_current_a", "camera_10v_current_a", "camera_12v_current_a",
	"antenna_band_ghz", "rx_band_ghz",
	"pigtail_awg", "pigtail_length_mm",
	"capacitor_voltage_v", "capacitor_uf",
}

var mountColumns = []string{
	ColFrameFCMount, ColFrameMotorMount, ColFCMount, ColESCMount, ColMotorMount,
}

// derived pairs a source column with the canonical column computed from it.
type derived struct {
	src, dst string
}

var rfColumns = []derived{
	{"vtx_ant_conn", ColVTXAntConn},
	{"antenna_conn", ColAntConn},
	{"rx_ant_conn", ColRXAntConn},
}

var powerColumns = []derived{
	{"battery_connector", ColBatteryConn},
	{"esc_batt_connector", ColESCConn},
	{"pigtail_connector", ColPigtailConn},
}

const attrsColumn = "attrs"

// Normalize builds the unified table from raw rows. It never fails: values
// it cannot canonicalize become unknown.
func Normalize(rows []Raw) Table {
	t := Table{Records: make([]Record, 0, len(rows))}
	for _, raw := range rows {
		t.Records = append(t.Records, NormalizeRecord(raw))
	}
	return t
}

// NormalizeRecord canonicalizes a single row.
func NormalizeRecord(raw Raw) Record {
	row := flatten(raw)
	applyAliases(row)

	rec := Record{
		SKU:   identity(row[ColSKU]),
		Name:  identity(row[ColName]),
		Type:  NormalizeType(row[ColType]),
		Attrs: make(map[string]any, len(row)),
	}
	for k, v := range row {
		switch k {
		case ColSKU, ColName, ColType:
			continue
		}
		if v != nil {
			rec.Attrs[k] = v
		}
	}

	for _, col := range NumericColumns {
		coerce(rec.Attrs, col, func(v any) (any, bool) { return ToFloat(v) })
	}
	for _, col := range mountColumns {
		coerce(rec.Attrs, col, func(v any) (any, bool) { return CanonMounts(v) })
	}
	for _, d := range rfColumns {
		derive(rec.Attrs, d, func(v any) (any, bool) { return CanonRF(v) })
	}
	for _, d := range powerColumns {
		derive(rec.Attrs, d, func(v any) (any, bool) { return CanonPower(v) })
	}
	derive(rec.Attrs, derived{"prop_hub", ColPropHub}, canonHubString)

	if mm, ok := rec.Float("shaft_mm"); ok {
		if h, ok := HubFromShaft(mm); ok {
			rec.Attrs[ColMotorHub] = string(h)
		} else {
			delete(rec.Attrs, ColMotorHub)
		}
	} else {
		coerce(rec.Attrs, ColMotorHub, canonHubString)
	}
	return rec
}

func canonHubString(v any) (any, bool) {
	h, ok := CanonPropHub(v)
	return string(h), ok
}

// coerce replaces attrs[col] in place, dropping it when fn rejects the value.
func coerce(attrs map[string]any, col string, fn func(any) (any, bool)) {
	v, ok := attrs[col]
	if !ok {
		return
	}
	if c, ok := fn(v); ok {
		attrs[col] = c
		return
	}
	delete(attrs, col)
}

// derive computes d.dst from d.src. Without a source value the existing
// d.dst is re-canonicalized, which keeps normalization idempotent.
func derive(attrs map[string]any, d derived, fn func(any) (any, bool)) {
	v, ok := attrs[d.src]
	if !ok {
		coerce(attrs, d.dst, fn)
		return
	}
	if c, ok := fn(v); ok {
		attrs[d.dst] = c
		return
	}
	delete(attrs, d.dst)
}

func applyAliases(row map[string]any) {
	for _, a := range columnAliases {
		if row[a.canonical] != nil {
			continue
		}
		for _, alias := range a.aliases {
			if v, ok := row[alias]; ok && v != nil {
				row[a.canonical] = v
				delete(row, alias)
				break
			}
		}
	}
}

func identity(v any) string {
	if v == nil {
		return ""
	}
	return scalarString(v)
}

// flatten merges a nested attrs object into the top level (top-level keys
// win) and flattens any other nested object with dotted keys.
func flatten(raw Raw) map[string]any {
	out := make(map[string]any, len(raw))
	var attrs map[string]any
	for k, v := range raw {
		m, ok := asMap(v)
		switch {
		case ok && k == attrsColumn:
			attrs = m
		case ok:
			flattenInto(out, k, m)
		default:
			out[k] = v
		}
	}
	if attrs == nil {
		return out
	}
	nested := make(map[string]any, len(attrs))
	flattenInto(nested, "", attrs)
	for k, v := range nested {
		if cur, ok := out[k]; !ok || cur == nil {
			out[k] = v
		}
	}
	return out
}

func flattenInto(dst map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := asMap(v); ok {
			flattenInto(dst, key, sub)
			continue
		}
		dst[key] = v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Raw:
		return m, true
	}
	return nil, false
}
