package part

import (
	"math"
	"strconv"
	"strings"
)

// typeSynonyms maps loose type spellings onto the canonical set.
var typeSynonyms = map[string]Type{
	"frames":     TypeFrame,
	"motors":     TypeMotor,
	"escs":       TypeESC,
	"batteries":  TypeBattery,
	"fcs":        TypeFC,
	"vtxs":       TypeVTX,
	"cameras":    TypeCamera,
	"props":      TypeProp,
	"propeller":  TypeProp,
	"propellers": TypeProp,
	"antennas":   TypeAntenna,
	"rxs":        TypeRX,
	"pigtails":   TypePigtail,
	"capacitors": TypeCapacitor,
}

// NormalizeType lowercases, trims and singularizes a type token.
// Unrecognized tokens come back unchanged (after lowercasing); nil is "".
func NormalizeType(v any) Type {
	if v == nil {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(scalarString(v)))
	if t, ok := typeSynonyms[s]; ok {
		return t
	}
	return Type(s)
}

var mountAliases = map[string]Mount{
	"30x30": Mount30,
	"25x25": Mount25,
}

// CanonMounts normalizes a mount value (a single token, a comma separated
// list, or a list) to allowed patterns, de-duplicated in first-seen order.
// The second result is false when v is not a string or list at all.
func CanonMounts(v any) ([]Mount, bool) {
	var toks []string
	switch x := v.(type) {
	case string:
		x = strings.ReplaceAll(x, "×", "x")
		x = strings.Join(strings.Fields(x), "")
		toks = strings.Split(x, ",")
	case []Mount:
		for _, m := range x {
			toks = append(toks, string(m))
		}
	case []string:
		toks = x
	case []any:
		for _, e := range x {
			if e != nil {
				toks = append(toks, scalarString(e))
			}
		}
	default:
		return nil, false
	}

	out := make([]Mount, 0, len(toks))
	for _, t := range toks {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		m := Mount(t)
		if alias, ok := mountAliases[t]; ok {
			m = alias
		}
		if !allowedMount(m) || containsMount(out, m) {
			continue
		}
		out = append(out, m)
	}
	return out, true
}

// JoinMounts renders a mount list the way source files write it.
func JoinMounts(ms []Mount) string {
	s := make([]string, len(ms))
	for i, m := range ms {
		s[i] = string(m)
	}
	return strings.Join(s, ", ")
}

// MountsOverlap reports whether two pattern lists share any token.
func MountsOverlap(a, b []Mount) bool {
	for _, m := range a {
		if containsMount(b, m) {
			return true
		}
	}
	return false
}

func allowedMount(m Mount) bool {
	return containsMount(Mounts, m)
}

func containsMount(ms []Mount, m Mount) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

// CanonRF canonicalizes an RF connector description. The substring tests
// run in a fixed order: RP-SMA before SMA, MMCX before MCX.
func CanonRF(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.ToUpper(strings.TrimSpace(scalarString(v)))
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	switch {
	case strings.Contains(s, "RP SMA"), strings.Contains(s, "RPSMA"):
		return "RP-SMA", true
	case strings.Contains(s, "SMA"):
		return "SMA", true
	case strings.Contains(s, "MMCX"):
		return "MMCX", true
	case strings.Contains(s, "MCX"):
		return "MCX", true
	case strings.Contains(s, "MHF4"), strings.Contains(s, "IPEX 4"):
		return "IPEX MHF4", true
	case strings.Contains(s, "MHF1"), strings.Contains(s, "IPEX 1"):
		return "IPEX MHF1", true
	case strings.Contains(s, "U FL"), strings.Contains(s, "UFL"), strings.Contains(s, "IPEX"):
		return "U.FL", true
	}
	return "", false
}

var powerAliases = map[string]string{
	"XT30":      "XT30",
	"AMASSXT30": "XT30",
	"XT30U":     "XT30",
	"XT60":      "XT60",
	"AMASSXT60": "XT60",
	"XT60H":     "XT60",
	"XT90":      "XT90",
	"XT90S":     "XT90",
	"EC3":       "EC3",
	"EC5":       "EC5",
	"JSTRCY":    "JST-RCY",
	"JST":       "JST-RCY",
}

// CanonPower canonicalizes a battery-side power connector. Unknown tokens
// are kept, uppercased with spaces and hyphens removed; only blank input
// is unknown.
func CanonPower(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	t := strings.ToUpper(strings.TrimSpace(scalarString(v)))
	t = strings.NewReplacer(" ", "", "-", "").Replace(t)
	if t == "" || t == "NAN" {
		return "", false
	}
	if c, ok := powerAliases[t]; ok {
		return c, true
	}
	return t, true
}

// CanonPropHub maps free text onto a hub class.
func CanonPropHub(v any) (Hub, bool) {
	if v == nil {
		return "", false
	}
	s := strings.ToLower(strings.TrimSpace(scalarString(v)))
	s = strings.NewReplacer("-", "", "_", "").Replace(s)
	switch {
	case strings.Contains(s, "m5"), strings.Contains(s, "5mm"):
		return HubM5, true
	case strings.Contains(s, "tmount"), s == "t", s == "tmnt":
		return HubTMount, true
	}
	return "", false
}

// HubFromShaft infers the motor hub class from shaft diameter in mm.
// Shafts strictly between 2.1 and 4.8 mm are ambiguous.
func HubFromShaft(mm float64) (Hub, bool) {
	switch {
	case math.IsNaN(mm):
		return "", false
	case mm >= 4.8:
		return HubM5, true
	case mm <= 2.1:
		return HubTMount, true
	}
	return "", false
}

// ToFloat coerces a source value to a number. Unparseable and non-finite
// values report false.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
