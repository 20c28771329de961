package part

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	cases := map[any]Type{
		"motors":     TypeMotor,
		" Motor ":    TypeMotor,
		"propellers": TypeProp,
		"Props":      TypeProp,
		"batteries":  TypeBattery,
		"FRAMES":     TypeFrame,
		"vtxs":       TypeVTX,
		"capacitors": TypeCapacitor,
		"fc":         TypeFC,
		"gimbal":     Type("gimbal"),
		"Servo Arms": Type("servo arms"),
		nil:          Type(""),
		float64(3):   Type("3"),
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeType(in), "input %v", in)
	}
	assert.False(t, Type("gimbal").Known())
	assert.True(t, TypeRX.Known())
}

func TestCanonMounts(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []Mount
		ok   bool
	}{
		{"single", "30.5x30.5", []Mount{Mount30}, true},
		{"legacy alias", "30x30", []Mount{Mount30}, true},
		{"legacy 25", "25X25", []Mount{Mount25}, true},
		{"multiply sign and spaces", "20 × 20, 25.5×25.5", []Mount{Mount20, Mount25}, true},
		{"dedup keeps first order", "20x20,16x16,20x20", []Mount{Mount20, Mount16}, true},
		{"unknown dropped", "35x35,16x16", []Mount{Mount16}, true},
		{"nothing recognizable", "m3", []Mount{}, true},
		{"list input", []any{"30x30", "20x20", nil}, []Mount{Mount30, Mount20}, true},
		{"already canonical", []Mount{Mount9, Mount12}, []Mount{Mount9, Mount12}, true},
		{"number is not a pattern", 30.5, nil, false},
		{"nil", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonMounts(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMountsOverlap_Symmetric(t *testing.T) {
	a := []Mount{Mount20, Mount30}
	b := []Mount{Mount25, Mount30}
	c := []Mount{Mount16}
	assert.True(t, MountsOverlap(a, b))
	assert.True(t, MountsOverlap(b, a))
	assert.False(t, MountsOverlap(a, c))
	assert.False(t, MountsOverlap(c, a))
	assert.False(t, MountsOverlap(nil, a))
}

func TestCanonRF(t *testing.T) {
	cases := map[string]string{
		"rpsma":            "RP-SMA",
		"RP-SMA female":    "RP-SMA",
		"rp_sma":           "RP-SMA",
		"SMA":              "SMA",
		"sma male":         "SMA",
		"MMCX":             "MMCX",
		"mmcx right angle": "MMCX",
		"mcx":              "MCX",
		"IPEX MHF4":        "IPEX MHF4",
		"ipex-4":           "IPEX MHF4",
		"MHF1":             "IPEX MHF1",
		"u.fl":             "U.FL",
		"UFL":              "U.FL",
		"ipex":             "U.FL",
	}
	for in, want := range cases {
		got, ok := CanonRF(in)
		assert.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)

		again, ok := CanonRF(got)
		assert.True(t, ok)
		assert.Equal(t, got, again, "canonical form %q must be a fixed point", got)
	}

	for _, in := range []any{"N-type", "", nil} {
		_, ok := CanonRF(in)
		assert.False(t, ok, "input %v", in)
	}
}

func TestCanonPower(t *testing.T) {
	cases := map[string]string{
		"XT-60":      "XT60",
		"xt60h":      "XT60",
		"Amass XT30": "XT30",
		"XT30U":      "XT30",
		"xt90s":      "XT90",
		"EC5":        "EC5",
		"jst":        "JST-RCY",
		"JST-RCY":    "JST-RCY",
		"deans t":    "DEANST",
	}
	for in, want := range cases {
		got, ok := CanonPower(in)
		assert.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)

		again, _ := CanonPower(got)
		assert.Equal(t, got, again)
	}

	_, ok := CanonPower("   ")
	assert.False(t, ok)
	_, ok = CanonPower(nil)
	assert.False(t, ok)
	_, ok = CanonPower(math.NaN())
	assert.False(t, ok)
}

func TestCanonPropHub(t *testing.T) {
	cases := []struct {
		in   any
		want Hub
		ok   bool
	}{
		{"M5", HubM5, true},
		{"5mm shaft", HubM5, true},
		{"T-Mount", HubTMount, true},
		{"t_mount", HubTMount, true},
		{"T", HubTMount, true},
		{"tmnt", HubTMount, true},
		{"2mm", "", false},
		{"", "", false},
		{nil, "", false},
	}
	for _, c := range cases {
		got, ok := CanonPropHub(c.in)
		assert.Equal(t, c.ok, ok, "input %v", c.in)
		assert.Equal(t, c.want, got, "input %v", c.in)
	}
}

func TestHubFromShaft(t *testing.T) {
	cases := []struct {
		mm   float64
		want Hub
		ok   bool
	}{
		{5.0, HubM5, true},
		{4.8, HubM5, true},
		{2.1, HubTMount, true},
		{1.5, HubTMount, true},
		{3.0, "", false},
		{4.79, "", false},
		{2.11, "", false},
		{math.NaN(), "", false},
	}
	for _, c := range cases {
		got, ok := HubFromShaft(c.mm)
		assert.Equal(t, c.ok, ok, "shaft %v", c.mm)
		assert.Equal(t, c.want, got, "shaft %v", c.mm)
	}
}

func TestToFloat(t *testing.T) {
	ok := []struct {
		in   any
		want float64
	}{
		{"5", 5},
		{" 5.1 ", 5.1},
		{float64(30), 30},
		{42, 42},
		{int64(7), 7},
		{true, 1},
	}
	for _, c := range ok {
		got, valid := ToFloat(c.in)
		assert.True(t, valid, "input %v", c.in)
		assert.Equal(t, c.want, got)
	}
	for _, in := range []any{"5 inch", "", "nan", math.NaN(), "inf", "+Inf", "-inf", math.Inf(1), nil, []any{1}} {
		_, valid := ToFloat(in)
		assert.False(t, valid, "input %v", in)
	}
}
