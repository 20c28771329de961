package compat

import (
	"fmt"
	"testing"

	"github.com/corey/fpvcompat/internal/domain/part"
)

// syntheticCatalog builds n parts of each type with varied attributes so
// that both join and cross rules produce edges.
func syntheticCatalog(n int) []part.Raw {
	mounts := []string{"30.5x30.5", "20x20", "25.5x25.5", "16x16", "M3"}
	conns := []string{"XT60", "XT-30", "xt90", "U.FL", "MMCX", "rpsma", "sma"}
	var rows []part.Raw
	for i := 0; i < n; i++ {
		m := mounts[i%len(mounts)]
		c := conns[i%len(conns)]
		rows = append(rows,
			part.Raw{"sku": fmt.Sprintf("FR%d", i), "type": "frame", "frame_max_prop_in": 3 + i%5,
				"frame_fc_mount_pattern": m, "frame_motor_mount_pattern": "16x16,19x19"},
			part.Raw{"sku": fmt.Sprintf("PR%d", i), "type": "prop", "prop_diameter_in": 2.5 + float64(i%6),
				"prop_hub": []string{"M5", "T-mount", "5mm"}[i%3]},
			part.Raw{"sku": fmt.Sprintf("MO%d", i), "type": "motor", "motor_mount_pattern": "16x16",
				"max_current_a": 20 + i%30, "cells_min": 3, "cells_max": 4 + i%3, "shaft_mm": 5},
			part.Raw{"sku": fmt.Sprintf("ES%d", i), "type": "esc", "esc_mount_pattern": m,
				"esc_continuous_current_a": 30 + i%30, "esc_cells_min": 3, "esc_cells_max": 6, "esc_batt_connector": c},
			part.Raw{"sku": fmt.Sprintf("FC%d", i), "type": "fc", "fc_mount_pattern": m,
				"fc_bec_5v_a": 2, "fc_bec_9v_a": 1.5},
			part.Raw{"sku": fmt.Sprintf("BA%d", i), "type": "battery", "battery_connector": c, "cell_count": 4 + i%3},
			part.Raw{"sku": fmt.Sprintf("VT%d", i), "type": "vtx", "vtx_ant_conn": c, "vtx_input_s_min": 2,
				"vtx_input_s_max": 6, "vtx_9v_current_a": 0.8},
			part.Raw{"sku": fmt.Sprintf("AN%d", i), "type": "antenna", "antenna_conn": c, "antenna_band_ghz": 5.8},
		)
	}
	return rows
}

func BenchmarkBuild(b *testing.B) {
	t := part.Normalize(syntheticCatalog(100))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Build(t, DefaultHeadroom)
	}
}

func BenchmarkNormalize(b *testing.B) {
	rows := syntheticCatalog(100)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = part.Normalize(rows)
	}
}

func TestSyntheticCatalog_ProducesEdges(t *testing.T) {
	rs := Build(part.Normalize(syntheticCatalog(10)), DefaultHeadroom)
	for _, key := range []string{"Compat_frame_prop", "Compat_frame_fc", "Compat_esc_motor", "Compat_battery_esc", "Compat_vtx_antenna"} {
		tab, ok := rs.Get(key)
		if !ok || len(tab.Edges) == 0 {
			t.Errorf("%s: expected edges", key)
		}
	}
}
