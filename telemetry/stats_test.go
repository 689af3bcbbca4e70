package telemetry

import (
	"math"
	"testing"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name                string
		values             []float64
		mean, p10, p50, p90 float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"single", []float64{3}, 3, 3, 3, 3},
		{"constant", []float64{2, 2, 2, 2}, 2, 2, 2, 2},
		{"one to ten", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 5.5, 1, 5, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, p10, p50, p90 := ComputeDistribution(tt.values)
			got := []float64{mean, p10, p50, p90}
			want := []float64{tt.mean, tt.p10, tt.p50, tt.p90}
			for i := range got {
				if math.Abs(got[i]-want[i]) > 1e-9 {
					t.Errorf("ComputeDistribution(%v) = %v, want %v", tt.values, got, want)
					break
				}
			}
		})
	}
}

func TestComputeDistributionDoesNotSortInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeDistribution(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}
