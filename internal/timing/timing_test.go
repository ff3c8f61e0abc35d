package timing

import (
	"reflect"
	"testing"
)

func TestDeriveDurations(t *testing.T) {
	tests := []struct {
		name    string
		startMS []int64
		totalMS int64
		want    []int64
	}{
		{
			name:    "three chapters with remainder",
			startMS: []int64{0, 3000, 8000},
			totalMS: 10000,
			want:    []int64{3000, 5000, 2000},
		},
		{
			name:    "single chapter with zero total",
			startMS: []int64{0},
			totalMS: 0,
			want:    []int64{1},
		},
		{
			name:    "single chapter with total",
			startMS: []int64{0},
			totalMS: 30000,
			want:    []int64{30000},
		},
		{
			name:    "two chapters, identical starts clamp to 1ms",
			startMS: []int64{1000, 1000},
			totalMS: 2000,
			want:    []int64{1, 1000},
		},
		{
			name:    "last start equals total",
			startMS: []int64{0, 5000},
			totalMS: 5000,
			want:    []int64{5000, 1},
		},
		{
			name:    "empty input",
			startMS: nil,
			totalMS: 1000,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveDurations(tt.startMS, tt.totalMS)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveDurations(%v, %d) = %v, want %v", tt.startMS, tt.totalMS, got, tt.want)
			}
		})
	}
}
