package stacker

import "testing"

func TestMeanOf(t *testing.T) {
	tests := []struct {
		name   string
		values []uint16
		want   uint16
	}{
		{"three values", []uint16{100, 200, 300}, 200},
		{"single value", []uint16{42}, 42},
		{"rounds half up", []uint16{1, 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meanOf(tt.values); got != tt.want {
				t.Fatalf("meanOf(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestMedianOf(t *testing.T) {
	tests := []struct {
		name   string
		values []uint16
		want   uint16
	}{
		{"odd count", []uint16{10, 50, 30}, 30},
		{"even count takes lower middle", []uint16{40, 10, 30, 20}, 20},
		{"two values take lower", []uint16{7, 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianOf(tt.values); got != tt.want {
				t.Fatalf("medianOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSmartMeanOfTrimsOutliers(t *testing.T) {
	// 5000 sits far outside the threshold around the median and is dropped.
	if got := smartMeanOf([]uint16{100, 110, 5000}, 50); got != 105 {
		t.Fatalf("smartMeanOf = %d, want 105", got)
	}
	// All values within threshold degrade to the plain mean.
	if got := smartMeanOf([]uint16{100, 110, 120}, 50); got != 110 {
		t.Fatalf("smartMeanOf = %d, want 110", got)
	}
	if got := smartMeanOf([]uint16{42}, 50); got != 42 {
		t.Fatalf("smartMeanOf single = %d, want 42", got)
	}
}

func TestSpreadOf(t *testing.T) {
	if got := spreadOf([]uint16{30, 10, 20}); got != 20 {
		t.Fatalf("spreadOf = %d, want 20", got)
	}
	if got := spreadOf([]uint16{5}); got != 0 {
		t.Fatalf("spreadOf single = %d, want 0", got)
	}
}

func TestClosestTo(t *testing.T) {
	if got := closestTo([]uint16{100, 150, 300}, 160); got != 150 {
		t.Fatalf("closestTo = %d, want 150", got)
	}
	// Ties resolve to the earlier source.
	if got := closestTo([]uint16{90, 110}, 100); got != 90 {
		t.Fatalf("closestTo tie = %d, want 90", got)
	}
}

func TestCombineInt16(t *testing.T) {
	if got := combineInt16([]int16{100, 200}, SideMean); got != 150 {
		t.Fatalf("mean = %d, want 150", got)
	}
	if got := combineInt16([]int16{-3, -4}, SideMean); got != -4 {
		t.Fatalf("negative mean = %d, want -4", got)
	}
	if got := combineInt16([]int16{5, -2, 9}, SideMedian); got != 5 {
		t.Fatalf("median = %d, want 5", got)
	}
}

func TestCombineByte(t *testing.T) {
	if got := combineByte([]byte{10, 20, 90}, SideMean); got != 40 {
		t.Fatalf("mean = %d, want 40", got)
	}
	if got := combineByte([]byte{10, 20, 90}, SideMedian); got != 20 {
		t.Fatalf("median = %d, want 20", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"Mean", ModeMean},
		{"median", ModeMedian},
		{"smart-mean", ModeSmartMean},
		{"smart_neighbor", ModeSmartNeighbor},
		{"neighbour", ModeNeighbor},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMode("sum"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestEffectiveMode(t *testing.T) {
	if got := (Config{Mode: ModeAuto}).effectiveMode(2); got != ModeMean {
		t.Fatalf("auto with 2 sources = %v, want mean", got)
	}
	if got := (Config{Mode: ModeAuto}).effectiveMode(3); got != ModeSmartMean {
		t.Fatalf("auto with 3 sources = %v, want smart-mean", got)
	}
	if got := (Config{Mode: ModeMedian}).effectiveMode(5); got != ModeMedian {
		t.Fatalf("explicit mode = %v, want median", got)
	}
}
