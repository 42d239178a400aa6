package dropout

import (
	"testing"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/testsupport"
)

func TestClassify(t *testing.T) {
	desc := testsupport.Descriptor() // burst 4-12, active 16

	tests := []struct {
		name   string
		region fieldsource.Region
		want   regionClass
	}{
		{"inside burst", fieldsource.Region{Line: 2, Start: 6, End: 10}, classColourBurst},
		{"whole burst", fieldsource.Region{Line: 2, Start: 4, End: 12}, classColourBurst},
		{"visible picture", fieldsource.Region{Line: 2, Start: 20, End: 30}, classVisibleLine},
		{"sync area", fieldsource.Region{Line: 2, Start: 0, End: 3}, classUnknown},
		{"burst to active gap", fieldsource.Region{Line: 2, Start: 12, End: 16}, classUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.region, desc); got != tt.want {
				t.Fatalf("classify(%v) = %v, want %v", tt.region, got, tt.want)
			}
		})
	}
}

func TestSplitRegionAtBoundaries(t *testing.T) {
	desc := testsupport.Descriptor()
	region := fieldsource.Region{Line: 3, Start: 8, End: 20}

	parts := splitRegion(region, desc)
	want := []fieldsource.Region{
		{Line: 3, Start: 8, End: 12},
		{Line: 3, Start: 12, End: 16},
		{Line: 3, Start: 16, End: 20},
	}
	if len(parts) != len(want) {
		t.Fatalf("splitRegion returned %d parts, want %d: %v", len(parts), len(want), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("parts[%d] = %v, want %v", i, parts[i], want[i])
		}
		if got := classify(parts[i], desc); got == classColourBurst && i != 0 {
			t.Fatalf("parts[%d] classified as burst", i)
		}
	}
}

func TestSplitRegionPreservesCleanRegions(t *testing.T) {
	desc := testsupport.Descriptor()
	region := fieldsource.Region{Line: 1, Start: 20, End: 40}

	parts := splitRegion(region, desc)
	if len(parts) != 1 || parts[0] != region {
		t.Fatalf("splitRegion(%v) = %v, want unchanged", region, parts)
	}
}
