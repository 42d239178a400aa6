package fieldsource

import "testing"

func TestRegionOverlaps(t *testing.T) {
	base := Region{Line: 5, Start: 10, End: 20}
	tests := []struct {
		name  string
		other Region
		want  bool
	}{
		{"identical", Region{Line: 5, Start: 10, End: 20}, true},
		{"partial", Region{Line: 5, Start: 15, End: 25}, true},
		{"adjacent half-open", Region{Line: 5, Start: 20, End: 30}, false},
		{"different line", Region{Line: 6, Start: 10, End: 20}, false},
		{"contained", Region{Line: 5, Start: 12, End: 14}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Fatalf("Overlaps(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestRegionContains(t *testing.T) {
	r := Region{Line: 3, Start: 8, End: 12}
	if !r.Contains(3, 8) {
		t.Fatal("start sample should be inside")
	}
	if r.Contains(3, 12) {
		t.Fatal("end sample is exclusive")
	}
	if r.Contains(4, 9) {
		t.Fatal("wrong line should not match")
	}
}

func TestSortRegions(t *testing.T) {
	regions := []Region{
		{Line: 2, Start: 5, End: 6},
		{Line: 1, Start: 9, End: 10},
		{Line: 1, Start: 2, End: 4},
	}
	SortRegions(regions)

	want := []Region{
		{Line: 1, Start: 2, End: 4},
		{Line: 1, Start: 9, End: 10},
		{Line: 2, Start: 5, End: 6},
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Fatalf("regions[%d] = %v, want %v", i, regions[i], want[i])
		}
	}
}

func TestDescriptorValid(t *testing.T) {
	desc := Descriptor{Width: 910, Height: 263, ColorburstStart: 30, ColorburstEnd: 90, ActiveStart: 130}
	if !desc.Valid() {
		t.Fatal("expected NTSC-shaped descriptor to be valid")
	}

	bad := desc
	bad.ActiveStart = 80 // inside the burst
	if bad.Valid() {
		t.Fatal("active start before burst end should be invalid")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("PAL"); err != nil || f != FormatPAL {
		t.Fatalf("ParseFormat(PAL) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatNTSC {
		t.Fatalf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("secam"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
