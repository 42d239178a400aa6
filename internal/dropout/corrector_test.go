package dropout

import (
	"errors"
	"testing"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/logging"
	"fieldstack/internal/testsupport"
)

func newCorrector(t *testing.T, src fieldsource.Source, cfg Config) *Corrector {
	t.Helper()
	c, err := New(src, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCorrectorPassesThroughCleanFields(t *testing.T) {
	src := testsupport.NewSource(t)
	c := newCorrector(t, src, Config{})

	want, err := src.Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("source field: %v", err)
	}
	got, err := c.Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("corrected field: %v", err)
	}
	if !got.Equal(want) {
		t.Fatal("clean field must pass through unchanged")
	}
	if len(c.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %v", c.Warnings())
	}
}

func TestCorrectorRepairsHintedRegion(t *testing.T) {
	region := fieldsource.Region{Line: 6, Start: 20, End: 28}
	src := testsupport.NewSource(t,
		testsupport.WithFill(periodicFill),
		testsupport.WithDropouts(1, region),
	)

	// Damage the hinted window so a passthrough would be visible.
	damaged, err := src.Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("source field: %v", err)
	}
	line := damaged.Line(region.Line)
	for i := region.Start; i < region.End; i++ {
		line[i] = 0
	}

	c := newCorrector(t, src, Config{})
	got, err := c.Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("corrected field: %v", err)
	}

	outLine := got.Line(region.Line)
	for i := region.Start; i < region.End; i++ {
		if want := periodicFill(1, region.Line, i); outLine[i] != want {
			t.Fatalf("sample %d = %d, want %d", i, outLine[i], want)
		}
	}
	if got := c.Stats(); got.RegionsCorrected != 1 || got.SamplesReplaced != int64(region.Length()) {
		t.Fatalf("stats = %+v", got)
	}
	if hints := c.DropoutHints(1); hints != nil {
		t.Fatalf("corrected output must report no dropouts, got %v", hints)
	}

	// The damaged source field is untouched.
	if srcLine, _ := src.Line(1, fieldsource.ChannelComposite, region.Line); srcLine[region.Start] != 0 {
		t.Fatal("correction must not write through to the source")
	}
}

func TestCorrectorWidensRepairByOvercorrectExtension(t *testing.T) {
	region := fieldsource.Region{Line: 6, Start: 20, End: 24}
	src := testsupport.NewSource(t,
		testsupport.WithFill(periodicFill),
		testsupport.WithDropouts(1, region),
	)

	// Damage spills two samples past the hint on each side.
	damaged, _ := src.Field(1, fieldsource.ChannelComposite)
	line := damaged.Line(region.Line)
	for i := region.Start - 2; i < region.End+2; i++ {
		line[i] = 0
	}

	c := newCorrector(t, src, Config{OvercorrectExtension: 2})
	got, err := c.Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("corrected field: %v", err)
	}
	outLine := got.Line(region.Line)
	for i := region.Start - 2; i < region.End+2; i++ {
		if want := periodicFill(1, region.Line, i); outLine[i] != want {
			t.Fatalf("sample %d = %d, want %d", i, outLine[i], want)
		}
	}
}

func TestCorrectorHighlightMode(t *testing.T) {
	region := fieldsource.Region{Line: 3, Start: 20, End: 24}
	src := testsupport.NewSource(t, testsupport.WithDropouts(0, region))

	c := newCorrector(t, src, Config{HighlightCorrections: true})
	got, err := c.Field(0, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("corrected field: %v", err)
	}
	line := got.Line(region.Line)
	for i := region.Start; i < region.End; i++ {
		if line[i] != fieldsource.SampleIRE100 {
			t.Fatalf("sample %d = %#x, want 100 IRE marker", i, line[i])
		}
	}
	if line[region.End] == fieldsource.SampleIRE100 {
		t.Fatal("highlight leaked past the repair window")
	}
}

func TestCorrectorWarnsWhenNoReplacementExists(t *testing.T) {
	region := fieldsource.Region{Line: 8, Start: 20, End: 30}
	blocked := []fieldsource.Region{region}
	for _, line := range []int{4, 6, 10, 12} {
		blocked = append(blocked, fieldsource.Region{Line: line, Start: 20, End: 30})
	}
	src := testsupport.NewSource(t,
		testsupport.WithFields(1),
		testsupport.WithDropouts(0, blocked...),
	)

	c := newCorrector(t, src, Config{MaxReplacementDistance: 4, IntrafieldOnly: true})
	if _, err := c.Field(0, fieldsource.ChannelComposite); err != nil {
		t.Fatalf("corrected field: %v", err)
	}

	var found bool
	for _, w := range c.Warnings() {
		if w.Field == 0 && w.Region == region {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning for %v, got %v", region, c.Warnings())
	}
	if got := c.Stats(); got.RegionsUncorrected == 0 {
		t.Fatalf("stats = %+v, want uncorrected regions counted", got)
	}

	// Uncorrectable samples stay as captured.
	srcLine, _ := src.Line(0, fieldsource.ChannelComposite, region.Line)
	outLine, _ := c.Line(0, fieldsource.ChannelComposite, region.Line)
	for i := region.Start; i < region.End; i++ {
		if outLine[i] != srcLine[i] {
			t.Fatalf("sample %d rewritten without a candidate", i)
		}
	}
}

func TestCorrectorIsDeterministic(t *testing.T) {
	region := fieldsource.Region{Line: 6, Start: 20, End: 28}
	build := func() *Corrector {
		src := testsupport.NewSource(t,
			testsupport.WithFill(periodicFill),
			testsupport.WithDropouts(1, region),
		)
		return newCorrector(t, src, Config{})
	}

	a, err := build().Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := build().Field(1, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !a.Equal(b) {
		t.Fatal("identical inputs must produce identical corrections")
	}
}

func TestCorrectorCachesCorrectedFields(t *testing.T) {
	src := testsupport.NewSource(t)
	c := newCorrector(t, src, Config{})

	first, err := c.Field(0, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := c.Field(0, fieldsource.ChannelComposite)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if first != second {
		t.Fatal("repeat reads must serve the cached buffer")
	}
}

func TestCorrectorErrors(t *testing.T) {
	src := testsupport.NewSource(t)
	c := newCorrector(t, src, Config{})

	if _, err := c.Field(99, fieldsource.ChannelComposite); !errors.Is(err, fieldsource.ErrNoField) {
		t.Fatalf("missing field: err = %v, want ErrNoField", err)
	}
	if _, err := c.Field(0, fieldsource.ChannelLuma); !errors.Is(err, fieldsource.ErrNoChannel) {
		t.Fatalf("missing channel: err = %v, want ErrNoChannel", err)
	}

	if _, err := New(nil, Config{}, logging.NewNop()); err == nil {
		t.Fatal("expected error for nil source")
	}
	if _, err := New(src, Config{MaxReplacementDistance: -1}, logging.NewNop()); err == nil {
		t.Fatal("expected error for negative distance")
	}
}
