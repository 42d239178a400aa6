package fieldsource

import (
	"errors"
	"testing"
)

func testDescriptor() Descriptor {
	return Descriptor{
		Parity:          ParityTop,
		Format:          FormatNTSC,
		Width:           32,
		Height:          8,
		ColorburstStart: 2,
		ColorburstEnd:   6,
		ActiveStart:     8,
	}
}

func TestMemorySourceComposite(t *testing.T) {
	src := NewMemorySource(testDescriptor(), 100, false)
	buf := NewBuffer(32, 8)
	buf.Samples[0] = 42
	id := src.AppendField(buf, []Region{{Line: 1, Start: 4, End: 8}})

	if id != 100 {
		t.Fatalf("first id = %d, want 100", id)
	}
	if got := src.FieldCount(); got != 1 {
		t.Fatalf("FieldCount() = %d, want 1", got)
	}
	first, last := src.FieldRange()
	if first != 100 || last != 100 {
		t.Fatalf("FieldRange() = %d..%d, want 100..100", first, last)
	}

	got, err := src.Field(100, ChannelComposite)
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if got.Samples[0] != 42 {
		t.Fatalf("sample 0 = %d, want 42", got.Samples[0])
	}

	if _, err := src.Field(100, ChannelLuma); !errors.Is(err, ErrNoChannel) {
		t.Fatalf("luma from composite source: err = %v, want ErrNoChannel", err)
	}
	if _, err := src.Field(101, ChannelComposite); !errors.Is(err, ErrNoField) {
		t.Fatalf("missing field: err = %v, want ErrNoField", err)
	}

	hints := src.DropoutHints(100)
	if len(hints) != 1 || hints[0].Line != 1 {
		t.Fatalf("DropoutHints = %v", hints)
	}
}

func TestMemorySourceParityAlternates(t *testing.T) {
	src := NewMemorySource(testDescriptor(), 0, false)
	src.AppendField(NewBuffer(32, 8), nil)
	src.AppendField(NewBuffer(32, 8), nil)

	d0, _ := src.Descriptor(0)
	d1, _ := src.Descriptor(1)
	if d0.Parity != ParityTop || d1.Parity != ParityBottom {
		t.Fatalf("parities = %v, %v; want top, bottom", d0.Parity, d1.Parity)
	}
}

func TestMemorySourceYC(t *testing.T) {
	src := NewMemorySource(testDescriptor(), 0, true)
	luma := NewBuffer(32, 8)
	chroma := NewBuffer(32, 8)
	luma.Samples[5] = 1000
	chroma.Samples[5] = 2000
	src.AppendFieldYC(luma, chroma, nil)

	if !src.SeparateChannels() {
		t.Fatal("expected YC source to report separate channels")
	}
	l, err := src.Field(0, ChannelLuma)
	if err != nil {
		t.Fatalf("luma: %v", err)
	}
	c, err := src.Field(0, ChannelChroma)
	if err != nil {
		t.Fatalf("chroma: %v", err)
	}
	if l.Samples[5] != 1000 || c.Samples[5] != 2000 {
		t.Fatalf("planes mixed up: luma[5]=%d chroma[5]=%d", l.Samples[5], c.Samples[5])
	}
}

func TestMemorySourceSideChannels(t *testing.T) {
	src := NewMemorySource(testDescriptor(), 0, false)
	src.AppendField(NewBuffer(32, 8), nil)

	if src.HasAudio() || src.HasEFM() {
		t.Fatal("fresh source should have no side channels")
	}
	if err := src.SetAudio(0, []int16{1, 2, 3}); err != nil {
		t.Fatalf("SetAudio: %v", err)
	}
	if err := src.SetEFM(0, []byte{3, 5, 7}); err != nil {
		t.Fatalf("SetEFM: %v", err)
	}

	if got := src.AudioSampleCount(0); got != 3 {
		t.Fatalf("AudioSampleCount = %d, want 3", got)
	}
	if got := src.EFMSampleCount(0); got != 3 {
		t.Fatalf("EFMSampleCount = %d, want 3", got)
	}
	if err := src.SetAudio(9, nil); err == nil {
		t.Fatal("expected error for missing field")
	}
}

func TestBufferLineAndClone(t *testing.T) {
	buf := NewBuffer(4, 2)
	line := buf.Line(1)
	line[0] = 7

	if buf.At(1, 0) != 7 {
		t.Fatal("Line must alias the backing plane")
	}
	if buf.Line(2) != nil {
		t.Fatal("out-of-range line must be nil")
	}

	clone := buf.Clone()
	clone.Samples[4] = 9
	if buf.Samples[4] == 9 {
		t.Fatal("Clone must not share samples")
	}
	if !buf.Equal(buf.Clone()) {
		t.Fatal("clone should compare equal")
	}
}
