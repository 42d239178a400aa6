// Package testsupport builds the synthetic captures the package tests feed
// through the reconstruction stages.
package testsupport

import (
	"testing"

	"fieldstack/internal/fieldsource"
)

// Descriptor returns a small capture geometry that keeps tests fast while
// still having distinct colourburst and active areas.
func Descriptor() fieldsource.Descriptor {
	return fieldsource.Descriptor{
		Parity:          fieldsource.ParityTop,
		Format:          fieldsource.FormatNTSC,
		Width:           64,
		Height:          16,
		ColorburstStart: 4,
		ColorburstEnd:   12,
		ActiveStart:     16,
	}
}

// SourceOption customizes a generated source.
type SourceOption func(*sourceBuilder)

type sourceBuilder struct {
	desc   fieldsource.Descriptor
	fields int
	fill   func(id fieldsource.FieldID, line, sample int) uint16
	hints  map[fieldsource.FieldID][]fieldsource.Region
}

// WithFields sets the number of generated fields (default 4).
func WithFields(count int) SourceOption {
	return func(b *sourceBuilder) { b.fields = count }
}

// WithDescriptor overrides the capture geometry.
func WithDescriptor(desc fieldsource.Descriptor) SourceOption {
	return func(b *sourceBuilder) { b.desc = desc }
}

// WithFill overrides the per-sample generator.
func WithFill(fill func(id fieldsource.FieldID, line, sample int) uint16) SourceOption {
	return func(b *sourceBuilder) { b.fill = fill }
}

// WithConstant fills every sample with the same value.
func WithConstant(value uint16) SourceOption {
	return WithFill(func(fieldsource.FieldID, int, int) uint16 { return value })
}

// WithDropouts attaches dropout hints to one field.
func WithDropouts(id fieldsource.FieldID, regions ...fieldsource.Region) SourceOption {
	return func(b *sourceBuilder) {
		b.hints[id] = append(b.hints[id], regions...)
	}
}

// NewSource generates a composite in-memory source. The default fill is a
// smooth gradient, so any replacement line is a close but not exact match
// for the damaged one.
func NewSource(t testing.TB, opts ...SourceOption) *fieldsource.MemorySource {
	t.Helper()

	b := &sourceBuilder{
		desc:   Descriptor(),
		fields: 4,
		hints:  make(map[fieldsource.FieldID][]fieldsource.Region),
	}
	b.fill = func(id fieldsource.FieldID, line, sample int) uint16 {
		return uint16(20000 + int(id)*10 + line*40 + sample)
	}
	for _, opt := range opts {
		opt(b)
	}

	src := fieldsource.NewMemorySource(b.desc, 0, false)
	for i := 0; i < b.fields; i++ {
		id := fieldsource.FieldID(i)
		buf := fieldsource.NewBuffer(b.desc.Width, b.desc.Height)
		for line := 0; line < b.desc.Height; line++ {
			row := buf.Line(line)
			for sample := 0; sample < b.desc.Width; sample++ {
				row[sample] = b.fill(id, line, sample)
			}
		}
		src.AppendField(buf, b.hints[id])
	}
	return src
}
