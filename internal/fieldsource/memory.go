package fieldsource

import "fmt"

// MemorySource is an in-memory Source used as the concrete upstream
// representation for loaded captures and synthetic test material. Fields are
// added with contiguous, increasing ids; once handed to a wrapper the source
// must not be mutated.
type MemorySource struct {
	desc   Descriptor
	first  FieldID
	fields []*memoryField
	yc     bool
}

type memoryField struct {
	desc      Descriptor
	composite *Buffer
	luma      *Buffer
	chroma    *Buffer
	hints     []Region
	audio     []int16
	efm       []byte
}

// NewMemorySource creates an empty source whose fields default to the given
// descriptor. Set yc for sources carrying separate luma/chroma planes.
func NewMemorySource(desc Descriptor, first FieldID, yc bool) *MemorySource {
	return &MemorySource{desc: desc, first: first, yc: yc}
}

// AppendField adds the next composite field. The buffer is adopted, not
// copied.
func (m *MemorySource) AppendField(buf *Buffer, hints []Region) FieldID {
	f := &memoryField{desc: m.fieldDescriptor(len(m.fields)), composite: buf, hints: CloneRegions(hints)}
	SortRegions(f.hints)
	m.fields = append(m.fields, f)
	return m.first + FieldID(len(m.fields)-1)
}

// AppendFieldYC adds the next luma/chroma field pair.
func (m *MemorySource) AppendFieldYC(luma, chroma *Buffer, hints []Region) FieldID {
	f := &memoryField{desc: m.fieldDescriptor(len(m.fields)), luma: luma, chroma: chroma, hints: CloneRegions(hints)}
	SortRegions(f.hints)
	m.fields = append(m.fields, f)
	return m.first + FieldID(len(m.fields)-1)
}

// SetAudio attaches interleaved PCM samples to an existing field.
func (m *MemorySource) SetAudio(id FieldID, samples []int16) error {
	f := m.field(id)
	if f == nil {
		return fmt.Errorf("set audio: %w: %d", ErrNoField, id)
	}
	f.audio = samples
	return nil
}

// SetEFM attaches an EFM T-value stream to an existing field.
func (m *MemorySource) SetEFM(id FieldID, values []byte) error {
	f := m.field(id)
	if f == nil {
		return fmt.Errorf("set efm: %w: %d", ErrNoField, id)
	}
	f.efm = values
	return nil
}

func (m *MemorySource) fieldDescriptor(index int) Descriptor {
	desc := m.desc
	if index%2 == 1 {
		desc.Parity = m.desc.Parity.Opposite()
	}
	return desc
}

func (m *MemorySource) field(id FieldID) *memoryField {
	index := int(id - m.first)
	if index < 0 || index >= len(m.fields) {
		return nil
	}
	return m.fields[index]
}

func (m *MemorySource) FieldRange() (FieldID, FieldID) {
	return m.first, m.first + FieldID(len(m.fields)) - 1
}

func (m *MemorySource) FieldCount() int { return len(m.fields) }

func (m *MemorySource) HasField(id FieldID) bool { return m.field(id) != nil }

func (m *MemorySource) Descriptor(id FieldID) (Descriptor, bool) {
	f := m.field(id)
	if f == nil {
		return Descriptor{}, false
	}
	return f.desc, true
}

func (m *MemorySource) SeparateChannels() bool { return m.yc }

func (m *MemorySource) Field(id FieldID, ch Channel) (*Buffer, error) {
	f := m.field(id)
	if f == nil {
		return nil, fmt.Errorf("field %d: %w", id, ErrNoField)
	}
	buf := f.plane(ch)
	if buf == nil {
		return nil, fmt.Errorf("field %d channel %s: %w", id, ch, ErrNoChannel)
	}
	return buf, nil
}

func (m *MemorySource) Line(id FieldID, ch Channel, line int) ([]uint16, error) {
	buf, err := m.Field(id, ch)
	if err != nil {
		return nil, err
	}
	samples := buf.Line(line)
	if samples == nil {
		return nil, fmt.Errorf("field %d line %d out of range", id, line)
	}
	return samples, nil
}

func (m *MemorySource) DropoutHints(id FieldID) []Region {
	f := m.field(id)
	if f == nil {
		return nil
	}
	return f.hints
}

func (m *MemorySource) HasAudio() bool {
	for _, f := range m.fields {
		if len(f.audio) > 0 {
			return true
		}
	}
	return false
}

func (m *MemorySource) AudioSampleCount(id FieldID) int {
	f := m.field(id)
	if f == nil {
		return 0
	}
	return len(f.audio)
}

func (m *MemorySource) AudioSamples(id FieldID) ([]int16, error) {
	f := m.field(id)
	if f == nil {
		return nil, fmt.Errorf("field %d: %w", id, ErrNoField)
	}
	return f.audio, nil
}

func (m *MemorySource) HasEFM() bool {
	for _, f := range m.fields {
		if len(f.efm) > 0 {
			return true
		}
	}
	return false
}

func (m *MemorySource) EFMSampleCount(id FieldID) int {
	f := m.field(id)
	if f == nil {
		return 0
	}
	return len(f.efm)
}

func (m *MemorySource) EFMSamples(id FieldID) ([]byte, error) {
	f := m.field(id)
	if f == nil {
		return nil, fmt.Errorf("field %d: %w", id, ErrNoField)
	}
	return f.efm, nil
}

func (f *memoryField) plane(ch Channel) *Buffer {
	switch ch {
	case ChannelComposite:
		return f.composite
	case ChannelLuma:
		return f.luma
	case ChannelChroma:
		return f.chroma
	default:
		return nil
	}
}
