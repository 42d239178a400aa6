package fieldsource

import "errors"

// Channel selects which sample plane an accessor operates on. Composite
// sources carry a single plane; YC sources carry independent luma and chroma
// planes that are corrected and stacked separately.
type Channel int

const (
	ChannelComposite Channel = iota
	ChannelLuma
	ChannelChroma
)

func (c Channel) String() string {
	switch c {
	case ChannelLuma:
		return "luma"
	case ChannelChroma:
		return "chroma"
	default:
		return "composite"
	}
}

// ErrNoField is returned by sample accessors when the requested field id is
// outside the source's range.
var ErrNoField = errors.New("field not present in source")

// ErrNoChannel is returned when a channel is requested that the source does
// not carry (for example chroma from a composite source).
var ErrNoChannel = errors.New("channel not present in source")

// Source is the read-only field representation every stage consumes and
// produces. Implementations must be safe for concurrent readers; buffers and
// slices returned from accessors are owned by the source and must not be
// mutated by callers.
type Source interface {
	// FieldRange returns the first and last field ids, inclusive.
	// Undefined when FieldCount is zero.
	FieldRange() (first, last FieldID)
	FieldCount() int
	HasField(id FieldID) bool

	// Descriptor returns the per-field geometry. The second return is false
	// when the field is absent.
	Descriptor(id FieldID) (Descriptor, bool)

	// SeparateChannels reports whether the source carries independent luma
	// and chroma planes. When false only ChannelComposite is valid.
	SeparateChannels() bool

	// Field returns the full sample plane for one channel of a field.
	Field(id FieldID, ch Channel) (*Buffer, error)
	// Line returns one line of one channel of a field.
	Line(id FieldID, ch Channel, line int) ([]uint16, error)

	// DropoutHints returns the known-bad sample regions for a field. The
	// result is sorted and never overlaps within a line.
	DropoutHints(id FieldID) []Region

	HasAudio() bool
	AudioSampleCount(id FieldID) int
	// AudioSamples returns the interleaved PCM samples captured alongside
	// the field.
	AudioSamples(id FieldID) ([]int16, error)

	HasEFM() bool
	EFMSampleCount(id FieldID) int
	// EFMSamples returns the EFM T-value stream captured alongside the field.
	EFMSamples(id FieldID) ([]byte, error)
}

// Channels returns the channels a source exposes, in processing order.
func Channels(src Source) []Channel {
	if src.SeparateChannels() {
		return []Channel{ChannelLuma, ChannelChroma}
	}
	return []Channel{ChannelComposite}
}
