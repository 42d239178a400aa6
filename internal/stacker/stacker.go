package stacker

import (
	"fmt"
	"log/slog"
	"sync"

	"fieldstack/internal/fieldcache"
	"fieldstack/internal/fieldsource"
	"fieldstack/internal/logging"
	"fieldstack/internal/pipeline"
)

// Stats aggregates stacking counters across all fields served so far.
type Stats struct {
	FieldsStacked    int64
	SamplesStacked   int64
	DropoutSamples   int64
	RecoveredSamples int64
}

// Stacker combines 1..16 pre-aligned field sources into one improved source.
// It implements fieldsource.Source.
//
// One mutex guards every cache; within one field's computation only the
// line-range workers run in parallel. Computation is serialized under the
// mutex for the same reason as the dropout corrector: it is pure, so racing
// would be safe, but serializing bounds in-flight memory to one field.
type Stacker struct {
	sources []fieldsource.Source
	cfg     Config
	logger  *slog.Logger
	yc      bool

	mu         sync.Mutex
	planes     map[fieldsource.Channel]*fieldcache.Cache[fieldsource.FieldID, *fieldsource.Buffer]
	dropouts   *fieldcache.Cache[fieldsource.FieldID, []fieldsource.Region]
	audio      *fieldcache.Cache[fieldsource.FieldID, []int16]
	efm        *fieldcache.Cache[fieldsource.FieldID, []byte]
	bestSource *fieldcache.Cache[fieldsource.FieldID, int]
	stats      Stats
}

// New builds a stacker over the given sources. Zero sources is a
// configuration error; a single source behaves as exact passthrough.
// Sources must already be time-aligned by field id and are never mutated.
func New(sources []fieldsource.Source, cfg Config, logger *slog.Logger) (*Stacker, error) {
	if len(sources) == 0 {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, StageID, "construct",
			"at least one source is required", nil)
	}
	if len(sources) > MaxSources {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, StageID, "construct",
			fmt.Sprintf("%d sources exceeds the limit of %d", len(sources), MaxSources), nil)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	yc := sources[0].SeparateChannels()
	for i, src := range sources[1:] {
		if src.SeparateChannels() != yc {
			return nil, pipeline.Wrap(pipeline.ErrConfiguration, StageID, "construct",
				fmt.Sprintf("source %d channel layout differs from source 0", i+1), nil)
		}
	}

	planes := make(map[fieldsource.Channel]*fieldcache.Cache[fieldsource.FieldID, *fieldsource.Buffer])
	for _, ch := range fieldsource.Channels(sources[0]) {
		planes[ch] = fieldcache.New[fieldsource.FieldID, *fieldsource.Buffer](cfg.CacheFields)
	}

	return &Stacker{
		sources:    append([]fieldsource.Source(nil), sources...),
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "stacker"),
		yc:         yc,
		planes:     planes,
		dropouts:   fieldcache.New[fieldsource.FieldID, []fieldsource.Region](cfg.CacheFields),
		audio:      fieldcache.New[fieldsource.FieldID, []int16](cfg.CacheFields),
		efm:        fieldcache.New[fieldsource.FieldID, []byte](cfg.CacheFields),
		bestSource: fieldcache.New[fieldsource.FieldID, int](cfg.CacheFields),
	}, nil
}

// FieldRange returns the union of the source ranges.
func (s *Stacker) FieldRange() (fieldsource.FieldID, fieldsource.FieldID) {
	first, last := s.sources[0].FieldRange()
	for _, src := range s.sources[1:] {
		f, l := src.FieldRange()
		if src.FieldCount() == 0 {
			continue
		}
		if f < first {
			first = f
		}
		if l > last {
			last = l
		}
	}
	return first, last
}

// FieldCount counts the ids in the union range present in at least one source.
func (s *Stacker) FieldCount() int {
	first, last := s.FieldRange()
	count := 0
	for id := first; id <= last; id++ {
		if s.HasField(id) {
			count++
		}
	}
	return count
}

func (s *Stacker) HasField(id fieldsource.FieldID) bool {
	for _, src := range s.sources {
		if src.HasField(id) {
			return true
		}
	}
	return false
}

func (s *Stacker) Descriptor(id fieldsource.FieldID) (fieldsource.Descriptor, bool) {
	for _, src := range s.sources {
		if desc, ok := src.Descriptor(id); ok {
			return desc, true
		}
	}
	return fieldsource.Descriptor{}, false
}

func (s *Stacker) SeparateChannels() bool { return s.yc }

// Field returns the combined sample plane for one channel of a field.
func (s *Stacker) Field(id fieldsource.FieldID, ch fieldsource.Channel) (*fieldsource.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, ok := s.planes[ch]
	if !ok {
		return nil, fmt.Errorf("field %d channel %s: %w", id, ch, fieldsource.ErrNoChannel)
	}
	if buf, ok := cache.Get(id); ok {
		return buf, nil
	}
	if err := s.ensureStackedLocked(id); err != nil {
		return nil, err
	}
	buf, _ := cache.Get(id)
	return buf, nil
}

// Line returns one combined line.
func (s *Stacker) Line(id fieldsource.FieldID, ch fieldsource.Channel, line int) ([]uint16, error) {
	buf, err := s.Field(id, ch)
	if err != nil {
		return nil, err
	}
	samples := buf.Line(line)
	if samples == nil {
		return nil, fmt.Errorf("field %d line %d out of range", id, line)
	}
	return samples, nil
}

// DropoutHints returns the positions that remained dropout after stacking.
func (s *Stacker) DropoutHints(id fieldsource.FieldID) []fieldsource.Region {
	s.mu.Lock()
	defer s.mu.Unlock()

	if regions, ok := s.dropouts.Get(id); ok {
		return regions
	}
	if err := s.ensureStackedLocked(id); err != nil {
		return nil
	}
	regions, _ := s.dropouts.Get(id)
	return regions
}

// Stats returns a snapshot of the stacking counters.
func (s *Stacker) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

// BestSource returns the index of the source with the fewest dropout samples
// for the field. Audio and EFM fall back to this source when side-channel
// stacking is disabled.
func (s *Stacker) BestSource(id fieldsource.FieldID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bestSourceLocked(id)
}

func (s *Stacker) bestSourceLocked(id fieldsource.FieldID) (int, bool) {
	if index, ok := s.bestSource.Get(id); ok {
		return index, true
	}

	best := -1
	bestBad := 0
	for i, src := range s.sources {
		if !src.HasField(id) {
			continue
		}
		bad := 0
		for _, r := range src.DropoutHints(id) {
			bad += r.Length()
		}
		if best == -1 || bad < bestBad {
			best = i
			bestBad = bad
		}
	}
	if best == -1 {
		return 0, false
	}
	s.bestSource.Put(id, best)
	return best, true
}
