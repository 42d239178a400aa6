package dropout

import (
	"fmt"
	"log/slog"
	"sync"

	"fieldstack/internal/fieldcache"
	"fieldstack/internal/fieldsource"
	"fieldstack/internal/logging"
)

// StageID is the stable registry identifier for the dropout-correction stage.
const StageID = "dropout-correct"

// Warning records a region that could not be repaired. Warnings are the
// out-of-band channel for per-field problems; they never fail a call.
type Warning struct {
	Field   fieldsource.FieldID
	Channel fieldsource.Channel
	Region  fieldsource.Region
	Reason  string
}

// Stats aggregates correction counters across all fields served so far.
type Stats struct {
	FieldsCorrected    int64
	RegionsCorrected   int64
	RegionsUncorrected int64
	SamplesReplaced    int64
}

// Corrector wraps one field source and serves dropout-repaired fields from a
// bounded per-channel cache. It implements fieldsource.Source, so downstream
// stages consume it like any other source.
//
// The representation mutex serializes whole-field computation as well as
// cache mutation. Computation is pure, so allowing concurrent recompute
// would be safe, but serializing keeps the memory ceiling at one in-flight
// field and costs nothing in the single-reader pipelines this layer serves.
type Corrector struct {
	src    fieldsource.Source
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	caches   map[fieldsource.Channel]*fieldcache.Cache[fieldsource.FieldID, *fieldsource.Buffer]
	warnings []Warning
	stats    Stats
}

// New wraps src with a dropout corrector. The source is shared and never
// mutated.
func New(src fieldsource.Source, cfg Config, logger *slog.Logger) (*Corrector, error) {
	if src == nil {
		return nil, fmt.Errorf("dropout corrector requires a source")
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	caches := make(map[fieldsource.Channel]*fieldcache.Cache[fieldsource.FieldID, *fieldsource.Buffer])
	for _, ch := range fieldsource.Channels(src) {
		caches[ch] = fieldcache.New[fieldsource.FieldID, *fieldsource.Buffer](cfg.CacheFields)
	}

	return &Corrector{
		src:    src,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "dropout"),
		caches: caches,
	}, nil
}

// Geometry and timing accessors pass through to the wrapped source.

func (c *Corrector) FieldRange() (fieldsource.FieldID, fieldsource.FieldID) { return c.src.FieldRange() }

func (c *Corrector) FieldCount() int { return c.src.FieldCount() }

func (c *Corrector) HasField(id fieldsource.FieldID) bool { return c.src.HasField(id) }

func (c *Corrector) Descriptor(id fieldsource.FieldID) (fieldsource.Descriptor, bool) {
	return c.src.Descriptor(id)
}

func (c *Corrector) SeparateChannels() bool { return c.src.SeparateChannels() }

// DropoutHints always returns nil: the corrected output has no known
// remaining dropouts. Uncorrectable regions are reported via Warnings.
func (c *Corrector) DropoutHints(fieldsource.FieldID) []fieldsource.Region { return nil }

func (c *Corrector) HasAudio() bool { return c.src.HasAudio() }

func (c *Corrector) AudioSampleCount(id fieldsource.FieldID) int { return c.src.AudioSampleCount(id) }

func (c *Corrector) AudioSamples(id fieldsource.FieldID) ([]int16, error) {
	return c.src.AudioSamples(id)
}

func (c *Corrector) HasEFM() bool { return c.src.HasEFM() }

func (c *Corrector) EFMSampleCount(id fieldsource.FieldID) int { return c.src.EFMSampleCount(id) }

func (c *Corrector) EFMSamples(id fieldsource.FieldID) ([]byte, error) { return c.src.EFMSamples(id) }

// Field returns the corrected sample plane for one channel of a field.
func (c *Corrector) Field(id fieldsource.FieldID, ch fieldsource.Channel) (*fieldsource.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cache, ok := c.caches[ch]
	if !ok {
		return nil, fmt.Errorf("field %d channel %s: %w", id, ch, fieldsource.ErrNoChannel)
	}
	if buf, ok := cache.Get(id); ok {
		return buf, nil
	}
	if err := c.ensureCorrectedLocked(id); err != nil {
		return nil, err
	}
	buf, _ := cache.Get(id)
	return buf, nil
}

// Line returns one corrected line.
func (c *Corrector) Line(id fieldsource.FieldID, ch fieldsource.Channel, line int) ([]uint16, error) {
	buf, err := c.Field(id, ch)
	if err != nil {
		return nil, err
	}
	samples := buf.Line(line)
	if samples == nil {
		return nil, fmt.Errorf("field %d line %d out of range", id, line)
	}
	return samples, nil
}

// Warnings returns the uncorrectable regions recorded so far.
func (c *Corrector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Stats returns a snapshot of the correction counters.
func (c *Corrector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// ensureCorrectedLocked computes and caches every channel of one field. The
// caller holds c.mu. A field is cached only once fully processed; on source
// failure nothing is inserted.
func (c *Corrector) ensureCorrectedLocked(id fieldsource.FieldID) error {
	desc, ok := c.src.Descriptor(id)
	if !ok {
		return fmt.Errorf("field %d: %w", id, fieldsource.ErrNoField)
	}
	hints := c.src.DropoutHints(id)

	for ch, cache := range c.caches {
		srcBuf, err := c.src.Field(id, ch)
		if err != nil {
			return err
		}

		if len(hints) == 0 {
			// Nothing to repair; share the source plane.
			cache.Put(id, srcBuf)
			continue
		}

		out := srcBuf.Clone()
		for _, hint := range hints {
			for _, region := range splitRegion(hint, desc) {
				c.correctRegion(out, id, desc, region, ch)
			}
		}
		cache.Put(id, out)
	}

	c.stats.FieldsCorrected++
	return nil
}

// correctRegion repairs one classified (sub-)region in place, or records a
// warning when no replacement exists.
func (c *Corrector) correctRegion(out *fieldsource.Buffer, id fieldsource.FieldID, desc fieldsource.Descriptor, region fieldsource.Region, ch fieldsource.Channel) {
	if region.Length() == 0 || region.Line < 0 || region.Line >= desc.Height {
		return
	}

	wStart, wEnd := repairWindow(region, desc, c.cfg)

	if c.cfg.HighlightCorrections {
		line := out.Line(region.Line)
		for i := wStart; i < wEnd; i++ {
			line[i] = fieldsource.SampleIRE100
		}
		c.stats.RegionsCorrected++
		c.stats.SamplesReplaced += int64(wEnd - wStart)
		return
	}

	cand, ok := findReplacement(c.src, id, desc, region, ch, c.cfg)
	if !ok {
		c.warnings = append(c.warnings, Warning{
			Field:   id,
			Channel: ch,
			Region:  region,
			Reason:  "no replacement line within distance",
		})
		c.stats.RegionsUncorrected++
		c.logger.Debug("region left uncorrected",
			logging.Int64(logging.FieldFieldID, int64(id)),
			logging.String(logging.FieldChannel, ch.String()),
			logging.String("region", region.String()))
		return
	}

	candLine, err := c.src.Line(cand.field, ch, cand.line)
	if err != nil {
		c.warnings = append(c.warnings, Warning{Field: id, Channel: ch, Region: region, Reason: "replacement read failed"})
		c.stats.RegionsUncorrected++
		return
	}

	line := out.Line(region.Line)
	copy(line[wStart:wEnd], candLine[wStart:wEnd])
	c.stats.RegionsCorrected++
	c.stats.SamplesReplaced += int64(wEnd - wStart)
}
