package rawsource

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/pipeline"
)

// Sidecar is the TOML document describing a raw capture.
type Sidecar struct {
	Video struct {
		Format          string `toml:"format"`
		Width           int    `toml:"width"`
		Height          int    `toml:"height"`
		Parity          string `toml:"parity"`
		ColorburstStart int    `toml:"colorburst_start"`
		ColorburstEnd   int    `toml:"colorburst_end"`
		ActiveStart     int    `toml:"active_start"`
	} `toml:"video"`
	Fields struct {
		Count    int    `toml:"count"`
		FirstID  int64  `toml:"first_id"`
		Data     string `toml:"data"`
		Luma     string `toml:"luma"`
		Chroma   string `toml:"chroma"`
		Dropouts string `toml:"dropouts"`
	} `toml:"fields"`
	Audio struct {
		Data            string `toml:"data"`
		SamplesPerField int    `toml:"samples_per_field"`
	} `toml:"audio"`
	EFM struct {
		Data            string `toml:"data"`
		SamplesPerField int    `toml:"samples_per_field"`
	} `toml:"efm"`
}

// Load reads the sidecar at path and materializes the capture it describes
// as an in-memory source.
func Load(path string) (*fieldsource.MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrNotFound, "rawsource", "load", "read sidecar", err)
	}
	var sidecar Sidecar
	if err := toml.Unmarshal(data, &sidecar); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "parse sidecar", err)
	}

	desc, err := sidecar.descriptor()
	if err != nil {
		return nil, err
	}
	if sidecar.Fields.Count <= 0 {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "fields.count must be positive", nil)
	}

	yc := sidecar.Fields.Luma != ""
	if yc && sidecar.Fields.Data != "" {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load",
			"fields.data and fields.luma are mutually exclusive", nil)
	}
	if yc && sidecar.Fields.Chroma == "" {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load",
			"fields.luma requires fields.chroma", nil)
	}

	dir := filepath.Dir(path)
	src := fieldsource.NewMemorySource(desc, fieldsource.FieldID(sidecar.Fields.FirstID), yc)

	hints := map[fieldsource.FieldID][]fieldsource.Region{}
	if sidecar.Fields.Dropouts != "" {
		f, err := os.Open(filepath.Join(dir, sidecar.Fields.Dropouts))
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrNotFound, "rawsource", "load", "open dropout spec", err)
		}
		hints, err = ParseDropouts(f)
		f.Close()
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "decode dropout spec", err)
		}
	}

	if yc {
		luma, err := readPlanes(filepath.Join(dir, sidecar.Fields.Luma), desc, sidecar.Fields.Count)
		if err != nil {
			return nil, err
		}
		chroma, err := readPlanes(filepath.Join(dir, sidecar.Fields.Chroma), desc, sidecar.Fields.Count)
		if err != nil {
			return nil, err
		}
		for i := 0; i < sidecar.Fields.Count; i++ {
			id := fieldsource.FieldID(sidecar.Fields.FirstID) + fieldsource.FieldID(i)
			src.AppendFieldYC(luma[i], chroma[i], hints[id])
		}
	} else {
		planes, err := readPlanes(filepath.Join(dir, sidecar.Fields.Data), desc, sidecar.Fields.Count)
		if err != nil {
			return nil, err
		}
		for i := 0; i < sidecar.Fields.Count; i++ {
			id := fieldsource.FieldID(sidecar.Fields.FirstID) + fieldsource.FieldID(i)
			src.AppendField(planes[i], hints[id])
		}
	}

	if sidecar.Audio.Data != "" {
		if err := loadAudio(src, filepath.Join(dir, sidecar.Audio.Data), sidecar.Audio.SamplesPerField, sidecar.Fields.Count, fieldsource.FieldID(sidecar.Fields.FirstID)); err != nil {
			return nil, err
		}
	}
	if sidecar.EFM.Data != "" {
		if err := loadEFM(src, filepath.Join(dir, sidecar.EFM.Data), sidecar.EFM.SamplesPerField, sidecar.Fields.Count, fieldsource.FieldID(sidecar.Fields.FirstID)); err != nil {
			return nil, err
		}
	}

	return src, nil
}

func (s *Sidecar) descriptor() (fieldsource.Descriptor, error) {
	format, err := fieldsource.ParseFormat(s.Video.Format)
	if err != nil {
		return fieldsource.Descriptor{}, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", err.Error(), nil)
	}
	parity := fieldsource.ParityTop
	if strings.EqualFold(strings.TrimSpace(s.Video.Parity), "bottom") {
		parity = fieldsource.ParityBottom
	}
	desc := fieldsource.Descriptor{
		Parity:          parity,
		Format:          format,
		Width:           s.Video.Width,
		Height:          s.Video.Height,
		ColorburstStart: s.Video.ColorburstStart,
		ColorburstEnd:   s.Video.ColorburstEnd,
		ActiveStart:     s.Video.ActiveStart,
	}
	if !desc.Valid() {
		return fieldsource.Descriptor{}, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load",
			fmt.Sprintf("invalid geometry %dx%d (burst %d-%d, active %d)",
				desc.Width, desc.Height, desc.ColorburstStart, desc.ColorburstEnd, desc.ActiveStart), nil)
	}
	return desc, nil
}

// readPlanes slurps count field planes of desc geometry from the flat
// little-endian sample file.
func readPlanes(path string, desc fieldsource.Descriptor, count int) ([]*fieldsource.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrNotFound, "rawsource", "load", "read sample file", err)
	}

	fieldBytes := desc.Width * desc.Height * 2
	if len(data) < fieldBytes*count {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load",
			fmt.Sprintf("%s holds %d bytes, need %d for %d fields", path, len(data), fieldBytes*count, count), nil)
	}

	planes := make([]*fieldsource.Buffer, count)
	for i := 0; i < count; i++ {
		buf := fieldsource.NewBuffer(desc.Width, desc.Height)
		chunk := data[i*fieldBytes : (i+1)*fieldBytes]
		for j := range buf.Samples {
			buf.Samples[j] = binary.LittleEndian.Uint16(chunk[j*2:])
		}
		planes[i] = buf
	}
	return planes, nil
}

func loadAudio(src *fieldsource.MemorySource, path string, perField, count int, first fieldsource.FieldID) error {
	if perField <= 0 {
		return pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "audio.samples_per_field must be positive", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Wrap(pipeline.ErrNotFound, "rawsource", "load", "read audio file", err)
	}
	if len(data) < perField*2*count {
		return pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "audio file shorter than field count requires", nil)
	}
	for i := 0; i < count; i++ {
		samples := make([]int16, perField)
		chunk := data[i*perField*2:]
		for j := range samples {
			samples[j] = int16(binary.LittleEndian.Uint16(chunk[j*2:]))
		}
		if err := src.SetAudio(first+fieldsource.FieldID(i), samples); err != nil {
			return err
		}
	}
	return nil
}

func loadEFM(src *fieldsource.MemorySource, path string, perField, count int, first fieldsource.FieldID) error {
	if perField <= 0 {
		return pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "efm.samples_per_field must be positive", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Wrap(pipeline.ErrNotFound, "rawsource", "load", "read efm file", err)
	}
	if len(data) < perField*count {
		return pipeline.Wrap(pipeline.ErrValidation, "rawsource", "load", "efm file shorter than field count requires", nil)
	}
	for i := 0; i < count; i++ {
		values := make([]byte, perField)
		copy(values, data[i*perField:])
		if err := src.SetEFM(first+fieldsource.FieldID(i), values); err != nil {
			return err
		}
	}
	return nil
}

// WriteSamples streams every field plane of one channel to a flat
// little-endian sample file.
func WriteSamples(path string, src fieldsource.Source, ch fieldsource.Channel) error {
	if src.FieldCount() == 0 {
		return pipeline.Wrap(pipeline.ErrValidation, "rawsource", "write", "source has no fields", nil)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	first, last := src.FieldRange()
	scratch := make([]byte, 0)
	for id := first; id <= last; id++ {
		if !src.HasField(id) {
			continue
		}
		buf, err := src.Field(id, ch)
		if err != nil {
			return fmt.Errorf("read field %d: %w", id, err)
		}
		if cap(scratch) < len(buf.Samples)*2 {
			scratch = make([]byte, len(buf.Samples)*2)
		}
		scratch = scratch[:len(buf.Samples)*2]
		for i, v := range buf.Samples {
			binary.LittleEndian.PutUint16(scratch[i*2:], v)
		}
		if _, err := out.Write(scratch); err != nil {
			return fmt.Errorf("write field %d: %w", id, err)
		}
	}
	return nil
}
