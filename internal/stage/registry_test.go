package stage

import (
	"context"
	"errors"
	"testing"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/pipeline"
)

type nopStage struct{ id string }

func (s *nopStage) Version() string          { return "1.0" }
func (s *nopStage) Describe() Descriptor     { return Descriptor{ID: s.id} }
func (s *nopStage) RequiredInputCount() int  { return 1 }
func (s *nopStage) OutputCount() int         { return 1 }
func (s *nopStage) Execute(_ context.Context, inputs []fieldsource.Source, _ Parameters) ([]fieldsource.Source, error) {
	return inputs, nil
}

func TestRegistryRegisterAndNew(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("nop", func() Stage { return &nopStage{id: "nop"} }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s, err := reg.New("nop")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Describe().ID != "nop" {
		t.Fatalf("Describe().ID = %q, want nop", s.Describe().ID)
	}

	// Each New call constructs a fresh instance.
	other, _ := reg.New("nop")
	if s == other {
		t.Fatal("New must not return a shared instance")
	}
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	reg := NewRegistry()
	construct := func() Stage { return &nopStage{id: "dup"} }

	if err := reg.Register("dup", construct); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := reg.Register("dup", construct); !pipeline.IsConfiguration(err) {
		t.Fatalf("second Register: err = %v, want configuration error", err)
	}
	if err := reg.Register("", construct); !pipeline.IsConfiguration(err) {
		t.Fatalf("empty id: err = %v, want configuration error", err)
	}
}

func TestRegistryLookupMissing(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.New("absent"); !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		id := id
		if err := reg.Register(id, func() Stage { return &nopStage{id: id} }); err != nil {
			t.Fatalf("Register(%q): %v", id, err)
		}
	}

	names := reg.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}
