package stage

import (
	"context"

	"fieldstack/internal/fieldsource"
)

// Descriptor identifies a stage kind to the executor and its presenters.
type Descriptor struct {
	// ID is the stable registry key. It never changes across releases.
	ID       string
	Label    string
	Category string
}

// Parameters is the declarative settings map a stage is configured from.
type Parameters map[string]any

// ParameterType tags how a parameter value should be edited and validated.
type ParameterType int

const (
	ParameterBool ParameterType = iota
	ParameterInt
	ParameterString
	ParameterChoice
)

// ParameterDescriptor describes one tunable setting.
type ParameterDescriptor struct {
	Name        string
	Label       string
	Description string
	Type        ParameterType
	Default     any
	// Min/Max bound ParameterInt values, inclusive.
	Min int
	Max int
	// Choices enumerates valid ParameterChoice values.
	Choices []string
}

// Stage is one transform node of the processing graph. Execute wraps the
// inputs and returns the stage's outputs; for the signal-reconstruction
// stages the outputs are lazy wrappers, so Execute itself is cheap and the
// work happens as downstream consumers pull fields.
type Stage interface {
	Version() string
	Describe() Descriptor
	RequiredInputCount() int
	OutputCount() int
	Execute(ctx context.Context, inputs []fieldsource.Source, params Parameters) ([]fieldsource.Source, error)
}

// Parameterized is implemented by stages with declarative settings.
type Parameterized interface {
	ParameterDescriptors() []ParameterDescriptor
	Parameters() Parameters
	SetParameters(Parameters) error
}

// Previewable is implemented by stages that can render one field on demand
// for interactive consumers.
type Previewable interface {
	PreviewField(ctx context.Context, src fieldsource.Source, id fieldsource.FieldID) (*fieldsource.Buffer, error)
}
