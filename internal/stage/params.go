package stage

import (
	"fmt"

	"fieldstack/internal/pipeline"
)

// Typed readers for Parameters. Numeric values accept the integer and float
// forms produced by TOML/YAML decoders; anything else is a configuration
// error so bad project files fail the invocation instead of degrading.

func (p Parameters) Bool(name string, fallback bool) (bool, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return fallback, pipeline.Wrap(pipeline.ErrConfiguration, "", "read parameter",
			fmt.Sprintf("%s: expected bool, got %T", name, v), nil)
	}
	return b, nil
}

func (p Parameters) Int(name string, fallback int) (int, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return fallback, pipeline.Wrap(pipeline.ErrConfiguration, "", "read parameter",
			fmt.Sprintf("%s: expected integer, got %T", name, v), nil)
	}
}

func (p Parameters) String(name string, fallback string) (string, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return fallback, pipeline.Wrap(pipeline.ErrConfiguration, "", "read parameter",
			fmt.Sprintf("%s: expected string, got %T", name, v), nil)
	}
	return s, nil
}
