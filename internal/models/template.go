package models

// CompiledTemplate is a template produced by a Compiler. The core never looks inside it.
type CompiledTemplate interface {
	Execute(ctx map[string]any, settings RenderSettings) (string, error)
}

// TemplateFunc adapts a plain function to CompiledTemplate
type TemplateFunc func(ctx map[string]any, settings RenderSettings) (string, error)

// Execute calls f
func (f TemplateFunc) Execute(ctx map[string]any, settings RenderSettings) (string, error) {
	return f(ctx, settings)
}

// RenderSettings are passed to a compiled template on execution
type RenderSettings struct {
	Helpers  map[string]any
	Partials PartialMap
	Data     map[string]any
}

// PartialMap maps a partial name ("nested/partial") to its compiled template
type PartialMap map[string]CompiledTemplate

// Merge copies every partial of other into m, overriding existing names
func (m PartialMap) Merge(other PartialMap) {
	for name, tpl := range other {
		m[name] = tpl
	}
}

// LoadOptions are per-call options for resource and partial resolution
type LoadOptions struct {
	// DisableCache bypasses the store: the resource is fetched and compiled on every call
	DisableCache bool
}
