// Package handlebars compiles Handlebars sources with github.com/aymerick/raymond.
package handlebars

import (
	"fmt"

	"github.com/aymerick/raymond"

	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/models"
)

// Extensions are the file extensions recognised as Handlebars templates
var Extensions = []string{".handlebars", ".hbs"}

// Ensure Compiler implements interfaces.Compiler
var _ interfaces.Compiler = (*Compiler)(nil)

// Compiler parses Handlebars sources
type Compiler struct{}

// NewCompiler creates a new Compiler instance
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile parses source into an executable template
func (c *Compiler) Compile(source string) (models.CompiledTemplate, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCompile, err)
	}
	return &Template{tpl: tpl}, nil
}

// Template is a parsed Handlebars template
type Template struct {
	tpl *raymond.Template
}

// Execute renders the template. Helpers and partials are registered on a clone
// so the parsed template can be shared by concurrent renders.
func (t *Template) Execute(ctx map[string]any, settings models.RenderSettings) (out string, err error) {
	defer func() {
		// raymond panics on invalid helpers and duplicate registrations
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %v", models.ErrCompile, r)
		}
	}()

	tpl := t.tpl
	if len(settings.Helpers) > 0 || len(settings.Partials) > 0 {
		tpl = t.tpl.Clone()
		for name, helper := range settings.Helpers {
			tpl.RegisterHelper(name, helper)
		}
		for name, partial := range settings.Partials {
			compiled, ok := partial.(*Template)
			if !ok {
				return "", fmt.Errorf("%w: partial %q is not a handlebars template", models.ErrCompile, name)
			}
			tpl.RegisterPartialTemplate(name, compiled.tpl)
		}
	}

	frame := raymond.NewDataFrame()
	for key, value := range settings.Data {
		frame.Set(key, value)
	}

	if ctx == nil {
		ctx = map[string]any{}
	}
	result, err := tpl.ExecWith(ctx, frame)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrCompile, err)
	}
	return result, nil
}
