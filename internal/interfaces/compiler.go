package interfaces

import "go-remote-handlebars/internal/models"

//go:generate mockgen -package=mock -source=compiler.go -destination=mock/compiler.go

// Compiler turns template source into an executable template
type Compiler interface {
	Compile(source string) (models.CompiledTemplate, error)
}
