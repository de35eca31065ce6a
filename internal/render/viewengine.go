package render

import (
	"context"

	"go-remote-handlebars/internal/models"
)

// ViewFunc is the calling convention web frameworks use for view engines: the
// callback receives either the rendered html or an error, never both.
type ViewFunc func(ctx context.Context, filePath string, data map[string]any, callback func(html string, err error))

// ViewEngine returns a ViewFunc rendering local view files with opts
func (e *Engine) ViewEngine(opts Options) ViewFunc {
	return func(ctx context.Context, filePath string, data map[string]any, callback func(html string, err error)) {
		html, err := e.Render(ctx, models.ParseResource(filePath), data, opts)
		if err != nil {
			callback("", err)
			return
		}
		callback(html, nil)
	}
}
