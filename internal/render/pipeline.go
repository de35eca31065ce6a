package render

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-remote-handlebars/internal/metrics"
	"go-remote-handlebars/internal/models"
)

// plan is a render with Options merged over the instance Config
type plan struct {
	view        models.Resource
	layout      *models.Resource
	placeholder string
	helpers     map[string]any
	dirs        []string
	data        map[string]any
	load        models.LoadOptions
}

// Render resolves the view, the layout and the partials concurrently and
// composes the result. The first failing branch fails the render without
// waiting for the others; those keep running so their results still reach
// the stores.
//
// data is never modified: the layout placeholder is written to a copy.
func (e *Engine) Render(ctx context.Context, view models.Resource, data map[string]any, opts Options) (string, error) {
	done := metrics.TimeRender()
	out, err := e.render(ctx, e.plan(view, opts), data)
	done(err)
	if err != nil {
		e.logger.Debug("Render failed", zap.String("view", view.String()), zap.Error(err))
		return "", err
	}
	return out, nil
}

func (e *Engine) plan(view models.Resource, opts Options) plan {
	p := plan{
		view:        view,
		placeholder: e.cfg.Placeholder,
		dirs:        e.cfg.PartialsDirs,
		data:        opts.Data,
		load:        opts.loadOptions(),
	}

	switch {
	case opts.NoLayout:
	case opts.Layout != nil:
		p.layout = opts.Layout
	default:
		p.layout = e.cfg.Layout
	}
	if p.layout != nil && p.layout.IsZero() {
		p.layout = nil
	}

	if opts.Placeholder != "" {
		p.placeholder = opts.Placeholder
	}
	if len(opts.PartialsDirs) > 0 {
		p.dirs = opts.PartialsDirs
	}

	if len(e.cfg.Helpers)+len(opts.Helpers) > 0 {
		p.helpers = make(map[string]any, len(e.cfg.Helpers)+len(opts.Helpers))
		maps.Copy(p.helpers, e.cfg.Helpers)
		maps.Copy(p.helpers, opts.Helpers)
	}
	return p
}

func (e *Engine) render(ctx context.Context, p plan, data map[string]any) (string, error) {
	if p.view.IsZero() {
		return "", fmt.Errorf("%w: view is required", models.ErrConfig)
	}

	var (
		view     models.CompiledTemplate
		layout   models.CompiledTemplate
		partials models.PartialMap
		g        errgroup.Group
	)

	failed := make(chan error, 1)
	fail := func(err error) error {
		select {
		case failed <- err:
		default:
		}
		return err
	}

	g.Go(func() error {
		tpl, err := e.loader.Load(ctx, p.view, p.load)
		if err != nil {
			return fail(fmt.Errorf("view %s: %w", p.view, err))
		}
		view = tpl
		return nil
	})
	if p.layout != nil {
		g.Go(func() error {
			tpl, err := e.loader.Load(ctx, *p.layout, p.load)
			if err != nil {
				return fail(fmt.Errorf("layout %s: %w", p.layout, err))
			}
			layout = tpl
			return nil
		})
	}
	if len(p.dirs) > 0 {
		g.Go(func() error {
			set, err := e.partials.Resolve(ctx, p.dirs, p.load)
			if err != nil {
				return fail(fmt.Errorf("partials: %w", err))
			}
			partials = set
			return nil
		})
	}

	joined := make(chan error, 1)
	go func() { joined <- g.Wait() }()

	select {
	case err := <-failed:
		return "", err
	case err := <-joined:
		if err != nil {
			return "", err
		}
	}

	return compose(view, layout, p, partials, data)
}

// compose renders the view, then the layout around it when there is one
func compose(view, layout models.CompiledTemplate, p plan, partials models.PartialMap, data map[string]any) (string, error) {
	settings := models.RenderSettings{
		Helpers:  p.helpers,
		Partials: partials,
		Data:     p.data,
	}

	renderCtx := make(map[string]any, len(data)+1)
	maps.Copy(renderCtx, data)

	body, err := view.Execute(renderCtx, settings)
	if err != nil {
		return "", fmt.Errorf("execute view %s: %w", p.view, models.EnsureKind(err, models.ErrCompile))
	}
	if layout == nil {
		return body, nil
	}

	renderCtx[p.placeholder] = body
	out, err := layout.Execute(renderCtx, settings)
	if err != nil {
		return "", fmt.Errorf("execute layout %s: %w", p.layout, models.EnsureKind(err, models.ErrCompile))
	}
	return out, nil
}
