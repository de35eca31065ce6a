package httpserver

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"go-remote-handlebars/internal/models"
	"go-remote-handlebars/internal/render"
)

// handleRender handles POST /render
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := s.parseRequest(r, &req); err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		s.writeErrorResponse(w, "Missing required fields: view", http.StatusBadRequest)
		return
	}

	view, ok := s.resource(req.View)
	if !ok {
		s.writeErrorResponse(w, "Invalid view: local views are names below the views directory", http.StatusBadRequest)
		return
	}
	if len(req.ViewHeaders) > 0 && view.Kind() == models.ResourceKindRemote {
		header := http.Header{}
		for name, value := range req.ViewHeaders {
			header.Set(name, value)
		}
		view = models.RemoteRequest(view.URL, header)
	}

	opts := render.Options{
		NoLayout:     req.NoLayout,
		Placeholder:  req.Placeholder,
		Data:         req.Data,
		DisableCache: req.Cache != nil && !*req.Cache,
	}
	if req.Layout != nil {
		layout, ok := s.resource(*req.Layout)
		if !ok {
			s.writeErrorResponse(w, "Invalid layout: local layouts are names below the views directory", http.StatusBadRequest)
			return
		}
		opts.Layout = &layout
	}
	for _, dir := range req.PartialsDirs {
		full, ok := s.localPath(dir, "")
		if !ok {
			s.writeErrorResponse(w, "Invalid partials directory: must be below the views directory", http.StatusBadRequest)
			return
		}
		opts.PartialsDirs = append(opts.PartialsDirs, full)
	}

	html, err := s.engine.Render(r.Context(), view, req.Context, opts)
	if err != nil {
		s.writeRenderError(w, err)
		return
	}
	s.writeHTML(w, html)
}

// handleView handles GET /views/{name}, rendering a file of the views
// directory with the query string as context
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	file, ok := s.localPath(mux.Vars(r)["name"], s.views.Extension)
	if !ok {
		s.writeErrorResponse(w, "Invalid view name", http.StatusBadRequest)
		return
	}

	data := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}

	s.engine.ViewEngine(render.Options{})(r.Context(), file, data, func(html string, err error) {
		if err != nil {
			s.writeRenderError(w, err)
			return
		}
		s.writeHTML(w, html)
	})
}

// resource maps a request reference to a template resource. URLs are fetched,
// anything else names a view below the views directory. An empty reference
// is the zero resource.
func (s *Server) resource(ref string) (models.Resource, bool) {
	res := models.ParseResource(ref)
	if res.Kind() != models.ResourceKindLocal {
		return res, true
	}
	file, ok := s.localPath(res.Path, s.views.Extension)
	if !ok {
		return models.Resource{}, false
	}
	return models.Local(file), true
}

// localPath maps a '/'-separated name to a path below the views directory.
// Absolute names and names climbing out of the directory are rejected.
func (s *Server) localPath(name, ext string) (string, bool) {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) {
		return "", false
	}
	clean := path.Clean(filepath.ToSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return filepath.Join(s.views.Dir, filepath.FromSlash(clean)) + ext, true
}
